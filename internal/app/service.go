// Package app is the application layer around the corroboration engine:
// it takes article text and an optional classifier verdict, gathers
// references, assesses the pair, records the analysis and exports reports.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gingfrederik/docx"
	"github.com/google/uuid"

	"truthlens/internal/corroborate"
	"truthlens/internal/logger"
)

// ErrEmptyText is returned when there is nothing to analyse.
var ErrEmptyText = errors.New("article text is empty")

// Corroborator finds references for text.
type Corroborator interface {
	Corroborate(ctx context.Context, text string, n int) corroborate.Result
	Providers() []string
}

// Service runs analyses on top of a Corroborator.
type Service struct {
	engine   Corroborator
	recorder *Recorder
	log      logger.Logger
	now      func() time.Time
}

// NewService returns a Service. A nil recorder disables analysis records.
func NewService(engine Corroborator, recorder *Recorder, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{engine: engine, recorder: recorder, log: log, now: time.Now}
}

// AnalyzeRequest is one analysis. Count <= 0 uses the engine default.
type AnalyzeRequest struct {
	Text    string   `json:"text"`
	Count   int      `json:"count,omitempty"`
	Verdict *Verdict `json:"verdict,omitempty"`
}

// Analysis is the outcome of Analyze.
type Analysis struct {
	ID              string             `json:"id"`
	Timestamp       time.Time          `json:"timestamp"`
	CleanedText     string             `json:"cleaned_text"`
	Verdict         *Verdict           `json:"verdict,omitempty"`
	ReferencesFound bool               `json:"references_found"`
	Assessment      Assessment         `json:"assessment"`
	Result          corroborate.Result `json:"result"`
}

// Corroborate passes text straight to the engine.
func (s *Service) Corroborate(ctx context.Context, text string, n int) corroborate.Result {
	return s.engine.Corroborate(ctx, text, n)
}

// Providers lists the providers the engine searches.
func (s *Service) Providers() []string {
	return s.engine.Providers()
}

// Analyze corroborates the text, assesses it against the verdict and writes
// an analysis record.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if req.Verdict != nil {
		if err := req.Verdict.Validate(); err != nil {
			return nil, err
		}
	}

	res := s.engine.Corroborate(ctx, req.Text, req.Count)
	found := res.Found()

	a := &Analysis{
		ID:              uuid.NewString(),
		Timestamp:       s.now().UTC(),
		CleanedText:     CleanText(req.Text),
		Verdict:         req.Verdict,
		ReferencesFound: found,
		Assessment:      Assess(req.Verdict, found),
		Result:          res,
	}

	if s.recorder != nil {
		rec := Record{
			ID:              a.ID,
			Timestamp:       a.Timestamp,
			News:            Excerpt(req.Text, excerptLen),
			ReferencesFound: found,
		}
		if req.Verdict != nil {
			rec.Prediction = req.Verdict.Label
			rec.Confidence = req.Verdict.Confidence
		}
		s.recorder.Record(rec)
	}

	s.log.Info("analysis complete",
		logger.String("id", a.ID),
		logger.String("assessment", a.Assessment.Status),
		logger.Bool("references_found", found),
	)
	return a, nil
}

// GenerateReport writes a as a .docx document to path.
func (s *Service) GenerateReport(path string, a *Analysis) error {
	f := docx.NewFile()

	p := f.AddParagraph()
	run := p.AddText("Corroboration Report")
	run.Size(20)

	p = f.AddParagraph()
	run = p.AddText(fmt.Sprintf("Analysis %s | %s", a.ID, a.Timestamp.Format(time.RFC1123)))
	run.Size(10)
	run.Color("808080")

	p = f.AddParagraph()
	p.AddText(fmt.Sprintf("Query: %s", a.Result.Query))

	f.AddParagraph() // Spacer

	p = f.AddParagraph()
	run = p.AddText(a.Assessment.Status)
	run.Size(16)
	run.Color(assessmentColor(a))
	f.AddParagraph().AddText(a.Assessment.Message)
	if a.Verdict != nil {
		f.AddParagraph().AddText(fmt.Sprintf("Classifier: %s (confidence %.1f%%)", a.Verdict.Label, a.Verdict.Confidence*100))
	}

	f.AddParagraph() // Spacer
	f.AddParagraph().AddText("--------------------------------------------------")
	f.AddParagraph() // Spacer

	p = f.AddParagraph()
	run = p.AddText("Related Articles & Sources")
	run.Size(16)

	for _, ref := range a.Result.References {
		p = f.AddParagraph()
		p.AddText(ref.Title)

		meta := ref.Source
		if !ref.PublishedAt.IsZero() {
			meta += " | " + ref.PublishedAt.Format("2006-01-02")
		}
		p = f.AddParagraph()
		run = p.AddText(meta)
		run.Size(10)
		run.Color("808080")

		if ref.Description != "" {
			f.AddParagraph().AddText(Excerpt(ref.Description, 240))
		}

		p = f.AddParagraph()
		run = p.AddText(ref.URL)
		run.Size(10)
		run.Color("0000FF")

		p = f.AddParagraph()
		run = p.AddText(fmt.Sprintf("Relevance: %.0f%%", ref.Relevance*100))
		run.Color("008000")

		f.AddParagraph() // Spacer
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

func assessmentColor(a *Analysis) string {
	switch {
	case a.Verdict != nil && a.Verdict.Label == LabelFake && !a.ReferencesFound:
		return "C00000"
	case a.ReferencesFound && (a.Verdict == nil || a.Verdict.Label == LabelReal):
		return "008000"
	default:
		return "C07000"
	}
}
