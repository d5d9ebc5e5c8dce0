package app

import (
	"fmt"
	"time"

	"truthlens/internal/logger"
)

// excerptLen is how much of the analysed text a record keeps.
const excerptLen = 100

// Record is one completed analysis as written to the analysis log.
type Record struct {
	ID              string
	Timestamp       time.Time
	News            string
	Prediction      Label
	Confidence      float64
	ReferencesFound bool
}

// Recorder appends analysis records as JSON lines.
type Recorder struct {
	log logger.Logger
}

// NewRecorder writes records to path.
func NewRecorder(path string) (*Recorder, error) {
	l, err := logger.New(logger.Config{Level: "info", OutputPaths: []string{path}})
	if err != nil {
		return nil, fmt.Errorf("open analysis log %s: %w", path, err)
	}
	return &Recorder{log: l}, nil
}

// NewRecorderWithLogger writes records through l.
func NewRecorderWithLogger(l logger.Logger) *Recorder {
	if l == nil {
		l = logger.NewNop()
	}
	return &Recorder{log: l}
}

// Record writes rec.
func (r *Recorder) Record(rec Record) {
	fields := []logger.Field{
		logger.String("id", rec.ID),
		logger.Time("timestamp", rec.Timestamp),
		logger.String("news", rec.News),
		logger.Bool("references_found", rec.ReferencesFound),
	}
	if rec.Prediction != "" {
		fields = append(fields,
			logger.String("prediction", string(rec.Prediction)),
			logger.Float64("confidence", rec.Confidence),
		)
	}
	r.log.Info("analysis", fields...)
}

// Close flushes pending records.
func (r *Recorder) Close() error {
	return r.log.Sync()
}
