package discovery

// LanguageProfile holds the Google News edition parameters for a language.
type LanguageProfile struct {
	Code string // "en", "fr", "es", "pt"
	HL   string // e.g. "en-US"
	GL   string // e.g. "US"
	CEID string // e.g. "US:en"
}

// DefaultLanguageProfiles are the editions truthlens knows about.
// HL/GL/CEID influence what Google News returns.
func DefaultLanguageProfiles() map[string]LanguageProfile {
	return map[string]LanguageProfile{
		"en": {Code: "en", HL: "en-US", GL: "US", CEID: "US:en"},
		"fr": {Code: "fr", HL: "fr-FR", GL: "FR", CEID: "FR:fr"},
		"es": {Code: "es", HL: "es-419", GL: "US", CEID: "US:es-419"},
		"pt": {Code: "pt", HL: "pt-BR", GL: "BR", CEID: "BR:pt-419"},
		"de": {Code: "de", HL: "de", GL: "DE", CEID: "DE:de"},
	}
}

// ProfileFor returns the profile for lang, falling back to English.
func ProfileFor(lang string) LanguageProfile {
	profiles := DefaultLanguageProfiles()
	if p, ok := profiles[lang]; ok {
		return p
	}
	return profiles["en"]
}
