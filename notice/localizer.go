package notice

import "github.com/BurntSushi/toml"

// Localizer supplies the translated severity words and "from" stack-frame
// prefix used by Notice.Print, falling back to English for any key missing
// from the loaded table. The zero value behaves as the English-only
// fallback.
type Localizer struct {
	severityWords map[string]string
	fromWord      string
}

// englishSeverityWords is the built-in fallback table, always consulted
// last.
var englishSeverityWords = map[Severity]string{
	Blocker: "BLOCKER",
	Error:   "ERROR",
	Warning: "WARNING",
	Caution: "CAUTION",
	Attn:    "ATTN",
}

const englishFromWord = "from"

// DefaultLocalizer returns the English-only Localizer.
func DefaultLocalizer() *Localizer {
	return &Localizer{}
}

// localeTable is the shape of the TOML document a Localizer loads overrides
// from. Keys not present fall back to the English built-ins.
type localeTable struct {
	Severity map[string]string `toml:"severity"`
	From     string            `toml:"from"`
}

// LoadLocalizer parses a TOML document (as produced by data) containing
// optional [severity] word overrides and an optional top-level "from" key,
// and returns a Localizer that prefers those overrides but falls back to
// English for anything missing or malformed.
func LoadLocalizer(data []byte) (*Localizer, error) {
	var table localeTable
	if _, err := toml.Decode(string(data), &table); err != nil {
		return nil, err
	}
	return &Localizer{
		severityWords: table.Severity,
		fromWord:      table.From,
	}, nil
}

// SeverityWord returns the localized word for sev, falling back to the
// English word if no override was loaded (or the override table omits it).
func (l *Localizer) SeverityWord(sev Severity) string {
	if l != nil && l.severityWords != nil {
		if w, ok := l.severityWords[sev.String()]; ok && w != "" {
			return w
		}
	}
	return englishSeverityWords[sev]
}

// FromWord returns the localized "from" prefix used on stack-frame lines,
// falling back to English.
func (l *Localizer) FromWord() string {
	if l != nil && l.fromWord != "" {
		return l.fromWord
	}
	return englishFromWord
}
