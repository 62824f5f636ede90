package utils

import (
	"time"
)

// Date layouts found in the registry extracts. The bulk files mix ISO dates
// with the compact numeric form depending on the source table and vintage.
var flexibleDateLayouts = []string{
	"2006-01-02",
	"20060102",
}

// ParseFlexibleDate parses a registry date string, accepting ISO (YYYY-MM-DD)
// and compact (YYYYMMDD) forms. Returns ok=false for empty or unparseable
// input; callers exclude such rows from date arithmetic instead of failing.
func ParseFlexibleDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range flexibleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AgeAt returns full years elapsed from birth to ref.
func AgeAt(birth, ref time.Time) int {
	years := ref.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(ref) {
		years--
	}
	return years
}

// AgeBracketUnknown is used when no birth date is available.
const AgeBracketUnknown = "unknown"

// AgeBracket maps an age in years to the reporting bracket used by the
// annotated dataset.
func AgeBracket(age int) string {
	switch {
	case age < 0:
		return AgeBracketUnknown
	case age < 18:
		return "<18"
	case age < 25:
		return "18-24"
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	case age < 55:
		return "45-54"
	case age < 65:
		return "55-64"
	default:
		return "65+"
	}
}
