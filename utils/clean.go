package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeName canonicalizes a free-text person or company name for
// comparison: diacritics removed, whitespace collapsed, trimmed, upper-cased.
// Empty input yields "". The transform is idempotent.
func NormalizeName(name string) string {
	s := stripDiacritics(strings.TrimSpace(name))
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.ToUpper(strings.TrimSpace(s))
}

// stripDiacritics removes accent marks by decomposing to NFD and dropping
// combining marks (Unicode Mn category).
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanCPF reduces a raw CPF to its digit form and validates it. Returns ""
// when the input does not contain exactly 11 digits or fails the check-digit
// verification, so callers can treat "" as "no usable identity".
func CleanCPF(raw string) string {
	digits := DigitsOnly(raw)
	if len(digits) != 11 {
		return ""
	}
	if !validCPFCheckDigits(digits) {
		return ""
	}
	return digits
}

// validCPFCheckDigits verifies the two CPF verifier digits. CPFs made of a
// single repeated digit pass the arithmetic but are reserved invalid values.
func validCPFCheckDigits(digits string) bool {
	allSame := true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	for _, pos := range []int{9, 10} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += int(digits[i]-'0') * (pos + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != int(digits[pos]-'0') {
			return false
		}
	}
	return true
}

// CPFFragment derives the 6-digit partial identifier used as the coarse join
// key against the partner registry. The registry publishes partner CPFs
// masked, so only this middle slice is comparable across both datasets.
// Returns "" when the input is too short to yield a stable fragment; the
// result length is always 0 or 6.
func CPFFragment(digits string) string {
	if len(digits) >= 11 {
		return digits[3:9]
	}
	if len(digits) >= 6 {
		return digits[len(digits)-6:]
	}
	return ""
}
