package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"diacritics and case", "joão  DA Silva", "JOAO DA SILVA"},
		{"already normalized", "JOAO DA SILVA", "JOAO DA SILVA"},
		{"leading and trailing space", "  Maria Souza ", "MARIA SOUZA"},
		{"tabs and newlines collapse", "Ana\t\nCosta", "ANA COSTA"},
		{"cedilla and tilde", "Conceição Magalhães", "CONCEICAO MAGALHAES"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{"joão  DA Silva", "Érico Veríssimo", "  a  b  c  "}
	for _, in := range inputs {
		once := NormalizeName(in)
		assert.Equal(t, once, NormalizeName(once), "normalizing twice must equal normalizing once for %q", in)
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "52998224725", DigitsOnly("529.982.247-25"))
	assert.Equal(t, "", DigitsOnly("abc"))
	assert.Equal(t, "123", DigitsOnly(" 1a2b3 "))
}

func TestCleanCPF(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"valid formatted", "529.982.247-25", "52998224725"},
		{"valid bare", "11144477735", "11144477735"},
		{"wrong check digit", "52998224726", ""},
		{"repeated digits", "11111111111", ""},
		{"too short", "1234567890", ""},
		{"too long", "123456789012", ""},
		{"empty", "", ""},
		{"letters only", "not-a-cpf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanCPF(tt.input))
		})
	}
}

func TestCPFFragment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"full id takes middle slice", "12345678901", "456789"},
		{"valid cpf middle slice", "52998224725", "982247"},
		{"ten digits takes last six", "1234567890", "567890"},
		{"six digits kept whole", "123456", "123456"},
		{"five digits unusable", "12345", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CPFFragment(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Contains(t, []int{0, 6}, len(got), "fragment length must be 0 or 6")
		})
	}
}
