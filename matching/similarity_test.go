package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "MARIA SILVA", "MARIA SILVA", 100.0},
		{"reordered tokens", "SILVA MARIA", "MARIA SILVA", 100.0},
		{"duplicate tokens collapse", "MARIA MARIA SILVA", "MARIA SILVA", 100.0},
		{"both empty", "", "", 100.0},
		{"one empty", "MARIA SILVA", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenSetRatio(tt.a, tt.b))
		})
	}
}

func TestTokenSetRatioSubset(t *testing.T) {
	// a name fully contained in a longer one scores 100 on the token-set
	// method because the intersection equals the shorter set
	score := TokenSetRatio("MARIA SILVA", "MARIA DA CONCEICAO SILVA")
	assert.Equal(t, 100.0, score)
}

func TestTokenSetRatioDisjointNamesScoreLow(t *testing.T) {
	score := TokenSetRatio("MARIA SILVA", "JOAO PEREIRA")
	assert.Less(t, score, 50.0)
}

func TestTokenSetRatioNearMiss(t *testing.T) {
	// single-character typo in one token stays above typical thresholds
	score := TokenSetRatio("MARIA SILVA", "MARIA SILVB")
	assert.Greater(t, score, 85.0)
	assert.Less(t, score, 100.0)
}

func TestTokenSetRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"MARIA SILVA", "MARIA DA SILVA"},
		{"JOAO PEREIRA", "PEREIRA JOAO SANTOS"},
		{"ANA", "ANA COSTA"},
	}
	for _, p := range pairs {
		assert.Equal(t, TokenSetRatio(p[0], p[1]), TokenSetRatio(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"ação", "acao", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshteinDistance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}
