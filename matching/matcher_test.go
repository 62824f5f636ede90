package matching

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// erroringSource always fails lookups, simulating a broken reference table.
type erroringSource struct{}

func (erroringSource) CandidatesByFragment(string) ([]Candidate, error) {
	return nil, errors.New("reference table unavailable")
}

func testIndex() *PartnerIndex {
	return BuildPartnerIndex([]PartnerRecord{
		{Fragment: "456789", Name: "MARIA SILVA", BasicCNPJ: "C1", AssociationDate: "2020-01-10"},
		{Fragment: "456789", Name: "MARIA SILVA", BasicCNPJ: "C2", AssociationDate: "2021-03-05"},
		{Fragment: "456789", Name: "JOAO PEREIRA", BasicCNPJ: "C3", AssociationDate: ""},
	})
}

func TestMatchFragmentAndName(t *testing.T) {
	m := NewMatcher(Options{})
	res := m.Match(PersonInput{CleanCPF: "12345678901", NormalizedName: "MARIA SILVA"}, testIndex(), nil)

	assert.Equal(t, "456789", res.Fragment)
	assert.True(t, res.MatchedByFragment)
	assert.True(t, res.MatchedByName)
	assert.True(t, res.IsPartner)
	assert.False(t, res.MatchedByNameOnly)

	require.Len(t, res.Companies, 2, "both of MARIA SILVA's companies are retained")
	ids := []string{res.Companies[0].BasicCNPJ, res.Companies[1].BasicCNPJ}
	assert.ElementsMatch(t, []string{"C1", "C2"}, ids)
}

func TestMatchFragmentWithoutName(t *testing.T) {
	m := NewMatcher(Options{})
	res := m.Match(PersonInput{CleanCPF: "12345678901", NormalizedName: "CARLOS ALMEIDA"}, testIndex(), nil)

	assert.True(t, res.MatchedByFragment)
	assert.False(t, res.MatchedByName)
	assert.False(t, res.IsPartner, "fragment alone never confirms a partner")
	assert.Empty(t, res.Companies)
}

func TestMatchNoFragment(t *testing.T) {
	m := NewMatcher(Options{})
	res := m.Match(PersonInput{CleanCPF: "", NormalizedName: "MARIA SILVA"}, testIndex(), nil)

	assert.Equal(t, "", res.Fragment)
	assert.False(t, res.MatchedByFragment)
	assert.False(t, res.IsPartner)
}

func TestMatchNilSourceDegrades(t *testing.T) {
	m := NewMatcher(Options{})
	res := m.Match(PersonInput{CleanCPF: "12345678901", NormalizedName: "MARIA SILVA"}, nil, nil)

	assert.False(t, res.MatchedByFragment)
	assert.False(t, res.MatchedByName)
	assert.False(t, res.IsPartner)
	assert.NotNil(t, res.Companies)
	assert.Empty(t, res.Companies)
}

func TestMatchLookupErrorDegrades(t *testing.T) {
	m := NewMatcher(Options{})
	res := m.Match(PersonInput{CleanCPF: "12345678901", NormalizedName: "MARIA SILVA"}, erroringSource{}, nil)

	assert.False(t, res.MatchedByFragment)
	assert.False(t, res.IsPartner)
}

func TestMatchNameOnlyFallback(t *testing.T) {
	m := NewMatcher(Options{})
	// fragment not present in the index, fallback list holds the name
	res := m.Match(
		PersonInput{CleanCPF: "99999999999", NormalizedName: "MARIA SILVA"},
		testIndex(),
		[]string{"JOAO PEREIRA", "MARIA SILVA"},
	)

	assert.False(t, res.MatchedByFragment)
	assert.False(t, res.IsPartner)
	assert.True(t, res.MatchedByNameOnly)
}

func TestMatchFallbackSkippedWhenFragmentMatched(t *testing.T) {
	m := NewMatcher(Options{})
	res := m.Match(
		PersonInput{CleanCPF: "12345678901", NormalizedName: "MARIA SILVA"},
		testIndex(),
		[]string{"MARIA SILVA"},
	)

	assert.True(t, res.MatchedByFragment)
	assert.False(t, res.MatchedByNameOnly, "fallback only runs when the fragment path found nothing")
}

func TestMatchFallbackScanLimitBound(t *testing.T) {
	m := NewMatcher(Options{FallbackScanLimit: 2})
	// the matching name sits past the scan limit
	names := []string{"AAA BBB", "CCC DDD", "MARIA SILVA"}
	res := m.Match(PersonInput{CleanCPF: "99999999999", NormalizedName: "MARIA SILVA"}, testIndex(), names)

	assert.False(t, res.MatchedByNameOnly)
}

func TestMatchCustomThreshold(t *testing.T) {
	strict := NewMatcher(Options{NameScoreThreshold: 100})
	res := strict.Match(PersonInput{CleanCPF: "12345678901", NormalizedName: "MARIA SILVAA"}, testIndex(), nil)
	assert.False(t, res.MatchedByName)

	lenient := NewMatcher(Options{NameScoreThreshold: 80})
	res = lenient.Match(PersonInput{CleanCPF: "12345678901", NormalizedName: "MARIA SILVAA"}, testIndex(), nil)
	assert.True(t, res.MatchedByName)
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, DefaultNameScoreThreshold, opts.NameScoreThreshold)
	assert.Equal(t, DefaultFallbackScoreThreshold, opts.FallbackScoreThreshold)
	assert.Equal(t, DefaultFallbackScanLimit, opts.FallbackScanLimit)
}
