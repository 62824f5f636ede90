package matching

import (
	"log"

	"github.com/pedrolhs/egressolink/utils"
)

// Default thresholds. Historical runs of the matching used scores between 90
// and 92 for both paths; these are starting points, not fixed laws, and both
// are overridable through configuration.
const (
	DefaultNameScoreThreshold     = 90.0
	DefaultFallbackScoreThreshold = 92.0
	DefaultFallbackScanLimit      = 5000
)

// Options controls the matcher thresholds. Zero values fall back to the
// package defaults.
type Options struct {
	// NameScoreThreshold is the minimum token-set score for a fragment-joined
	// candidate to be confirmed.
	NameScoreThreshold float64
	// FallbackScoreThreshold is the minimum score on the name-only fallback
	// path.
	FallbackScoreThreshold float64
	// FallbackScanLimit bounds how many reference names the fallback path
	// scans per person.
	FallbackScanLimit int
}

func (o Options) withDefaults() Options {
	if o.NameScoreThreshold <= 0 {
		o.NameScoreThreshold = DefaultNameScoreThreshold
	}
	if o.FallbackScoreThreshold <= 0 {
		o.FallbackScoreThreshold = DefaultFallbackScoreThreshold
	}
	if o.FallbackScanLimit <= 0 {
		o.FallbackScanLimit = DefaultFallbackScanLimit
	}
	return o
}

// Matcher confirms or rejects partner identity for alumni records using the
// fragment join plus fuzzy name comparison.
type Matcher struct {
	opts Options
}

func NewMatcher(opts Options) *Matcher {
	return &Matcher{opts: opts.withDefaults()}
}

// PersonInput carries the two person fields the matcher needs.
type PersonInput struct {
	CleanCPF       string
	NormalizedName string
}

// ConfirmedCompany is a company relationship confirmed by fragment plus name.
type ConfirmedCompany struct {
	BasicCNPJ       string
	AssociationDate string
}

// MatchResult holds the independent match signals for one person. IsPartner
// is the conjunction of the fragment and name signals; MatchedByNameOnly is
// the weaker fallback signal, produced only when the fragment path found
// nothing.
type MatchResult struct {
	Fragment          string
	MatchedByFragment bool
	MatchedByName     bool
	MatchedByNameOnly bool
	IsPartner         bool
	Companies         []ConfirmedCompany
}

// Match runs the fragment join and name confirmation for one person.
// A nil source or failed lookup degrades every flag to false; the pipeline
// keeps going. fallbackNames may be nil when no name-only reference set is
// loaded. Matching is existential: any candidate clearing the threshold
// confirms the person, and every clearing candidate's company is retained
// (one person can be a partner in several companies).
func (m *Matcher) Match(person PersonInput, source CandidateSource, fallbackNames []string) MatchResult {
	res := MatchResult{
		Fragment:  utils.CPFFragment(person.CleanCPF),
		Companies: []ConfirmedCompany{},
	}

	if res.Fragment != "" && source != nil {
		candidates, err := source.CandidatesByFragment(res.Fragment)
		if err != nil {
			log.Printf("matcher: candidate lookup failed for fragment %s: %v", res.Fragment, err)
			candidates = nil
		}
		res.MatchedByFragment = len(candidates) > 0

		if person.NormalizedName != "" {
			seen := make(map[ConfirmedCompany]struct{})
			for _, cand := range candidates {
				if TokenSetRatio(person.NormalizedName, cand.Name) < m.opts.NameScoreThreshold {
					continue
				}
				res.MatchedByName = true
				company := ConfirmedCompany{BasicCNPJ: cand.BasicCNPJ, AssociationDate: cand.AssociationDate}
				if _, dup := seen[company]; dup {
					continue
				}
				seen[company] = struct{}{}
				res.Companies = append(res.Companies, company)
			}
		}
	}

	res.IsPartner = res.MatchedByFragment && res.MatchedByName

	// Name-only fallback, used only when the fragment path yielded nothing.
	if !res.MatchedByFragment && person.NormalizedName != "" {
		limit := len(fallbackNames)
		if limit > m.opts.FallbackScanLimit {
			limit = m.opts.FallbackScanLimit
		}
		for _, refName := range fallbackNames[:limit] {
			if TokenSetRatio(person.NormalizedName, refName) >= m.opts.FallbackScoreThreshold {
				res.MatchedByNameOnly = true
				break
			}
		}
	}

	return res
}
