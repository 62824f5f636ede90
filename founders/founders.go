// Package founders labels confirmed partner relationships as founding
// relationships by comparing each person's entry-into-partnership date with
// the company's registered activity-start date.
package founders

import (
	"time"

	"github.com/pedrolhs/egressolink/utils"
)

// DefaultWindowDays is the maximum absolute gap, in days, between the
// association date and the company registration date for the relationship to
// count as founding. Earlier iterations of the analysis ran with 7 and with
// 31 days; 7 is the canonical default and the value is configurable
// (FOUNDER_WINDOW_DAYS) pending a product decision.
const DefaultWindowDays = 7

// Association is one confirmed (person, company) relationship entering
// founder inference. Dates are kept as raw registry strings and parsed
// tolerantly here.
type Association struct {
	PersonID        string
	BasicCNPJ       string
	AssociationDate string
}

// CompanyDates resolves a company's registration/activity-start date.
type CompanyDates interface {
	// RegistrationDate returns ok=false when the company is unknown or has
	// no usable date.
	RegistrationDate(basicCNPJ string) (time.Time, bool)
}

// CompanyDateMap is an in-memory CompanyDates implementation.
type CompanyDateMap map[string]time.Time

func (m CompanyDateMap) RegistrationDate(basicCNPJ string) (time.Time, bool) {
	t, ok := m[basicCNPJ]
	return t, ok
}

// FoundingRelation is one person-company pair that satisfied the window.
type FoundingRelation struct {
	BasicCNPJ        string    `json:"basic_cnpj"`
	AssociationDate  time.Time `json:"association_date"`
	RegistrationDate time.Time `json:"registration_date"`
	GapDays          int       `json:"gap_days"`
}

// Result aggregates founder inference per person. Relations and CompanyIDs
// are always non-nil so downstream consumers never need null handling.
type Result struct {
	Relations  []FoundingRelation
	CompanyIDs []string
	IsFounder  bool
}

func emptyResult() Result {
	return Result{Relations: []FoundingRelation{}, CompanyIDs: []string{}}
}

// Infer computes founder labels for every person in associations. A relation
// is founding when both dates parse and the absolute day gap is at most
// windowDays. Unparseable dates and unknown companies exclude the relation
// from consideration without failing; people with no qualifying relation map
// to an empty Result, never to a missing key, so every distinct PersonID in
// the input appears in the output. A nil registry yields empty results for
// everyone (soft degradation when the company reference table is absent).
func Infer(associations []Association, registry CompanyDates, windowDays int) map[string]Result {
	if windowDays < 0 {
		windowDays = DefaultWindowDays
	}

	results := make(map[string]Result)
	for _, assoc := range associations {
		res, ok := results[assoc.PersonID]
		if !ok {
			res = emptyResult()
		}

		if relation, founding := evaluate(assoc, registry, windowDays); founding {
			res.Relations = append(res.Relations, relation)
			res.CompanyIDs = append(res.CompanyIDs, relation.BasicCNPJ)
			res.IsFounder = true
		}
		results[assoc.PersonID] = res
	}
	return results
}

func evaluate(assoc Association, registry CompanyDates, windowDays int) (FoundingRelation, bool) {
	if registry == nil || assoc.BasicCNPJ == "" {
		return FoundingRelation{}, false
	}
	assocDate, ok := utils.ParseFlexibleDate(assoc.AssociationDate)
	if !ok {
		return FoundingRelation{}, false
	}
	regDate, ok := registry.RegistrationDate(assoc.BasicCNPJ)
	if !ok {
		return FoundingRelation{}, false
	}

	gap := int(assocDate.Sub(regDate).Hours() / 24)
	if gap < 0 {
		gap = -gap
	}
	if gap > windowDays {
		return FoundingRelation{}, false
	}
	return FoundingRelation{
		BasicCNPJ:        assoc.BasicCNPJ,
		AssociationDate:  assocDate,
		RegistrationDate: regDate,
		GapDays:          gap,
	}, true
}
