package etl

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/pedrolhs/egressolink/founders"
	"github.com/pedrolhs/egressolink/matching"
	"github.com/pedrolhs/egressolink/models"
)

// AssembleDataset joins the base person rows with their match and founder
// results and writes the annotation columns in place. Left-join semantics
// throughout: every input person appears exactly once in the output, people
// missing from either result map get false flags and empty lists (never
// null), and base columns are untouched. Keys into founderResults are the
// person IDs as produced by the caller's association step.
func AssembleDataset(people []models.Person, matches map[uint]matching.MatchResult, founderResults map[string]founders.Result, personKey func(models.Person) string) []models.Person {
	out := make([]models.Person, len(people))
	for i, person := range people {
		match, hasMatch := matches[person.ID]
		if !hasMatch {
			match = matching.MatchResult{Companies: []matching.ConfirmedCompany{}}
		}

		person.MatchedByFragment = match.MatchedByFragment
		person.MatchedByName = match.MatchedByName
		person.MatchedByNameOnly = match.MatchedByNameOnly
		person.IsPartner = match.IsPartner

		companyIDs := make([]string, 0, len(match.Companies))
		assocDates := make([]string, 0, len(match.Companies))
		for _, company := range match.Companies {
			companyIDs = append(companyIDs, company.BasicCNPJ)
			assocDates = append(assocDates, company.AssociationDate)
		}
		person.PartnerCompanyIDs = models.StringListJSON(companyIDs)
		person.AssociationDates = models.StringListJSON(assocDates)

		founderRes, hasFounder := founderResults[personKey(person)]
		if !hasFounder {
			founderRes = founders.Result{Relations: []founders.FoundingRelation{}, CompanyIDs: []string{}}
		}
		person.IsFounder = founderRes.IsFounder
		person.FounderCompanyIDs = models.StringListJSON(founderRes.CompanyIDs)
		person.FoundingRelations = relationsJSON(founderRes.Relations)

		out[i] = person
	}
	return out
}

func relationsJSON(relations []founders.FoundingRelation) datatypes.JSON {
	if relations == nil {
		relations = []founders.FoundingRelation{}
	}
	raw, err := json.Marshal(relations)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
