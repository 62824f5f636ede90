package matching

// PartnerRecord is one (company, partner) relationship from the registry
// extract, reduced to the fields the matcher needs. Fragment and Name are
// expected to be pre-derived at load time (utils.CPFFragment /
// utils.NormalizeName). AssociationDate keeps the raw string form; it is only
// parsed during founder inference.
type PartnerRecord struct {
	Fragment        string
	Name            string
	BasicCNPJ       string
	AssociationDate string
}

// Candidate is one partner identity a fragment lookup can return.
type Candidate struct {
	Name            string
	BasicCNPJ       string
	AssociationDate string
}

// CandidateSource abstracts fragment-keyed candidate lookup so the matcher
// can run against either the in-memory PartnerIndex or a database-backed
// source when the reference set is too large to hold in memory.
type CandidateSource interface {
	// CandidatesByFragment returns every candidate sharing the fragment.
	// An unknown fragment returns an empty slice.
	CandidatesByFragment(fragment string) ([]Candidate, error)
}

// PartnerIndex groups partner records by CPF fragment for O(1) candidate
// lookup. Built once per pipeline run and read-only afterwards.
type PartnerIndex struct {
	byFragment map[string][]Candidate
}

// BuildPartnerIndex groups records by fragment, skipping records with an
// empty fragment and deduplicating identical (name, cnpj, date) triples
// within a group. Group order is not guaranteed.
func BuildPartnerIndex(records []PartnerRecord) *PartnerIndex {
	idx := &PartnerIndex{byFragment: make(map[string][]Candidate)}
	seen := make(map[PartnerRecord]struct{}, len(records))
	for _, rec := range records {
		if rec.Fragment == "" {
			continue
		}
		if _, dup := seen[rec]; dup {
			continue
		}
		seen[rec] = struct{}{}
		idx.byFragment[rec.Fragment] = append(idx.byFragment[rec.Fragment], Candidate{
			Name:            rec.Name,
			BasicCNPJ:       rec.BasicCNPJ,
			AssociationDate: rec.AssociationDate,
		})
	}
	return idx
}

// CandidatesByFragment implements CandidateSource.
func (idx *PartnerIndex) CandidatesByFragment(fragment string) ([]Candidate, error) {
	if idx == nil || fragment == "" {
		return nil, nil
	}
	return idx.byFragment[fragment], nil
}

// Len returns the number of distinct fragments in the index.
func (idx *PartnerIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byFragment)
}
