package services

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pedrolhs/egressolink/config"
	"github.com/pedrolhs/egressolink/database"
	"github.com/pedrolhs/egressolink/etl"
	"github.com/pedrolhs/egressolink/founders"
	"github.com/pedrolhs/egressolink/ingest"
	"github.com/pedrolhs/egressolink/matching"
	"github.com/pedrolhs/egressolink/models"
	"github.com/pedrolhs/egressolink/repository"
)

// PipelineService runs the reconciliation pipeline end to end: roster
// ingestion, reference refresh, partner matching, founder inference and
// dataset assembly. One service instance is shared by the worker pool and
// all jobs are serialized through it by the workers, so it keeps no
// per-run state on the struct.
type PipelineService struct {
	cfg        config.Config
	db         *sql.DB
	personRepo repository.PersonRepositoryInterface
}

func NewPipelineService(cfg config.Config, db *sql.DB, personRepo repository.PersonRepositoryInterface) *PipelineService {
	return &PipelineService{cfg: cfg, db: db, personRepo: personRepo}
}

// RefreshReferenceData reloads the partner and company reference tables from
// the registry extract directory. A missing or unreadable directory is not
// fatal; the pipeline keeps whatever reference data the last successful
// refresh loaded.
func (s *PipelineService) RefreshReferenceData() (partnerCount, companyCount int, err error) {
	if _, statErr := os.Stat(s.cfg.RegistryDataDir); statErr != nil {
		log.Printf("pipeline: registry data dir %s unavailable (%v); keeping existing reference tables", s.cfg.RegistryDataDir, statErr)
		return 0, 0, nil
	}

	records, names, err := ingest.ReadPartnerExtracts(s.cfg.RegistryDataDir, -1)
	if err != nil {
		log.Printf("pipeline: partner extract read failed: %v; keeping existing reference tables", err)
	} else if len(records) > 0 || len(names) > 0 {
		partnerCount, err = database.ReplacePartners(s.db, records)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to replace partner table: %w", err)
		}
		if _, err = database.ReplacePartnerNames(s.db, names); err != nil {
			return 0, 0, fmt.Errorf("failed to replace partner name table: %w", err)
		}
	}

	companies, err := ingest.ReadCompanyExtracts(s.cfg.RegistryDataDir, -1)
	if err != nil {
		log.Printf("pipeline: company extract read failed: %v; keeping existing company table", err)
	} else if len(companies) > 0 {
		companyCount, err = database.UpsertCompanies(s.db, companies)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to upsert company table: %w", err)
		}
	}

	return partnerCount, companyCount, nil
}

// Run executes one full pipeline pass for the run row identified by runUUID.
// It returns the stats that the caller records on the run; a non-nil error
// means the run failed before producing a dataset.
func (s *PipelineService) Run(runUUID string) (models.PipelineRun, error) {
	var stats models.PipelineRun

	partnerCount, companyCount, err := s.RefreshReferenceData()
	if err != nil {
		return stats, err
	}
	stats.PartnerRecords = partnerCount
	stats.CompanyRecords = companyCount

	// The roster is the one input the pipeline cannot degrade around.
	sourceRecords, err := ingest.ReadAlumniCSV(s.cfg.AlumniCSVFile)
	if err != nil {
		return stats, fmt.Errorf("failed to read alumni roster: %w", err)
	}
	if len(sourceRecords) == 0 {
		return stats, fmt.Errorf("alumni roster %s contains no rows", s.cfg.AlumniCSVFile)
	}

	people := make([]models.Person, 0, len(sourceRecords))
	for _, rec := range sourceRecords {
		person := etl.TransformPerson(rec, s.cfg.CPFSalt, nowFunc())
		if err := s.personRepo.Upsert(&person); err != nil {
			log.Printf("pipeline: failed to upsert person %q: %v", person.DisplayName, err)
			continue
		}
		people = append(people, person)
	}
	stats.PeopleTotal = len(people)

	source, err := s.candidateSource()
	if err != nil {
		log.Printf("pipeline: %v; matching degrades to no-match for all people", err)
		source = nil
	}

	fallbackNames, err := database.ListPartnerNames(s.db, s.cfg.FallbackScanLimit)
	if err != nil {
		log.Printf("pipeline: failed to load fallback name list: %v; name-only fallback disabled", err)
		fallbackNames = nil
	}

	matcher := matching.NewMatcher(matching.Options{
		NameScoreThreshold:     s.cfg.NameScoreThreshold,
		FallbackScoreThreshold: s.cfg.FallbackScoreThreshold,
		FallbackScanLimit:      s.cfg.FallbackScanLimit,
	})

	matches := make(map[uint]matching.MatchResult, len(people))
	var associations []founders.Association
	for _, person := range people {
		res := matcher.Match(matching.PersonInput{
			CleanCPF:       person.CleanCPF,
			NormalizedName: person.NormalizedName,
		}, source, fallbackNames)
		matches[person.ID] = res

		if res.IsPartner {
			stats.PartnersMatched++
		}
		if res.MatchedByNameOnly {
			stats.NameOnlyMatched++
		}
		for _, company := range res.Companies {
			associations = append(associations, founders.Association{
				PersonID:        personKey(person),
				BasicCNPJ:       company.BasicCNPJ,
				AssociationDate: company.AssociationDate,
			})
		}
	}

	registry, err := s.companyRegistry(associations)
	if err != nil {
		log.Printf("pipeline: company date lookup failed: %v; founder inference skipped", err)
		registry = nil
	}
	founderResults := founders.Infer(associations, registry, s.cfg.FounderWindowDays)
	for _, res := range founderResults {
		if res.IsFounder {
			stats.FoundersFound++
		}
	}

	annotated := etl.AssembleDataset(people, matches, founderResults, personKey)
	for i := range annotated {
		annotated[i].LastRunUUID = runUUID
		if err := s.personRepo.UpdateAnnotations(&annotated[i]); err != nil {
			log.Printf("pipeline: failed to persist annotations for person %d: %v", annotated[i].ID, err)
		}
	}

	log.Printf("pipeline: run complete: %d people, %d partners, %d name-only, %d founders",
		stats.PeopleTotal, stats.PartnersMatched, stats.NameOnlyMatched, stats.FoundersFound)
	return stats, nil
}

// candidateSource picks the partner lookup implementation for this run.
// Memory mode materializes the fragment index up front; db mode queries the
// indexed partners table per fragment.
func (s *PipelineService) candidateSource() (matching.CandidateSource, error) {
	if s.cfg.PartnerIndexMode == config.PartnerIndexModeDB {
		return &database.PartnerCandidateSource{DB: s.db}, nil
	}

	records, err := database.AllPartnerRecords(s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to load partner records: %w", err)
	}
	idx := matching.BuildPartnerIndex(records)
	log.Printf("pipeline: built in-memory partner index with %d fragment bucket(s)", idx.Len())
	return idx, nil
}

// companyRegistry loads registration dates for exactly the companies that
// appear in confirmed associations.
func (s *PipelineService) companyRegistry(associations []founders.Association) (founders.CompanyDates, error) {
	if len(associations) == 0 {
		return founders.CompanyDateMap{}, nil
	}
	seen := make(map[string]struct{}, len(associations))
	ids := make([]string, 0, len(associations))
	for _, assoc := range associations {
		if _, ok := seen[assoc.BasicCNPJ]; ok {
			continue
		}
		seen[assoc.BasicCNPJ] = struct{}{}
		ids = append(ids, assoc.BasicCNPJ)
	}
	return database.CompanyDatesByID(s.db, ids)
}

// personKey identifies a person across the match and founder stages. The
// identity hash is preferred; people without a usable identifier fall back
// to enrollment plus normalized name.
func personKey(p models.Person) string {
	if p.IdentityHash != "" {
		return p.IdentityHash
	}
	return p.Enrollment + "|" + p.NormalizedName
}

// nowFunc is swapped in tests.
var nowFunc = time.Now
