package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pedrolhs/egressolink/models"
	"github.com/pedrolhs/egressolink/repository"
)

type ExportHandler struct {
	PersonRepo repository.PersonRepositoryInterface
}

func NewExportHandler(personRepo repository.PersonRepositoryInterface) *ExportHandler {
	return &ExportHandler{PersonRepo: personRepo}
}

var exportHeader = []string{
	"enrollment",
	"display_name",
	"age",
	"age_bracket",
	"last_course",
	"course_code",
	"course_level",
	"course_status",
	"matched_by_fragment",
	"matched_by_name",
	"matched_by_name_only",
	"is_partner",
	"partner_company_ids",
	"association_dates",
	"is_founder",
	"founder_company_ids",
	"last_run_uuid",
}

// ExportCSV streams the annotated dataset as a CSV download. Identity
// columns (hash, raw identifiers) are deliberately excluded from the export.
func (eh *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	people, err := eh.PersonRepo.ListAll()
	if err != nil {
		log.Printf("Error loading dataset for export: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "export_failed", "Failed to load dataset")
		return
	}

	filename := fmt.Sprintf("egressos_%s.csv", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		log.Printf("Error writing export header: %v", err)
		return
	}

	for _, person := range people {
		if err := writer.Write(exportRow(person)); err != nil {
			log.Printf("Error writing export row for person %d: %v", person.ID, err)
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Printf("Error flushing export: %v", err)
	}
}

func exportRow(p models.Person) []string {
	age := ""
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}
	return []string{
		p.Enrollment,
		p.DisplayName,
		age,
		p.AgeBracket,
		p.LastCourse,
		p.CourseCode,
		p.CourseLevel,
		p.CourseStatus,
		strconv.FormatBool(p.MatchedByFragment),
		strconv.FormatBool(p.MatchedByName),
		strconv.FormatBool(p.MatchedByNameOnly),
		strconv.FormatBool(p.IsPartner),
		strings.Join(models.StringListFromJSON(p.PartnerCompanyIDs), "|"),
		strings.Join(models.StringListFromJSON(p.AssociationDates), "|"),
		strconv.FormatBool(p.IsFounder),
		strings.Join(models.StringListFromJSON(p.FounderCompanyIDs), "|"),
		p.LastRunUUID,
	}
}
