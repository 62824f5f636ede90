// Package ingest reads the external source files consumed by the pipeline:
// the alumni roster CSV and the bulk registry extracts (partners and
// establishments). It is the I/O collaborator around the matching core; all
// column derivation beyond normalization happens downstream.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/facette/natsort"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/pedrolhs/egressolink/database"
	"github.com/pedrolhs/egressolink/etl"
	"github.com/pedrolhs/egressolink/matching"
	"github.com/pedrolhs/egressolink/utils"
)

// Registry extract column offsets (semicolon-separated, headerless, per the
// published socios/estabelecimentos layouts).
const (
	partnerColBasicCNPJ       = 0
	partnerColIdentifier      = 1
	partnerColName            = 2
	partnerColDocument        = 3
	partnerColAssociationDate = 5
	partnerMinColumns         = 6

	companyColBasicCNPJ     = 0
	companyColActivityStart = 10
	companyMinColumns       = 11
)

// partnerIdentifierPerson marks natural-person rows in the socios extract
// (legal entities carry "1", foreigners "3").
const partnerIdentifierPerson = "2"

// headerAliases maps normalized roster header variants to canonical names.
var headerAliases = map[string]string{
	"matriculadre":   "matricula",
	"datanascimento": "data_nascimento",
	"dataingresso":   "data_ingresso",
	"dataconclusao":  "data_formacao",
	"dataformacao":   "data_formacao",
	"pai":            "nome_pai",
	"mae":            "nome_mae",
	"codigo":         "codigo_curso",
	"situacaocurso":  "situacao_curso",
}

var alumniDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"20060102",
}

// ReadAlumniCSV reads the alumni roster (comma-separated, UTF-8, header
// row). Header names are matched case-insensitively with separator
// variations tolerated; missing optional columns simply leave fields empty.
// Rows with malformed dates keep the row and drop the date.
func ReadAlumniCSV(path string) ([]etl.SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alumni roster %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read alumni roster header: %w", err)
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[canonicalHeader(h)] = i
	}
	if _, ok := index["nome"]; !ok {
		return nil, fmt.Errorf("alumni roster %s is missing required column 'nome'", path)
	}

	var records []etl.SourceRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("ingest: skipping malformed alumni row: %v", err)
			continue
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		records = append(records, etl.SourceRecord{
			Enrollment:     field("matricula"),
			Name:           field("nome"),
			CPF:            field("cpf"),
			FatherName:     field("nome_pai"),
			MotherName:     field("nome_mae"),
			BirthDate:      parseAlumniDate(field("data_nascimento")),
			EnrollmentDate: parseAlumniDate(field("data_ingresso")),
			CompletionDate: parseAlumniDate(field("data_formacao")),
			Course:         field("curso"),
			CourseCode:     field("codigo_curso"),
			CourseLevel:    field("nivel"),
			CourseStatus:   field("situacao_curso"),
		})
	}

	log.Printf("ingest: read %d alumni rows from %s", len(records), path)
	return records, nil
}

// canonicalHeader lower-cases a header and strips separators, then applies
// the known alias table.
func canonicalHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(h)
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	// restore the canonical underscore forms used by the field lookups
	switch h {
	case "nomepai":
		return "nome_pai"
	case "nomemae":
		return "nome_mae"
	case "codigocurso":
		return "codigo_curso"
	}
	return h
}

func parseAlumniDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range alumniDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ReadPartnerExtracts scans dir for Socios*.csv files (natural-sort order,
// so Socios2 precedes Socios10) and parses them into partner reference
// records plus the deduplicated name list used by the fallback path. Only
// natural-person rows yield fragment records; every non-empty name feeds the
// name list. maxFiles < 0 means no limit.
func ReadPartnerExtracts(dir string, maxFiles int) ([]matching.PartnerRecord, []string, error) {
	files, err := extractFiles(dir, "socios")
	if err != nil {
		return nil, nil, err
	}
	if maxFiles >= 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}

	var records []matching.PartnerRecord
	nameSet := make(map[string]struct{})
	for _, path := range files {
		if err := readPartnerFile(path, &records, nameSet); err != nil {
			log.Printf("ingest: failed to read partner extract %s: %v", path, err)
		}
	}

	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	natsort.Sort(names)

	log.Printf("ingest: read %d partner records and %d unique names from %d file(s) in %s",
		len(records), len(names), len(files), dir)
	return records, names, nil
}

func readPartnerFile(path string, records *[]matching.PartnerRecord, nameSet map[string]struct{}) error {
	rows, err := readLatin1CSV(path, partnerMinColumns)
	if err != nil {
		return err
	}
	for _, row := range rows {
		name := utils.NormalizeName(row[partnerColName])
		if name != "" {
			nameSet[name] = struct{}{}
		}

		if strings.TrimSpace(row[partnerColIdentifier]) != partnerIdentifierPerson {
			continue
		}
		fragment := utils.CPFFragment(utils.DigitsOnly(row[partnerColDocument]))
		if fragment == "" || name == "" {
			continue
		}
		*records = append(*records, matching.PartnerRecord{
			Fragment:        fragment,
			Name:            name,
			BasicCNPJ:       strings.TrimSpace(row[partnerColBasicCNPJ]),
			AssociationDate: strings.TrimSpace(row[partnerColAssociationDate]),
		})
	}
	return nil
}

// ReadCompanyExtracts scans dir for Estabelecimentos*.csv files and returns
// company registration-date rows keyed by basic CNPJ.
func ReadCompanyExtracts(dir string, maxFiles int) ([]database.CompanyRow, error) {
	files, err := extractFiles(dir, "estabelecimentos")
	if err != nil {
		return nil, err
	}
	if maxFiles >= 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}

	var rows []database.CompanyRow
	for _, path := range files {
		parsed, err := readLatin1CSV(path, companyMinColumns)
		if err != nil {
			log.Printf("ingest: failed to read company extract %s: %v", path, err)
			continue
		}
		for _, row := range parsed {
			cnpj := strings.TrimSpace(row[companyColBasicCNPJ])
			if cnpj == "" {
				continue
			}
			rows = append(rows, database.CompanyRow{
				BasicCNPJ:        cnpj,
				RegistrationDate: strings.TrimSpace(row[companyColActivityStart]),
			})
		}
	}

	log.Printf("ingest: read %d company rows from %d file(s) in %s", len(rows), len(files), dir)
	return rows, nil
}

// extractFiles lists dir entries whose name starts with prefix
// (case-insensitive) and ends in .csv, natural-sorted by name.
func extractFiles(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list extract directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if strings.HasPrefix(lower, prefix) && strings.HasSuffix(lower, ".csv") {
			names = append(names, entry.Name())
		}
	}
	natsort.Sort(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// readLatin1CSV parses a semicolon-separated, headerless, Latin-1 encoded
// extract file. Rows shorter than minColumns are skipped; the bulk files
// occasionally contain truncated trailing rows.
func readLatin1CSV(path string, minColumns int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	decoded := transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	reader := csv.NewReader(decoded)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("ingest: skipping malformed row in %s: %v", path, err)
			continue
		}
		if len(row) < minColumns {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
