package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrolhs/egressolink/config"
	"github.com/pedrolhs/egressolink/database"
	"github.com/pedrolhs/egressolink/models"
)

type memoryPersonRepo struct {
	nextID    uint
	upserted  []models.Person
	annotated []models.Person
}

func (m *memoryPersonRepo) Create(p *models.Person) error { return m.Upsert(p) }
func (m *memoryPersonRepo) GetByID(uint) (*models.Person, error) {
	return nil, errors.New("not implemented")
}
func (m *memoryPersonRepo) GetByIdentityHash(string) (*models.Person, error) {
	return nil, errors.New("not implemented")
}
func (m *memoryPersonRepo) ListAll() ([]models.Person, error) { return m.upserted, nil }
func (m *memoryPersonRepo) List(int, int) ([]models.Person, int64, error) {
	return m.upserted, int64(len(m.upserted)), nil
}
func (m *memoryPersonRepo) Upsert(p *models.Person) error {
	m.nextID++
	p.ID = m.nextID
	m.upserted = append(m.upserted, *p)
	return nil
}
func (m *memoryPersonRepo) UpdateAnnotations(p *models.Person) error {
	m.annotated = append(m.annotated, *p)
	return nil
}
func (m *memoryPersonRepo) Count() (int64, error) { return int64(len(m.upserted)), nil }
func (m *memoryPersonRepo) Delete(uint) error { return nil }

func writeRoster(t *testing.T, dir string, rows string) string {
	t.Helper()
	path := filepath.Join(dir, "egressos.csv")
	content := "matricula,nome,cpf\n" + rows
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testService(t *testing.T, cfg config.Config) (*PipelineService, *memoryPersonRepo) {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "ref.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	personRepo := &memoryPersonRepo{}
	return NewPipelineService(cfg, db, personRepo), personRepo
}

func TestRunDegradesWithoutReferenceData(t *testing.T) {
	dir := t.TempDir()
	roster := writeRoster(t, dir, "1,Maria Silva,529.982.247-25\n2,Ana Costa,\n")

	cfg := config.Config{
		CPFSalt:          "test-salt",
		AlumniCSVFile:    roster,
		RegistryDataDir:  filepath.Join(dir, "does-not-exist"),
		PartnerIndexMode: config.PartnerIndexModeMemory,
	}
	svc, personRepo := testService(t, cfg)

	stats, err := svc.Run("run-1")
	require.NoError(t, err, "missing reference data degrades, it does not fail the run")

	assert.Equal(t, 2, stats.PeopleTotal)
	assert.Equal(t, 0, stats.PartnersMatched)
	assert.Equal(t, 0, stats.FoundersFound)

	require.Len(t, personRepo.annotated, 2, "every roster row is annotated")
	for _, p := range personRepo.annotated {
		assert.False(t, p.IsPartner)
		assert.Equal(t, "run-1", p.LastRunUUID)
		assert.Equal(t, []string{}, models.StringListFromJSON(p.PartnerCompanyIDs))
	}
}

func TestRunMissingRosterFails(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		CPFSalt:         "test-salt",
		AlumniCSVFile:   filepath.Join(dir, "missing.csv"),
		RegistryDataDir: dir,
	}
	svc, _ := testService(t, cfg)

	_, err := svc.Run("run-2")
	assert.Error(t, err, "the roster is the one input the pipeline cannot run without")
}

func TestRunMatchesAgainstLoadedReferenceData(t *testing.T) {
	dir := t.TempDir()
	roster := writeRoster(t, dir, "1,Maria Silva,529.982.247-25\n")

	registryDir := filepath.Join(dir, "registry")
	require.NoError(t, os.Mkdir(registryDir, 0755))
	// fragment of 52998224725 is 982247; association date two days after the
	// company registration so founder inference fires as well
	socios := "11111111;2;MARIA SILVA;***982247**;49;2020-01-03\n"
	require.NoError(t, os.WriteFile(filepath.Join(registryDir, "Socios1.csv"), []byte(socios), 0644))
	estab := "11111111;0001;91;1;EMPRESA;02;;;;;2020-01-01\n"
	require.NoError(t, os.WriteFile(filepath.Join(registryDir, "Estabelecimentos1.csv"), []byte(estab), 0644))

	cfg := config.Config{
		CPFSalt:           "test-salt",
		AlumniCSVFile:     roster,
		RegistryDataDir:   registryDir,
		PartnerIndexMode:  config.PartnerIndexModeMemory,
		FounderWindowDays: 7,
	}
	svc, personRepo := testService(t, cfg)

	stats, err := svc.Run("run-3")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PeopleTotal)
	assert.Equal(t, 1, stats.PartnersMatched)
	assert.Equal(t, 1, stats.FoundersFound)
	assert.Equal(t, 1, stats.PartnerRecords)
	assert.Equal(t, 1, stats.CompanyRecords)

	require.Len(t, personRepo.annotated, 1)
	p := personRepo.annotated[0]
	assert.True(t, p.IsPartner)
	assert.True(t, p.IsFounder)
	assert.Equal(t, []string{"11111111"}, models.StringListFromJSON(p.PartnerCompanyIDs))
	assert.Equal(t, []string{"11111111"}, models.StringListFromJSON(p.FounderCompanyIDs))
}

func TestRunDBIndexModeMatches(t *testing.T) {
	dir := t.TempDir()
	roster := writeRoster(t, dir, "1,Maria Silva,529.982.247-25\n")

	registryDir := filepath.Join(dir, "registry")
	require.NoError(t, os.Mkdir(registryDir, 0755))
	socios := "11111111;2;MARIA SILVA;***982247**;49;2020-01-03\n"
	require.NoError(t, os.WriteFile(filepath.Join(registryDir, "Socios1.csv"), []byte(socios), 0644))

	cfg := config.Config{
		CPFSalt:          "test-salt",
		AlumniCSVFile:    roster,
		RegistryDataDir:  registryDir,
		PartnerIndexMode: config.PartnerIndexModeDB,
	}
	svc, personRepo := testService(t, cfg)

	stats, err := svc.Run("run-4")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PartnersMatched)
	require.Len(t, personRepo.annotated, 1)
	assert.True(t, personRepo.annotated[0].IsPartner)
}
