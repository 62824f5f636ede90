package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pedrolhs/egressolink/models"
)

// PersonRepository handles database operations for alumni Person records
type PersonRepository struct {
	DB *gorm.DB
}

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{DB: db}
}

// Create creates a new person record in the database
func (r *PersonRepository) Create(person *models.Person) error {
	now := time.Now().Unix()
	if person.CreatedAt == 0 {
		person.CreatedAt = now
	}
	if person.UpdatedAt == 0 {
		person.UpdatedAt = now
	}

	err := r.DB.Create(person).Error
	if err != nil {
		return fmt.Errorf("failed to create person %s: %w", person.DisplayName, err)
	}
	return nil
}

// GetByID retrieves a person by their ID
func (r *PersonRepository) GetByID(id uint) (*models.Person, error) {
	var person models.Person
	err := r.DB.First(&person, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %d: %w", id, err)
	}
	return &person, nil
}

// GetByIdentityHash retrieves a person by their pseudonymous identity hash
func (r *PersonRepository) GetByIdentityHash(hash string) (*models.Person, error) {
	if hash == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var person models.Person
	err := r.DB.Where("identity_hash = ?", hash).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by identity hash: %w", err)
	}
	return &person, nil
}

// ListAll retrieves every person, ordered by display_name
func (r *PersonRepository) ListAll() ([]models.Person, error) {
	var people []models.Person
	err := r.DB.Order("display_name ASC").Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}

// List retrieves a page of people plus the total row count
func (r *PersonRepository) List(offset, limit int) ([]models.Person, int64, error) {
	var total int64
	if err := r.DB.Model(&models.Person{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count people: %w", err)
	}

	var people []models.Person
	query := r.DB.Order("display_name ASC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&people).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list people page: %w", err)
	}
	return people, total, nil
}

// Upsert inserts the person, or updates the existing row with the same
// identity hash (or, for rows without a usable identity, the same enrollment
// plus display name). Ingesting the same roster twice therefore does not
// duplicate people.
func (r *PersonRepository) Upsert(person *models.Person) error {
	var existing models.Person
	var err error
	if person.IdentityHash != "" {
		err = r.DB.Where("identity_hash = ?", person.IdentityHash).First(&existing).Error
	} else {
		err = r.DB.Where("identity_hash = '' AND enrollment = ? AND display_name = ?",
			person.Enrollment, person.DisplayName).First(&existing).Error
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.Create(person)
	}
	if err != nil {
		return fmt.Errorf("failed to look up person for upsert: %w", err)
	}

	person.ID = existing.ID
	person.CreatedAt = existing.CreatedAt
	person.UpdatedAt = time.Now().Unix()
	if saveErr := r.DB.Save(person).Error; saveErr != nil {
		return fmt.Errorf("failed to update person %d: %w", existing.ID, saveErr)
	}
	return nil
}

// UpdateAnnotations persists only the pipeline-written columns (match and
// founder flags plus the list-valued annotation columns) for one person.
func (r *PersonRepository) UpdateAnnotations(person *models.Person) error {
	updates := map[string]interface{}{
		"matched_by_fragment":  person.MatchedByFragment,
		"matched_by_name":      person.MatchedByName,
		"matched_by_name_only": person.MatchedByNameOnly,
		"is_partner":           person.IsPartner,
		"partner_company_ids":  person.PartnerCompanyIDs,
		"association_dates":    person.AssociationDates,
		"is_founder":           person.IsFounder,
		"founder_company_ids":  person.FounderCompanyIDs,
		"founding_relations":   person.FoundingRelations,
		"last_run_uuid":        person.LastRunUUID,
		"updated_at":           time.Now().Unix(),
	}

	err := r.DB.Model(&models.Person{}).Where("id = ?", person.ID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update annotations for person %d: %w", person.ID, err)
	}
	return nil
}

// Count returns the number of people
func (r *PersonRepository) Count() (int64, error) {
	var total int64
	if err := r.DB.Model(&models.Person{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count people: %w", err)
	}
	return total, nil
}

// Delete removes a person by ID
func (r *PersonRepository) Delete(id uint) error {
	err := r.DB.Delete(&models.Person{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete person %d: %w", id, err)
	}
	return nil
}
