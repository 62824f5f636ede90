package repository

import (
	"github.com/pedrolhs/egressolink/models"
)

// PersonRepositoryInterface defines the methods for alumni data operations
type PersonRepositoryInterface interface {
	Create(person *models.Person) error
	GetByID(id uint) (*models.Person, error)
	GetByIdentityHash(hash string) (*models.Person, error)
	ListAll() ([]models.Person, error)
	List(offset, limit int) ([]models.Person, int64, error)
	Upsert(person *models.Person) error
	UpdateAnnotations(person *models.Person) error
	Count() (int64, error)
	Delete(id uint) error
}

// RunRepositoryInterface defines the methods for pipeline run bookkeeping
type RunRepositoryInterface interface {
	Create(run *models.PipelineRun) error
	GetByUUID(uuid string) (*models.PipelineRun, error)
	ListRecent(limit int) ([]models.PipelineRun, error)
	MarkRunning(runID uint) error
	SetResult(runID uint, stats models.PipelineRun, taskErr error) error
}

// UserRepositoryInterface defines the methods for user data operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Count() (int64, error)
}
