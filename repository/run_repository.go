package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pedrolhs/egressolink/models"
)

// RunRepository handles database operations for PipelineRun records
type RunRepository struct {
	DB *gorm.DB
}

// NewRunRepository creates a new instance of RunRepository
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{DB: db}
}

// Create creates a new pipeline run record in pending state
func (r *RunRepository) Create(run *models.PipelineRun) error {
	now := time.Now().Unix()
	if run.CreatedAt == 0 {
		run.CreatedAt = now
	}
	if run.UpdatedAt == 0 {
		run.UpdatedAt = now
	}
	if run.Status == "" {
		run.Status = models.RunStatusPending
	}

	err := r.DB.Create(run).Error
	if err != nil {
		return fmt.Errorf("failed to create pipeline run %s: %w", run.UUID, err)
	}
	return nil
}

// GetByUUID retrieves a run by its public identifier
func (r *RunRepository) GetByUUID(uuid string) (*models.PipelineRun, error) {
	var run models.PipelineRun
	err := r.DB.Where("uuid = ?", uuid).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get run %s: %w", uuid, err)
	}
	return &run, nil
}

// ListRecent retrieves the most recent runs, newest first
func (r *RunRepository) ListRecent(limit int) ([]models.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.PipelineRun
	err := r.DB.Order("created_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// MarkRunning transitions a run to running and stamps its start time
func (r *RunRepository) MarkRunning(runID uint) error {
	now := time.Now().Unix()
	err := r.DB.Model(&models.PipelineRun{}).Where("id = ?", runID).Updates(map[string]interface{}{
		"status":     models.RunStatusRunning,
		"started_at": now,
		"updated_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to mark run %d running: %w", runID, err)
	}
	return nil
}

// SetResult finalizes a run: stats counters are copied from stats, and the
// status becomes completed or failed depending on taskErr.
func (r *RunRepository) SetResult(runID uint, stats models.PipelineRun, taskErr error) error {
	now := time.Now().Unix()
	updates := map[string]interface{}{
		"people_total":      stats.PeopleTotal,
		"partners_matched":  stats.PartnersMatched,
		"name_only_matched": stats.NameOnlyMatched,
		"founders_found":    stats.FoundersFound,
		"partner_records":   stats.PartnerRecords,
		"company_records":   stats.CompanyRecords,
		"finished_at":       now,
		"updated_at":        now,
	}
	if taskErr != nil {
		msg := taskErr.Error()
		updates["status"] = models.RunStatusFailed
		updates["error"] = msg
	} else {
		updates["status"] = models.RunStatusCompleted
		updates["error"] = nil
	}

	err := r.DB.Model(&models.PipelineRun{}).Where("id = ?", runID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to set result for run %d: %w", runID, err)
	}
	return nil
}
