package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/pedrolhs/egressolink/models"
	"github.com/pedrolhs/egressolink/repository"
	"github.com/pedrolhs/egressolink/workers"
)

type RunHandler struct {
	Processor *workers.PipelineProcessor
	RunRepo   repository.RunRepositoryInterface
}

func NewRunHandler(processor *workers.PipelineProcessor, runRepo repository.RunRepositoryInterface) *RunHandler {
	return &RunHandler{Processor: processor, RunRepo: runRepo}
}

// TriggerRun enqueues a pipeline run. When a run is already pending the call
// succeeds with no new run queued.
func (rh *RunHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	runUUID, err := rh.Processor.Enqueue(models.RunTriggerAPI)
	if err != nil {
		log.Printf("Error enqueueing pipeline run: %v", err)
		WriteAPIError(w, http.StatusServiceUnavailable, "queue_full", "Pipeline queue is full")
		return
	}
	if runUUID == "" {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "A pipeline run is already pending"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"uuid": runUUID, "status": models.RunStatusPending})
}

// GetRun returns one run's status and stats by UUID.
func (rh *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runUUID := chi.URLParam(r, "runUUID")
	run, err := rh.RunRepo.GetByUUID(runUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Run not found")
			return
		}
		log.Printf("Error fetching run %s: %v", runUUID, err)
		WriteAPIError(w, http.StatusInternalServerError, "fetch_failed", "Failed to fetch run")
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// ListRuns returns the most recent runs, newest first.
func (rh *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	runs, err := rh.RunRepo.ListRecent(limit)
	if err != nil {
		log.Printf("Error listing runs: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "list_failed", "Failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}
