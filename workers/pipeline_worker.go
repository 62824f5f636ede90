package workers

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/pedrolhs/egressolink/models"
	"github.com/pedrolhs/egressolink/repository"
	"github.com/pedrolhs/egressolink/services"
)

type PipelineJob struct {
	RunID   uint
	RunUUID string
	Trigger string
}

// PipelineProcessor owns the run queue. Runs are deduplicated while queued:
// enqueueing when a run is already pending or executing records nothing and
// returns the empty UUID.
type PipelineProcessor struct {
	JobQueue chan PipelineJob
	Service  *services.PipelineService
	RunRepo  repository.RunRepositoryInterface
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[string]bool
	Mutex    sync.Mutex
}

func NewPipelineProcessor(service *services.PipelineService, runRepo repository.RunRepositoryInterface, queueSize, numWorkers int) *PipelineProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 8
	}
	proc := &PipelineProcessor{
		JobQueue: make(chan PipelineJob, queueSize),
		Service:  service,
		RunRepo:  runRepo,
		StopChan: make(chan struct{}),
		Pending:  make(map[string]bool),
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i)
	}
	log.Printf("Started %d pipeline worker(s) with queue size %d", numWorkers, queueSize)
	return proc
}

// pendingKey collapses all queued-but-not-finished runs into one slot so a
// burst of triggers produces a single run.
const pendingKey = "pipeline"

// Enqueue records a new run and queues it. Returns the run UUID, or empty
// when a run is already pending or the queue is full.
func (pp *PipelineProcessor) Enqueue(trigger string) (string, error) {
	pp.Mutex.Lock()
	if pp.Pending[pendingKey] {
		pp.Mutex.Unlock()
		log.Printf("Pipeline run already pending; ignoring %s trigger", trigger)
		return "", nil
	}
	pp.Pending[pendingKey] = true
	pp.Mutex.Unlock()

	run := &models.PipelineRun{
		UUID:    uuid.NewString(),
		Status:  models.RunStatusPending,
		Trigger: trigger,
	}
	if err := pp.RunRepo.Create(run); err != nil {
		pp.clearPending()
		return "", fmt.Errorf("failed to record pipeline run: %w", err)
	}

	job := PipelineJob{RunID: run.ID, RunUUID: run.UUID, Trigger: trigger}
	select {
	case pp.JobQueue <- job:
		log.Printf("Queued pipeline run %s (trigger: %s)", run.UUID, trigger)
		return run.UUID, nil
	default:
		pp.clearPending()
		queueErr := fmt.Errorf("pipeline queue is full")
		if setErr := pp.RunRepo.SetResult(run.ID, models.PipelineRun{}, queueErr); setErr != nil {
			log.Printf("ERROR marking run %s failed after queue overflow: %v", run.UUID, setErr)
		}
		return "", queueErr
	}
}

func (pp *PipelineProcessor) clearPending() {
	pp.Mutex.Lock()
	delete(pp.Pending, pendingKey)
	pp.Mutex.Unlock()
}

func (pp *PipelineProcessor) worker(id int) {
	defer pp.Wg.Done()

	log.Printf("Pipeline worker %d started", id)
	for {
		select {
		case job, ok := <-pp.JobQueue:
			if !ok {
				log.Printf("Pipeline worker %d stopping: Job queue closed", id)
				return
			}

			log.Printf("Worker %d: Starting pipeline run %s", id, job.RunUUID)
			if err := pp.RunRepo.MarkRunning(job.RunID); err != nil {
				log.Printf("Worker %d: ERROR marking run %s running: %v. Skipping job.", id, job.RunUUID, err)
				pp.clearPending()
				continue
			}

			stats, taskErr := pp.Service.Run(job.RunUUID)
			if taskErr != nil {
				log.Printf("Worker %d: Pipeline run %s failed: %v", id, job.RunUUID, taskErr)
			}
			if err := pp.RunRepo.SetResult(job.RunID, stats, taskErr); err != nil {
				log.Printf("Worker %d: ERROR recording result for run %s: %v", id, job.RunUUID, err)
			}

			pp.clearPending()

		case <-pp.StopChan:
			log.Printf("Pipeline worker %d stopping: Stop signal received", id)
			return
		}
	}
}

// Stop signals the workers to finish and waits for them.
func (pp *PipelineProcessor) Stop() {
	log.Println("Stopping pipeline workers...")
	close(pp.StopChan)
	pp.Wg.Wait()
	log.Println("All pipeline workers stopped")
}
