package workers

import (
	"log"
	"time"

	"github.com/pedrolhs/egressolink/models"
)

// Scheduler triggers a pipeline run on a fixed interval. The overnight batch
// cadence of the original deployment maps to a 24h interval.
type Scheduler struct {
	processor *PipelineProcessor
	interval  time.Duration
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewScheduler builds a scheduler for the given interval. The interval must
// be positive; callers skip construction entirely when scheduling is off.
func NewScheduler(processor *PipelineProcessor, interval time.Duration) *Scheduler {
	return &Scheduler{
		processor: processor,
		interval:  interval,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start launches the ticker loop. The first run happens after one full
// interval, not at startup; an operator who wants an immediate run uses the
// API trigger.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.doneChan)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		log.Printf("Scheduler started with interval %s", s.interval)
		for {
			select {
			case <-ticker.C:
				if _, err := s.processor.Enqueue(models.RunTriggerScheduler); err != nil {
					log.Printf("Scheduler: failed to enqueue pipeline run: %v", err)
				}
			case <-s.stopChan:
				log.Println("Scheduler stopping")
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
	<-s.doneChan
}
