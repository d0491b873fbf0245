package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Assigner is the distribution pass the job drives.
type Assigner interface {
	AssignAll(ctx context.Context) (int, error)
}

// AssignmentJob runs the daily association distribution on a fixed
// interval. Concurrent runs are safe because the pass itself acquires
// rows with skip semantics, so the job needs no leader election.
type AssignmentJob struct {
	assigner Assigner
	interval time.Duration
	logger   *zap.Logger
	stop     chan struct{}
	done     chan struct{}
}

func NewAssignmentJob(assigner Assigner, interval time.Duration, logger *zap.Logger) *AssignmentJob {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &AssignmentJob{
		assigner: assigner,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker loop. One pass runs immediately so a restart
// never delays the day's distribution by a full interval.
func (j *AssignmentJob) Start(ctx context.Context) {
	go func() {
		defer close(j.done)

		j.run(ctx)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.run(ctx)
			case <-j.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and waits for any in-flight pass to finish.
func (j *AssignmentJob) Stop() {
	close(j.stop)
	<-j.done
}

func (j *AssignmentJob) run(ctx context.Context) {
	n, err := j.assigner.AssignAll(ctx)
	if err != nil {
		j.logger.Error("assignment job failed", zap.Error(err))
		return
	}
	j.logger.Info("assignment job completed", zap.Int("assigned", n))
}
