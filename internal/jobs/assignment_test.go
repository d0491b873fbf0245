package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeAssigner struct {
	runs atomic.Int64
}

func (f *fakeAssigner) AssignAll(ctx context.Context) (int, error) {
	f.runs.Add(1)
	return 1, nil
}

func TestAssignmentJobRunsImmediately(t *testing.T) {
	assigner := &fakeAssigner{}
	job := NewAssignmentJob(assigner, time.Hour, zap.NewNop())

	job.Start(context.Background())
	job.Stop()

	assert.Equal(t, int64(1), assigner.runs.Load())
}

func TestAssignmentJobTicks(t *testing.T) {
	assigner := &fakeAssigner{}
	job := NewAssignmentJob(assigner, 10*time.Millisecond, zap.NewNop())

	job.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	job.Stop()

	assert.GreaterOrEqual(t, assigner.runs.Load(), int64(2))
}
