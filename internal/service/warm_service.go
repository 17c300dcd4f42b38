package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mhs-edu/scheduler-api/internal/dto"
	"github.com/mhs-edu/scheduler-api/pkg/jobs"
)

type termScheduleLoader interface {
	TermSchedule(ctx context.Context, termID string) ([]dto.SectionScheduleView, error)
}

// ScheduleWarmService invalidates cached schedule views and rebuilds them in
// the background, so the first reader after a generation run does not pay
// the rebuild cost.
type ScheduleWarmService struct {
	cache  *CacheService
	views  termScheduleLoader
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewScheduleWarmService builds the service and starts its worker queue.
func NewScheduleWarmService(ctx context.Context, cache *CacheService, views termScheduleLoader, logger *zap.Logger) *ScheduleWarmService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ScheduleWarmService{
		cache:  cache,
		views:  views,
		logger: logger,
	}
	s.queue = jobs.NewQueue("schedule-warm", s.handle, jobs.QueueConfig{
		Workers: 1,
		Logger:  logger,
	})
	s.queue.Start(ctx)
	return s
}

// InvalidateTerm drops the term's cached views and queues a rebuild.
func (s *ScheduleWarmService) InvalidateTerm(ctx context.Context, termID string) error {
	if err := s.cache.InvalidateTerm(ctx, termID); err != nil {
		return err
	}
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "warm-term", Payload: termID}); err != nil {
		s.logger.Warn("schedule warm enqueue failed", zap.String("term_id", termID), zap.Error(err))
	}
	return nil
}

// Close stops the worker queue and waits for in-flight warms.
func (s *ScheduleWarmService) Close() {
	s.queue.Stop()
}

func (s *ScheduleWarmService) handle(ctx context.Context, job jobs.Job) error {
	termID, ok := job.Payload.(string)
	if !ok || termID == "" {
		return nil
	}
	_, err := s.views.TermSchedule(ctx, termID)
	return err
}
