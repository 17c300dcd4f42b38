package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mhs-edu/scheduler-api/internal/dto"
	"github.com/mhs-edu/scheduler-api/internal/models"
	"github.com/mhs-edu/scheduler-api/pkg/config"
	appErrors "github.com/mhs-edu/scheduler-api/pkg/errors"
)

type generatorTermReader interface {
	FindByID(ctx context.Context, termID string) (*models.Term, error)
}

type generatorCatalogRepo interface {
	ListTimeslots(ctx context.Context) ([]models.Timeslot, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
}

type generatorSectionRepo interface {
	ListWithCourseInfo(ctx context.Context, termID string) ([]models.SectionDetail, error)
	ResetStatusByTerm(ctx context.Context, termID string) error
	SetStatus(ctx context.Context, sectionID string, status models.SectionStatus) error
}

type generatorAssignmentRepo interface {
	InsertIfAbsent(ctx context.Context, assignment models.Assignment) error
	DeleteByTerm(ctx context.Context, termID string) error
	DeleteBySections(ctx context.Context, sectionIDs []string) error
}

type sectionEnsurer interface {
	EnsureSections(ctx context.Context, termID string) (int, error)
}

type scheduleCacheInvalidator interface {
	InvalidateTerm(ctx context.Context, termID string) error
}

type generationObserver interface {
	ObserveGeneration(termID string, assigned, unscheduled, repairAttempts, displacements int, duration time.Duration)
}

// ScheduleGeneratorService runs the full timetable build for one term:
// demand-driven section creation, a clean-slate reset, hardest-first greedy
// placement and optional displacement repair, persisting each section as it
// lands. Concurrent runs for the same term are serialized.
type ScheduleGeneratorService struct {
	terms       generatorTermReader
	catalog     generatorCatalogRepo
	sections    generatorSectionRepo
	assignments generatorAssignmentRepo
	estimator   sectionEnsurer
	cache       scheduleCacheInvalidator
	metrics     generationObserver
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         config.SchedulerConfig

	mu        sync.Mutex
	termLocks map[string]*sync.Mutex
}

// NewScheduleGeneratorService wires generator dependencies.
func NewScheduleGeneratorService(
	terms generatorTermReader,
	catalog generatorCatalogRepo,
	sections generatorSectionRepo,
	assignments generatorAssignmentRepo,
	estimator sectionEnsurer,
	cache scheduleCacheInvalidator,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RepairDepth <= 0 {
		cfg.RepairDepth = 2
	}
	return &ScheduleGeneratorService{
		terms:       terms,
		catalog:     catalog,
		sections:    sections,
		assignments: assignments,
		estimator:   estimator,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		termLocks:   make(map[string]*sync.Mutex),
	}
}

// Generate builds and persists the term's timetable. Rerunning for the same
// term is idempotent: assignments are wiped, statuses reset and the pass
// starts from the same sorted order.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "termId is required")
	}

	lock := s.termLock(req.TermID)
	lock.Lock()
	defer lock.Unlock()

	if s.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.GenerationTimeout)
		defer cancel()
	}

	started := time.Now()

	term, err := s.terms.FindByID(ctx, req.TermID)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, fmt.Errorf("load term: %w", err)
	}

	created, err := s.estimator.EnsureSections(ctx, term.ID)
	if err != nil {
		return nil, fmt.Errorf("ensure sections: %w", err)
	}

	// Clean slate after demand estimation: any previous timetable is
	// discarded so the pass never has to work around stale placements.
	if err := s.assignments.DeleteByTerm(ctx, term.ID); err != nil {
		return nil, fmt.Errorf("reset term assignments: %w", err)
	}
	if err := s.sections.ResetStatusByTerm(ctx, term.ID); err != nil {
		return nil, fmt.Errorf("reset section statuses: %w", err)
	}

	sectionList, err := s.sections.ListWithCourseInfo(ctx, term.ID)
	if err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	sortByDifficulty(sectionList)
	state := newRunState(catalog, sectionList, s.cfg.TeacherDailyCap)
	repair := newRepairEngine(state, s.cfg.RepairDepth)

	resp := &dto.GenerateScheduleResponse{
		TermID:                term.ID,
		TotalSections:         len(sectionList),
		AssignedSectionIDs:    []string{},
		UnscheduledSectionIDs: []string{},
	}
	persisted := make(map[string]bool, len(sectionList))

	for i := range sectionList {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation aborted: %w", err)
		}
		sec := state.sections[sectionList[i].ID]

		if !s.placeSection(state, repair, sec) {
			state.releaseSection(sec.ID)
			resp.UnscheduledSectionIDs = append(resp.UnscheduledSectionIDs, sec.ID)
			s.logger.Warn("section left unscheduled",
				zap.String("term_id", term.ID),
				zap.String("section_id", sec.ID),
				zap.String("course_code", sec.CourseCode))
			continue
		}

		for _, a := range state.assignmentsOf(sec.ID) {
			if err := s.assignments.InsertIfAbsent(ctx, a); err != nil {
				return nil, fmt.Errorf("persist section %s: %w", sec.ID, err)
			}
		}
		if err := s.sections.SetStatus(ctx, sec.ID, models.SectionStatusScheduled); err != nil {
			return nil, fmt.Errorf("mark section scheduled: %w", err)
		}
		persisted[sec.ID] = true
		resp.AssignedSectionIDs = append(resp.AssignedSectionIDs, sec.ID)
	}

	if err := s.resyncDisplaced(ctx, state, repair, persisted); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTerm(ctx, term.ID); err != nil {
			s.logger.Warn("schedule cache invalidation failed", zap.String("term_id", term.ID), zap.Error(err))
		}
	}

	elapsed := time.Since(started)
	resp.AssignedCount = len(resp.AssignedSectionIDs)
	resp.Stats = dto.GenerateStats{
		RepairAttempts: repair.Attempts(),
		Displacements:  repair.Displacements(),
		DurationMillis: elapsed.Milliseconds(),
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(term.ID, resp.AssignedCount, len(resp.UnscheduledSectionIDs),
			repair.Attempts(), repair.Displacements(), elapsed)
	}
	s.logger.Info("schedule generation finished",
		zap.String("term_id", term.ID),
		zap.Int("sections_created", created),
		zap.Int("assigned", resp.AssignedCount),
		zap.Int("unscheduled", len(resp.UnscheduledSectionIDs)),
		zap.Int("repair_attempts", repair.Attempts()),
		zap.Int("displacements", repair.Displacements()),
		zap.Duration("elapsed", elapsed))

	return resp, nil
}

// placeSection commits every session of the section, falling back to
// displacement repair when enabled. Returns false when any session cannot be
// placed; the caller releases whatever landed.
func (s *ScheduleGeneratorService) placeSection(state *runState, repair *repairEngine, sec *models.SectionDetail) bool {
	for _, length := range sessionLengths(sec.CourseHours) {
		if _, ok := state.placeSession(sec, length); ok {
			continue
		}
		if !s.cfg.RepairEnabled {
			return false
		}
		if _, ok := repair.Repair(sec, length); !ok {
			return false
		}
	}
	return true
}

// resyncDisplaced re-persists sections whose assignments a successful repair
// moved after their rows were already written. Displaced rows are deleted and
// the section's current assignments re-inserted.
func (s *ScheduleGeneratorService) resyncDisplaced(ctx context.Context, state *runState, repair *repairEngine, persisted map[string]bool) error {
	var stale []string
	for _, sectionID := range repair.MovedSections() {
		if persisted[sectionID] {
			stale = append(stale, sectionID)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	if err := s.assignments.DeleteBySections(ctx, stale); err != nil {
		return fmt.Errorf("clear displaced assignments: %w", err)
	}
	for _, sectionID := range stale {
		for _, a := range state.assignmentsOf(sectionID) {
			if err := s.assignments.InsertIfAbsent(ctx, a); err != nil {
				return fmt.Errorf("re-persist displaced section %s: %w", sectionID, err)
			}
		}
	}
	return nil
}

func (s *ScheduleGeneratorService) loadCatalog(ctx context.Context) (*resourceCatalog, error) {
	slots, err := s.catalog.ListTimeslots(ctx)
	if err != nil {
		return nil, fmt.Errorf("load timeslots: %w", err)
	}
	rooms, err := s.catalog.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	teachers, err := s.catalog.ListTeachers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load teachers: %w", err)
	}
	return buildResourceCatalog(slots, rooms, teachers), nil
}

func (s *ScheduleGeneratorService) termLock(termID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lock, ok := s.termLocks[termID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.termLocks[termID] = lock
	return lock
}
