// Package services contains server-side business logic. This file implements
// TimerService, which validates timer input, derives the countdown dates and
// drives the timers repository for create, reset, list and initialization.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/countdown/internal/common"
	"github.com/dmitrijs2005/countdown/internal/logging"
	"github.com/dmitrijs2005/countdown/internal/server/models"
	"github.com/dmitrijs2005/countdown/internal/server/repositories/timers"
)

// TimerService provides timer operations:
// - Create: validate and append a new countdown
// - Reset: restart an existing countdown from now
// - List: return the collection, empty on storage failure
// - Initialize: make sure the collection exists
type TimerService struct {
	repo   timers.Repository
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

// Option customizes a TimerService.
type Option func(*TimerService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *TimerService) { s.now = now }
}

// WithIDGenerator replaces the UUID generator used when a caller omits the id.
func WithIDGenerator(newID func() string) Option {
	return func(s *TimerService) { s.newID = newID }
}

func NewTimerService(repo timers.Repository, logger logging.Logger, opts ...Option) *TimerService {
	s := &TimerService{
		repo:   repo,
		logger: logger.With("module", "timer_service"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateTimerInput checks the user-supplied fields of a timer.
func ValidateTimerInput(name string, days int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if utf8.RuneCountInString(name) > models.MaxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", common.ErrValidation, models.MaxNameLength)
	}
	if days < models.MinDays || days > models.MaxDays {
		return fmt.Errorf("%w: days must be between %d and %d", common.ErrValidation, models.MinDays, models.MaxDays)
	}
	return nil
}

// Create starts a countdown of days named name. An empty id is replaced by
// a random UUID.
func (s *TimerService) Create(ctx context.Context, id, name string, days int) (*models.Timer, error) {
	if err := ValidateTimerInput(name, days); err != nil {
		return nil, err
	}
	if id == "" {
		id = s.newID()
	}

	timer := models.NewTimer(id, name, days, s.now())

	if err := s.repo.Append(ctx, timer); err != nil {
		return nil, fmt.Errorf("error creating timer: %w", err)
	}

	s.logger.Info(ctx, "timer created", "id", timer.ID, "days", timer.Days, "end_date", timer.EndDate)
	return &timer, nil
}

// Reset restarts the countdown of timer id from now, keeping its days.
func (s *TimerService) Reset(ctx context.Context, id string) (*models.Timer, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", common.ErrValidation)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading timer: %w", err)
	}

	updated := current.Reset(s.now())

	if err := s.repo.Replace(ctx, id, updated); err != nil {
		return nil, fmt.Errorf("error resetting timer: %w", err)
	}

	s.logger.Info(ctx, "timer reset", "id", id, "end_date", updated.EndDate)
	return &updated, nil
}

func (s *TimerService) List(ctx context.Context) ([]models.Timer, error) {
	return s.repo.LoadAll(ctx)
}

func (s *TimerService) Initialize(ctx context.Context) error {
	return s.repo.Initialize(ctx)
}
