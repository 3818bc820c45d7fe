package service

import (
	"context"
	"errors"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/metrics"
	"f2fit/gym-manager/internal/repository"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrClassNotFound = errors.New("class not found")
	ErrClassFull     = errors.New("class is full")
)

// DefaultUpcomingLimit is the number of classes shown on dashboards.
const DefaultUpcomingLimit = 3

type ClassInput struct {
	Name     string
	Type     domain.ClassType
	CoachID  string
	Date     domain.Date
	Time     string
	Capacity int
}

func (in ClassInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("class name is required")
	}
	if in.Type != domain.ClassGroup && in.Type != domain.ClassIndividual {
		return invalid("class type must be group or individual")
	}
	if in.Date.IsZero() {
		return invalid("class date is required")
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return invalid("time must be HH:MM")
	}
	if in.Capacity < 1 {
		return invalid("capacity must be at least 1")
	}
	return nil
}

type ClassFilter struct {
	Search  string
	Type    domain.ClassType
	CoachID string
}

type ClassService interface {
	ListClasses(ctx context.Context, gymID string, filter ClassFilter) ([]domain.Class, error)
	GetClass(ctx context.Context, gymID, id string) (*domain.Class, error)
	CreateClass(ctx context.Context, gymID string, in ClassInput) (*domain.Class, error)
	UpdateClass(ctx context.Context, gymID, id string, in ClassInput) (*domain.Class, error)
	DeleteClass(ctx context.Context, gymID, id string) error
	// Upcoming returns classes from today on, soonest first. limit <= 0 means DefaultUpcomingLimit.
	Upcoming(ctx context.Context, gymID string, limit int) ([]domain.Class, error)
	// Book takes one seat. It fails with ErrClassFull and leaves the class unchanged when none is left.
	Book(ctx context.Context, gymID, classID string) (*domain.Class, error)
}

type classService struct {
	classes repository.ClassRepository
	coaches repository.CoachRepository
	clock   domain.Clock
	log     *zap.Logger
}

func NewClassService(classes repository.ClassRepository, coaches repository.CoachRepository, clock domain.Clock, log *zap.Logger) ClassService {
	return &classService{classes: classes, coaches: coaches, clock: clock, log: log}
}

func (s *classService) ListClasses(ctx context.Context, gymID string, filter ClassFilter) ([]domain.Class, error) {
	classes, err := s.classes.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Class, 0, len(classes))
	for _, c := range classes {
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		if filter.CoachID != "" && c.CoachID != filter.CoachID {
			continue
		}
		if search != "" && !containsFold(search, c.Name, c.CoachName) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *classService) GetClass(ctx context.Context, gymID, id string) (*domain.Class, error) {
	class, err := s.classes.Get(ctx, gymID, id)
	return class, notFoundAs(err, ErrClassNotFound)
}

// coachName snapshots the coach's current name. An empty id means no coach.
func (s *classService) coachName(ctx context.Context, gymID, coachID string) (string, error) {
	if coachID == "" {
		return "", nil
	}
	coach, err := s.coaches.Get(ctx, gymID, coachID)
	if err != nil {
		return "", notFoundAs(err, ErrCoachNotFound)
	}
	return coach.Name, nil
}

func (s *classService) CreateClass(ctx context.Context, gymID string, in ClassInput) (*domain.Class, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	name, err := s.coachName(ctx, gymID, in.CoachID)
	if err != nil {
		return nil, err
	}
	class := &domain.Class{
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		CoachID:   in.CoachID,
		CoachName: name,
		Date:      in.Date,
		Time:      in.Time,
		Capacity:  in.Capacity,
	}
	if err := s.classes.Create(ctx, gymID, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *classService) UpdateClass(ctx context.Context, gymID, id string, in ClassInput) (*domain.Class, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	name, err := s.coachName(ctx, gymID, in.CoachID)
	if err != nil {
		return nil, err
	}

	var updated domain.Class
	err = s.classes.Mutate(ctx, gymID, func(classes []domain.Class) ([]domain.Class, error) {
		for i := range classes {
			c := &classes[i]
			if c.ID != id {
				continue
			}
			if in.Capacity < c.Enrolled {
				return nil, invalid("capacity cannot be lower than the %d enrolled participants", c.Enrolled)
			}
			c.Name = strings.TrimSpace(in.Name)
			c.Type = in.Type
			c.CoachID = in.CoachID
			c.CoachName = name
			c.Date = in.Date
			c.Time = in.Time
			c.Capacity = in.Capacity
			updated = *c
			return classes, nil
		}
		return nil, ErrClassNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *classService) DeleteClass(ctx context.Context, gymID, id string) error {
	return notFoundAs(s.classes.Delete(ctx, gymID, id), ErrClassNotFound)
}

func (s *classService) Upcoming(ctx context.Context, gymID string, limit int) ([]domain.Class, error) {
	classes, err := s.classes.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	return upcoming(classes, domain.Today(s.clock), limit), nil
}

func upcoming(classes []domain.Class, today domain.Date, limit int) []domain.Class {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	out := make([]domain.Class, 0, len(classes))
	for _, c := range classes {
		if !c.Date.Before(today) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt() < out[j].StartsAt() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *classService) Book(ctx context.Context, gymID, classID string) (*domain.Class, error) {
	var booked domain.Class
	err := s.classes.Mutate(ctx, gymID, func(classes []domain.Class) ([]domain.Class, error) {
		for i := range classes {
			c := &classes[i]
			if c.ID != classID {
				continue
			}
			if c.Full() {
				return nil, ErrClassFull
			}
			c.Enrolled++
			booked = *c
			return classes, nil
		}
		return nil, ErrClassNotFound
	})
	switch {
	case errors.Is(err, ErrClassFull):
		metrics.RecordBooking("full")
		return nil, err
	case err != nil:
		return nil, err
	}

	metrics.RecordBooking("confirmed")
	s.log.Info("Class booked",
		zap.String("gymId", gymID),
		zap.String("classId", classID),
		zap.Int("enrolled", booked.Enrolled),
		zap.Int("capacity", booked.Capacity),
	)
	return &booked, nil
}
