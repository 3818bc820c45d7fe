package service

import (
	"context"
	"errors"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/repository"
	"strings"
)

// --- Error Definitions ---
var (
	ErrCoachNotFound = errors.New("coach not found")
)

type CoachInput struct {
	Name        string
	Email       string
	Phone       string
	Specialties []string
}

func (in CoachInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("coach name is required")
	}
	if in.Email != "" && !domain.ValidEmail(in.Email) {
		return invalid("email is not valid")
	}
	return nil
}

func (in CoachInput) specialties() []string {
	out := make([]string, 0, len(in.Specialties))
	for _, sp := range in.Specialties {
		if sp = strings.TrimSpace(sp); sp != "" {
			out = append(out, sp)
		}
	}
	return out
}

type CoachService interface {
	// ListCoaches matches search against name, email and specialties.
	ListCoaches(ctx context.Context, gymID, search string) ([]domain.Coach, error)
	GetCoach(ctx context.Context, gymID, id string) (*domain.Coach, error)
	CreateCoach(ctx context.Context, gymID string, in CoachInput) (*domain.Coach, error)
	UpdateCoach(ctx context.Context, gymID, id string, in CoachInput) (*domain.Coach, error)
	// DeleteCoach drops the coach conversation but leaves classes referencing the coach untouched.
	DeleteCoach(ctx context.Context, gymID, id string) error
}

type coachService struct {
	coaches  repository.CoachRepository
	messages repository.MessageRepository
}

func NewCoachService(coaches repository.CoachRepository, messages repository.MessageRepository) CoachService {
	return &coachService{coaches: coaches, messages: messages}
}

func (s *coachService) ListCoaches(ctx context.Context, gymID, search string) ([]domain.Coach, error) {
	coaches, err := s.coaches.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return coaches, nil
	}
	out := make([]domain.Coach, 0, len(coaches))
	for _, c := range coaches {
		if containsFold(search, append([]string{c.Name, c.Email}, c.Specialties...)...) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *coachService) GetCoach(ctx context.Context, gymID, id string) (*domain.Coach, error) {
	coach, err := s.coaches.Get(ctx, gymID, id)
	return coach, notFoundAs(err, ErrCoachNotFound)
}

func (s *coachService) CreateCoach(ctx context.Context, gymID string, in CoachInput) (*domain.Coach, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	coach := &domain.Coach{
		Name:        strings.TrimSpace(in.Name),
		Email:       in.Email,
		Phone:       in.Phone,
		Specialties: in.specialties(),
	}
	if err := s.coaches.Create(ctx, gymID, coach); err != nil {
		return nil, err
	}
	return coach, nil
}

func (s *coachService) UpdateCoach(ctx context.Context, gymID, id string, in CoachInput) (*domain.Coach, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	coach, err := s.GetCoach(ctx, gymID, id)
	if err != nil {
		return nil, err
	}
	coach.Name = strings.TrimSpace(in.Name)
	coach.Email = in.Email
	coach.Phone = in.Phone
	coach.Specialties = in.specialties()
	if err := s.coaches.Update(ctx, gymID, coach); err != nil {
		return nil, notFoundAs(err, ErrCoachNotFound)
	}
	return coach, nil
}

func (s *coachService) DeleteCoach(ctx context.Context, gymID, id string) error {
	if err := s.coaches.Delete(ctx, gymID, id); err != nil {
		return notFoundAs(err, ErrCoachNotFound)
	}
	return s.messages.Drop(ctx, gymID, id)
}
