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
	ErrTariffNotFound = errors.New("tariff not found")
)

// defaultTariffs are seeded when the platform has none.
var defaultTariffs = []domain.Plan{
	{Base: domain.Base{ID: "starter"}, Name: "Starter", Price: 10000, DurationDays: 30, Benefits: "Idéal pour démarrer. Jusqu'à 50 membres."},
	{Base: domain.Base{ID: "pro"}, Name: "Pro", Price: 25000, DurationDays: 30, Benefits: "Pour les salles en croissance. Jusqu'à 300 membres."},
	{Base: domain.Base{ID: "premium"}, Name: "Premium", Price: 50000, DurationDays: 30, Benefits: "La solution complète. Membres illimités."},
}

// PlanInput carries the editable fields of tariffs and gym plans.
type PlanInput struct {
	Name         string
	Price        int64
	DurationDays int
	Benefits     string
}

func (in PlanInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("plan name is required")
	}
	if in.Price < 0 {
		return invalid("price cannot be negative")
	}
	if in.DurationDays < 1 {
		return invalid("duration must be at least one day")
	}
	return nil
}

type TariffService interface {
	ListTariffs(ctx context.Context) ([]domain.Plan, error)
	// ActiveTariffs lists the tariffs offered to new gyms.
	ActiveTariffs(ctx context.Context) ([]domain.Plan, error)
	CreateTariff(ctx context.Context, in PlanInput) (*domain.Plan, error)
	UpdateTariff(ctx context.Context, id string, in PlanInput) (*domain.Plan, error)
	SetTariffStatus(ctx context.Context, id string, status domain.PlanStatus) (*domain.Plan, error)
	DeleteTariff(ctx context.Context, id string) error
}

type tariffService struct {
	tariffs repository.TariffRepository
	clock   domain.Clock
}

func NewTariffService(tariffs repository.TariffRepository, clock domain.Clock) TariffService {
	return &tariffService{tariffs: tariffs, clock: clock}
}

// ListTariffs seeds the defaults on first use.
func (s *tariffService) ListTariffs(ctx context.Context) ([]domain.Plan, error) {
	tariffs, err := s.tariffs.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(tariffs) > 0 {
		return tariffs, nil
	}

	var seeded []domain.Plan
	err = s.tariffs.Mutate(ctx, func(current []domain.Plan) ([]domain.Plan, error) {
		if len(current) > 0 {
			seeded = current
			return current, nil
		}
		now := s.clock.Now().UTC()
		seeded = make([]domain.Plan, len(defaultTariffs))
		for i, t := range defaultTariffs {
			t.Status = domain.PlanActive
			t.IsDefault = true
			t.CreatedAt = now
			seeded[i] = t
		}
		return seeded, nil
	})
	if err != nil {
		return nil, err
	}
	return seeded, nil
}

func (s *tariffService) ActiveTariffs(ctx context.Context) ([]domain.Plan, error) {
	tariffs, err := s.ListTariffs(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]domain.Plan, 0, len(tariffs))
	for _, t := range tariffs {
		if t.IsActive() {
			active = append(active, t)
		}
	}
	return active, nil
}

func (s *tariffService) CreateTariff(ctx context.Context, in PlanInput) (*domain.Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	tariff := &domain.Plan{
		Name:         strings.TrimSpace(in.Name),
		Price:        in.Price,
		DurationDays: in.DurationDays,
		Benefits:     in.Benefits,
		Status:       domain.PlanActive,
		IsDefault:    true,
	}
	if err := s.tariffs.Create(ctx, tariff); err != nil {
		return nil, err
	}
	return tariff, nil
}

// get reads through ListTariffs, which seeds the defaults.
func (s *tariffService) get(ctx context.Context, id string) (*domain.Plan, error) {
	tariffs, err := s.ListTariffs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tariffs {
		if tariffs[i].ID == id {
			return &tariffs[i], nil
		}
	}
	return nil, ErrTariffNotFound
}

func (s *tariffService) UpdateTariff(ctx context.Context, id string, in PlanInput) (*domain.Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	tariff, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	tariff.Name = strings.TrimSpace(in.Name)
	tariff.Price = in.Price
	tariff.DurationDays = in.DurationDays
	tariff.Benefits = in.Benefits
	if err := s.tariffs.Update(ctx, tariff); err != nil {
		return nil, notFoundAs(err, ErrTariffNotFound)
	}
	return tariff, nil
}

func (s *tariffService) SetTariffStatus(ctx context.Context, id string, status domain.PlanStatus) (*domain.Plan, error) {
	if status != domain.PlanActive && status != domain.PlanDisabled {
		return nil, invalid("unknown plan status %q", status)
	}
	tariff, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	tariff.Status = status
	if err := s.tariffs.Update(ctx, tariff); err != nil {
		return nil, notFoundAs(err, ErrTariffNotFound)
	}
	return tariff, nil
}

func (s *tariffService) DeleteTariff(ctx context.Context, id string) error {
	return notFoundAs(s.tariffs.Delete(ctx, id), ErrTariffNotFound)
}
