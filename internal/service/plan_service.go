package service

import (
	"context"
	"errors"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/repository"
	"strings"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound        = errors.New("subscription plan not found")
	ErrPlanInactive        = errors.New("subscription plan is disabled")
	ErrDefaultPlanReadOnly = errors.New("default plans can only be enabled or disabled")
)

// PlanService manages the subscription plans a gym sells.
type PlanService interface {
	ListPlans(ctx context.Context, gymID string) ([]domain.Plan, error)
	CreatePlan(ctx context.Context, gymID string, in PlanInput) (*domain.Plan, error)
	UpdatePlan(ctx context.Context, gymID, planID string, in PlanInput) (*domain.Plan, error)
	TogglePlanStatus(ctx context.Context, gymID, planID string) (*domain.Plan, error)
	DeletePlan(ctx context.Context, gymID, planID string) error
}

type planService struct {
	plans repository.PlanRepository
}

func NewPlanService(plans repository.PlanRepository) PlanService {
	return &planService{plans: plans}
}

func (s *planService) ListPlans(ctx context.Context, gymID string) ([]domain.Plan, error) {
	return s.plans.List(ctx, gymID)
}

func (s *planService) CreatePlan(ctx context.Context, gymID string, in PlanInput) (*domain.Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	plan := &domain.Plan{
		Base:         domain.Base{ID: domain.CustomPlanPrefix + uuid.NewString()},
		GymID:        gymID,
		Name:         strings.TrimSpace(in.Name),
		Price:        in.Price,
		DurationDays: in.DurationDays,
		Benefits:     in.Benefits,
		Status:       domain.PlanActive,
	}
	if err := s.plans.Create(ctx, gymID, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// mutatePlan applies fn to one plan inside a single collection update.
func (s *planService) mutatePlan(ctx context.Context, gymID, planID string, fn func(p *domain.Plan) error) (*domain.Plan, error) {
	var updated domain.Plan
	err := s.plans.Mutate(ctx, gymID, func(plans []domain.Plan) ([]domain.Plan, error) {
		for i := range plans {
			if plans[i].ID != planID {
				continue
			}
			if err := fn(&plans[i]); err != nil {
				return nil, err
			}
			updated = plans[i]
			return plans, nil
		}
		return nil, ErrPlanNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *planService) UpdatePlan(ctx context.Context, gymID, planID string, in PlanInput) (*domain.Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.mutatePlan(ctx, gymID, planID, func(p *domain.Plan) error {
		if p.IsDefault {
			return ErrDefaultPlanReadOnly
		}
		p.Name = strings.TrimSpace(in.Name)
		p.Price = in.Price
		p.DurationDays = in.DurationDays
		p.Benefits = in.Benefits
		return nil
	})
}

func (s *planService) TogglePlanStatus(ctx context.Context, gymID, planID string) (*domain.Plan, error) {
	return s.mutatePlan(ctx, gymID, planID, func(p *domain.Plan) error {
		p.Status = p.Status.Toggled()
		return nil
	})
}

func (s *planService) DeletePlan(ctx context.Context, gymID, planID string) error {
	return s.plans.Mutate(ctx, gymID, func(plans []domain.Plan) ([]domain.Plan, error) {
		for i := range plans {
			if plans[i].ID != planID {
				continue
			}
			if plans[i].IsDefault {
				return nil, ErrDefaultPlanReadOnly
			}
			return append(plans[:i], plans[i+1:]...), nil
		}
		return nil, ErrPlanNotFound
	})
}
