package service

import (
	"context"
	"errors"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/metrics"
	"f2fit/gym-manager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrSubscriptionNotFound     = errors.New("subscription not found")
	ErrActiveSubscriptionExists = errors.New("member already has a subscription running")
)

// Subscription sources reported to metrics.
const (
	sourceAdmin   = "admin"
	sourceRenewal = "renewal"
)

// SubscriptionView pairs a subscription with its state as of today.
type SubscriptionView struct {
	domain.Subscription
	State    domain.SubscriptionState `json:"state"`
	DaysLeft int                      `json:"daysLeft"`
}

func newSubscriptionView(sub domain.Subscription, today domain.Date) SubscriptionView {
	return SubscriptionView{
		Subscription: sub,
		State:        domain.SubscriptionStatus(sub.EndDate, today),
		DaysLeft:     domain.DaysLeft(sub.EndDate, today),
	}
}

type SubscriptionService interface {
	// ListSubscriptions lists all subscriptions of the gym, or of one member when memberID is set.
	ListSubscriptions(ctx context.Context, gymID, memberID string) ([]SubscriptionView, error)
	// CreateSubscription starts today when start is zero.
	CreateSubscription(ctx context.Context, gymID, memberID, planID string, start domain.Date) (*domain.Subscription, error)
	DeleteSubscription(ctx context.Context, gymID, id string) error
	// Renew restarts the member's latest plan today.
	Renew(ctx context.Context, gymID, memberID string) (*domain.Subscription, error)
}

type subscriptionService struct {
	subs    repository.SubscriptionRepository
	members repository.MemberRepository
	plans   repository.PlanRepository
	clock   domain.Clock
	log     *zap.Logger
}

func NewSubscriptionService(
	subs repository.SubscriptionRepository,
	members repository.MemberRepository,
	plans repository.PlanRepository,
	clock domain.Clock,
	log *zap.Logger,
) SubscriptionService {
	return &subscriptionService{subs: subs, members: members, plans: plans, clock: clock, log: log}
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, gymID, memberID string) ([]SubscriptionView, error) {
	var (
		subs []domain.Subscription
		err  error
	)
	if memberID != "" {
		subs, err = s.subs.ListByMember(ctx, gymID, memberID)
	} else {
		subs, err = s.subs.List(ctx, gymID)
	}
	if err != nil {
		return nil, err
	}

	today := domain.Today(s.clock)
	views := make([]SubscriptionView, len(subs))
	for i, sub := range subs {
		views[i] = newSubscriptionView(sub, today)
	}
	return views, nil
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, gymID, memberID, planID string, start domain.Date) (*domain.Subscription, error) {
	return s.create(ctx, gymID, memberID, planID, start, sourceAdmin)
}

func (s *subscriptionService) create(ctx context.Context, gymID, memberID, planID string, start domain.Date, source string) (*domain.Subscription, error) {
	member, err := s.members.Get(ctx, gymID, memberID)
	if err != nil {
		return nil, notFoundAs(err, ErrMemberNotFound)
	}
	plan, err := s.plans.Get(ctx, gymID, planID)
	if err != nil {
		return nil, notFoundAs(err, ErrPlanNotFound)
	}
	if !plan.IsActive() {
		return nil, ErrPlanInactive
	}

	now := s.clock.Now()
	today := domain.DateOf(now)
	if start.IsZero() {
		start = today
	}
	sub := domain.Subscription{
		Base:       domain.Base{ID: uuid.NewString(), CreatedAt: now.UTC()},
		MemberID:   member.ID,
		MemberName: member.Name,
		PlanID:     plan.ID,
		PlanName:   plan.Name,
		Price:      plan.Price,
		StartDate:  start,
		EndDate:    domain.SubscriptionEnd(start, plan.DurationDays),
		Status:     string(domain.SubscriptionActive),
	}

	err = s.subs.Mutate(ctx, gymID, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		if domain.HasCurrentSubscription(subs, memberID, today) {
			return nil, ErrActiveSubscriptionExists
		}
		return append(subs, sub), nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordSubscription(source)
	s.log.Info("Subscription created",
		zap.String("gymId", gymID),
		zap.String("memberId", memberID),
		zap.String("planId", plan.ID),
		zap.String("endDate", sub.EndDate.String()),
	)
	return &sub, nil
}

func (s *subscriptionService) DeleteSubscription(ctx context.Context, gymID, id string) error {
	return notFoundAs(s.subs.Delete(ctx, gymID, id), ErrSubscriptionNotFound)
}

func (s *subscriptionService) Renew(ctx context.Context, gymID, memberID string) (*domain.Subscription, error) {
	subs, err := s.subs.ListByMember(ctx, gymID, memberID)
	if err != nil {
		return nil, err
	}
	latest, ok := domain.LatestSubscription(subs, memberID)
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return s.create(ctx, gymID, memberID, latest.PlanID, domain.Date{}, sourceRenewal)
}
