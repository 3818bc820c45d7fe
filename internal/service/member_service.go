package service

import (
	"context"
	"errors"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/notify"
	"f2fit/gym-manager/internal/repository"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrEmailTaken     = errors.New("a member with this email already exists in this gym")
)

// MemberInput carries the editable member fields. PlanID is only read on create.
type MemberInput struct {
	Name   string
	Email  string
	Phone  string
	Status domain.MemberStatus
	PlanID string
}

func (in MemberInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("member name is required")
	}
	if !domain.ValidEmail(strings.TrimSpace(in.Email)) {
		return invalid("email is not valid")
	}
	switch in.Status {
	case "", domain.MemberActive, domain.MemberInactive, domain.MemberSuspended:
		return nil
	default:
		return invalid("unknown member status %q", in.Status)
	}
}

// MemberView is a member with the state of their latest subscription.
type MemberView struct {
	domain.Member
	SubscriptionState  domain.SubscriptionState `json:"subscriptionState"`
	LatestSubscription *domain.Subscription     `json:"latestSubscription,omitempty"`
}

type MemberService interface {
	// ListMembers filters by a case-insensitive search over name, email and phone, and by
	// status, which matches either the account status or the subscription state.
	ListMembers(ctx context.Context, gymID, search, status string) ([]MemberView, error)
	GetMember(ctx context.Context, gymID, id string) (*MemberView, error)
	CreateMember(ctx context.Context, gymID string, in MemberInput) (*domain.Member, error)
	UpdateMember(ctx context.Context, gymID, id string, in MemberInput) (*domain.Member, error)
	DeleteMember(ctx context.Context, gymID, id string) error
}

type memberService struct {
	members         repository.MemberRepository
	subs            repository.SubscriptionRepository
	plans           repository.PlanRepository
	gyms            repository.GymRepository
	messages        repository.MessageRepository
	subscriptions   SubscriptionService
	notifier        notify.Notifier
	defaultPassword string
	clock           domain.Clock
	log             *zap.Logger
}

func NewMemberService(
	repos repository.Repositories,
	subscriptions SubscriptionService,
	notifier notify.Notifier,
	defaultPassword string,
	clock domain.Clock,
	log *zap.Logger,
) MemberService {
	return &memberService{
		members:         repos.Members,
		subs:            repos.Subscriptions,
		plans:           repos.Plans,
		gyms:            repos.Gyms,
		messages:        repos.Messages,
		subscriptions:   subscriptions,
		notifier:        notifier,
		defaultPassword: defaultPassword,
		clock:           clock,
		log:             log,
	}
}

func (s *memberService) view(m domain.Member, subs []domain.Subscription, today domain.Date) MemberView {
	m.PasswordHash = ""
	v := MemberView{Member: m, SubscriptionState: domain.SubscriptionNone}
	if latest, ok := domain.LatestSubscription(subs, m.ID); ok {
		v.LatestSubscription = &latest
		v.SubscriptionState = domain.SubscriptionStatus(latest.EndDate, today)
	}
	return v
}

func (s *memberService) ListMembers(ctx context.Context, gymID, search, status string) ([]MemberView, error) {
	members, err := s.members.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	subs, err := s.subs.List(ctx, gymID)
	if err != nil {
		return nil, err
	}

	today := domain.Today(s.clock)
	search = strings.ToLower(strings.TrimSpace(search))
	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		v := s.view(m, subs, today)
		if search != "" && !containsFold(search, m.Name, m.Email, m.Phone) {
			continue
		}
		if status != "" && status != "all" && string(m.Status) != status && string(v.SubscriptionState) != status {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *memberService) GetMember(ctx context.Context, gymID, id string) (*MemberView, error) {
	member, err := s.members.Get(ctx, gymID, id)
	if err != nil {
		return nil, notFoundAs(err, ErrMemberNotFound)
	}
	subs, err := s.subs.ListByMember(ctx, gymID, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*member, subs, domain.Today(s.clock))
	return &v, nil
}

func emailTaken(members []domain.Member, selfID, email string) bool {
	for _, m := range members {
		if m.ID != selfID && strings.EqualFold(m.Email, email) {
			return true
		}
	}
	return false
}

// CreateMember opens an account with the default password, which must be
// changed at first login. A plan, when given, starts a subscription today;
// if that fails the account is removed again.
func (s *memberService) CreateMember(ctx context.Context, gymID string, in MemberInput) (*domain.Member, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.PlanID != "" {
		plan, err := s.plans.Get(ctx, gymID, in.PlanID)
		if err != nil {
			return nil, notFoundAs(err, ErrPlanNotFound)
		}
		if !plan.IsActive() {
			return nil, ErrPlanInactive
		}
	}
	hash, err := HashPassword(s.defaultPassword)
	if err != nil {
		return nil, err
	}

	member := domain.Member{
		Base:               domain.Base{ID: uuid.NewString(), CreatedAt: s.clock.Now().UTC()},
		Name:               strings.TrimSpace(in.Name),
		Email:              strings.TrimSpace(in.Email),
		Phone:              in.Phone,
		PasswordHash:       hash,
		Status:             domain.MemberActive,
		MustChangePassword: true,
	}
	err = s.members.Mutate(ctx, gymID, func(members []domain.Member) ([]domain.Member, error) {
		if emailTaken(members, "", member.Email) {
			return nil, ErrEmailTaken
		}
		return append(members, member), nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Member created", zap.String("gymId", gymID), zap.String("memberId", member.ID))

	if in.PlanID != "" {
		if _, err := s.subscriptions.CreateSubscription(ctx, gymID, member.ID, in.PlanID, domain.Date{}); err != nil {
			s.log.Warn("Subscription failed, removing new member", zap.String("memberId", member.ID), zap.Error(err))
			if rbErr := s.members.Delete(ctx, gymID, member.ID); rbErr != nil {
				s.log.Error("Failed to roll back member", zap.String("memberId", member.ID), zap.Error(rbErr))
			}
			return nil, err
		}
	}

	s.sendWelcome(ctx, gymID, &member)
	member.PasswordHash = ""
	return &member, nil
}

func (s *memberService) sendWelcome(ctx context.Context, gymID string, member *domain.Member) {
	gymName := ""
	if gym, err := s.gyms.Get(ctx, gymID); err == nil {
		gymName = gym.GymName
	}
	err := s.notifier.MemberWelcome(ctx, notify.Welcome{
		To:                member.Email,
		MemberName:        member.Name,
		GymName:           gymName,
		TemporaryPassword: s.defaultPassword,
	})
	if err != nil {
		s.log.Warn("Failed to send welcome notification", zap.String("memberId", member.ID), zap.Error(err))
	}
}

// UpdateMember also rewrites the member name stored on their subscriptions.
func (s *memberService) UpdateMember(ctx context.Context, gymID, id string, in MemberInput) (*domain.Member, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		updated domain.Member
		renamed bool
	)
	err := s.members.Mutate(ctx, gymID, func(members []domain.Member) ([]domain.Member, error) {
		if emailTaken(members, id, in.Email) {
			return nil, ErrEmailTaken
		}
		for i := range members {
			m := &members[i]
			if m.ID != id {
				continue
			}
			name := strings.TrimSpace(in.Name)
			renamed = m.Name != name
			m.Name = name
			m.Email = strings.TrimSpace(in.Email)
			m.Phone = in.Phone
			if in.Status != "" {
				m.Status = in.Status
			}
			updated = *m
			return members, nil
		}
		return nil, ErrMemberNotFound
	})
	if err != nil {
		return nil, err
	}

	updated.PasswordHash = ""
	if renamed {
		if err := s.subs.RenameMember(ctx, gymID, id, updated.Name); err != nil {
			return nil, err
		}
	}
	return &updated, nil
}

// DeleteMember removes the member, every subscription of theirs and their conversation.
func (s *memberService) DeleteMember(ctx context.Context, gymID, id string) error {
	if err := s.members.Delete(ctx, gymID, id); err != nil {
		return notFoundAs(err, ErrMemberNotFound)
	}
	removed, err := s.subs.DeleteByMember(ctx, gymID, id)
	if err != nil {
		return err
	}
	if err := s.messages.Drop(ctx, gymID, id); err != nil {
		return err
	}
	s.log.Info("Member deleted", zap.String("gymId", gymID), zap.String("memberId", id), zap.Int("subscriptions", removed))
	return nil
}
