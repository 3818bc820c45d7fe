package service

import (
	"context"
	"errors"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/repository"
	"f2fit/gym-manager/internal/storage"
	"f2fit/gym-manager/internal/tenant"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrGymNotFound = errors.New("gym not found")
	ErrGymConflict = errors.New("another gym already uses this name or email")
)

// GymInput carries the fields of a gym and its administrator account.
type GymInput struct {
	GymName   string
	AdminName string
	Email     string
	Phone     string
	// Password is required on create and optional on update.
	Password string
	PlanID   string
	// SubscriptionEndDate is only honoured on update.
	SubscriptionEndDate domain.Date
}

func (in GymInput) validate(requirePassword bool) error {
	if strings.TrimSpace(in.GymName) == "" || strings.TrimSpace(in.AdminName) == "" {
		return invalid("gym name and admin name are required")
	}
	if !domain.ValidEmail(strings.TrimSpace(in.Email)) {
		return invalid("email is not valid")
	}
	if requirePassword || in.Password != "" {
		if len([]rune(in.Password)) < MinPasswordLength {
			return ErrPasswordTooShort
		}
	}
	return nil
}

// GymFilter narrows ListGyms. Status is "", "active", "disabled" or "expired".
type GymFilter struct {
	Status string
	Search string
}

// GymView is a roster entry with its derived state.
type GymView struct {
	domain.Gym
	TariffName string `json:"tariffName"`
	Expired    bool   `json:"expired"`
}

type GymService interface {
	ListGyms(ctx context.Context, filter GymFilter) ([]GymView, error)
	GetGym(ctx context.Context, id string) (*domain.Gym, error)
	CreateGym(ctx context.Context, in GymInput) (*domain.Gym, error)
	UpdateGym(ctx context.Context, id string, in GymInput) (*domain.Gym, error)
	SetGymStatus(ctx context.Context, id string, status domain.GymStatus) (*domain.Gym, error)
	DeleteGym(ctx context.Context, id string) error
}

type gymService struct {
	repos   repository.Repositories
	tariffs TariffService
	files   storage.FileStorage // nil when exports are not uploaded
	clock   domain.Clock
	log     *zap.Logger
}

func NewGymService(repos repository.Repositories, tariffs TariffService, files storage.FileStorage, clock domain.Clock, log *zap.Logger) GymService {
	return &gymService{repos: repos, tariffs: tariffs, files: files, clock: clock, log: log}
}

func (s *gymService) ListGyms(ctx context.Context, filter GymFilter) ([]GymView, error) {
	gyms, err := s.repos.Gyms.List(ctx)
	if err != nil {
		return nil, err
	}
	tariffs, err := s.tariffs.ListTariffs(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(tariffs))
	for _, t := range tariffs {
		names[t.ID] = t.Name
	}

	today := domain.Today(s.clock)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	views := make([]GymView, 0, len(gyms))
	for _, g := range gyms {
		g.PasswordHash = ""
		v := GymView{Gym: g, TariffName: names[g.PlanID], Expired: domain.GymExpired(g.SubscriptionEndDate, today)}
		if v.TariffName == "" {
			v.TariffName = g.PlanID
		}
		switch filter.Status {
		case "expired":
			if !v.Expired {
				continue
			}
		case string(domain.GymActive), string(domain.GymDisabled):
			if string(g.Status) != filter.Status {
				continue
			}
		}
		if search != "" && !containsFold(search, g.GymName, g.AdminName, g.Email) {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *gymService) GetGym(ctx context.Context, id string) (*domain.Gym, error) {
	gym, err := s.repos.Gyms.Get(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrGymNotFound)
	}
	gym.PasswordHash = ""
	return gym, nil
}

func conflicts(gyms []domain.Gym, selfID, name, email string) bool {
	for _, g := range gyms {
		if g.ID == selfID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(g.GymName), strings.TrimSpace(name)) || strings.EqualFold(g.Email, email) {
			return true
		}
	}
	return false
}

// pickTariff returns the requested tariff, else the first default one, else the first.
func pickTariff(tariffs []domain.Plan, requested string) string {
	for _, t := range tariffs {
		if requested != "" && t.ID == requested {
			return t.ID
		}
	}
	for _, t := range tariffs {
		if t.IsDefault {
			return t.ID
		}
	}
	if len(tariffs) > 0 {
		return tariffs[0].ID
	}
	return ""
}

func (s *gymService) CreateGym(ctx context.Context, in GymInput) (*domain.Gym, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}
	tariffs, err := s.tariffs.ListTariffs(ctx)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	gym := domain.Gym{
		Base:                domain.Base{ID: uuid.NewString(), CreatedAt: now.UTC()},
		GymName:             strings.TrimSpace(in.GymName),
		AdminName:           strings.TrimSpace(in.AdminName),
		Email:               strings.TrimSpace(in.Email),
		Phone:               in.Phone,
		PasswordHash:        hash,
		PlanID:              pickTariff(tariffs, in.PlanID),
		SubscriptionEndDate: domain.DateOf(now).AddMonths(1),
		Status:              domain.GymActive,
	}

	err = s.repos.Gyms.Mutate(ctx, func(gyms []domain.Gym) ([]domain.Gym, error) {
		if conflicts(gyms, "", gym.GymName, gym.Email) {
			return nil, ErrGymConflict
		}
		return append(gyms, gym), nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.seedPlans(ctx, gym.ID, tariffs); err != nil {
		s.log.Error("Failed to seed gym plans, removing gym", zap.String("gymId", gym.ID), zap.Error(err))
		if rbErr := s.repos.Gyms.Delete(ctx, gym.ID); rbErr != nil {
			s.log.Error("Failed to roll back gym", zap.String("gymId", gym.ID), zap.Error(rbErr))
		}
		if rbErr := s.repos.Plans.Drop(ctx, gym.ID); rbErr != nil {
			s.log.Error("Failed to roll back gym plans", zap.String("gymId", gym.ID), zap.Error(rbErr))
		}
		return nil, err
	}
	s.log.Info("Gym created", zap.String("gymId", gym.ID), zap.String("tariff", gym.PlanID))
	gym.PasswordHash = ""
	return &gym, nil
}

// seedPlans copies the active tariffs into the gym's plan collection.
func (s *gymService) seedPlans(ctx context.Context, gymID string, tariffs []domain.Plan) error {
	now := s.clock.Now().UTC()
	return s.repos.Plans.Mutate(ctx, gymID, func(plans []domain.Plan) ([]domain.Plan, error) {
		seeded := make([]domain.Plan, 0, len(tariffs))
		for _, t := range tariffs {
			if !t.IsActive() {
				continue
			}
			p := t
			p.ID = domain.DefaultPlanPrefix + t.ID
			p.GymID = gymID
			p.IsDefault = true
			p.CreatedAt = now
			seeded = append(seeded, p)
		}
		return append(seeded, plans...), nil
	})
}

func (s *gymService) UpdateGym(ctx context.Context, id string, in GymInput) (*domain.Gym, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	if in.PlanID != "" {
		if err := s.knownTariff(ctx, in.PlanID); err != nil {
			return nil, err
		}
	}
	var hash string
	if in.Password != "" {
		var err error
		if hash, err = HashPassword(in.Password); err != nil {
			return nil, err
		}
	}

	var updated domain.Gym
	err := s.repos.Gyms.Mutate(ctx, func(gyms []domain.Gym) ([]domain.Gym, error) {
		if conflicts(gyms, id, in.GymName, in.Email) {
			return nil, ErrGymConflict
		}
		for i := range gyms {
			if gyms[i].ID != id {
				continue
			}
			g := &gyms[i]
			g.GymName = strings.TrimSpace(in.GymName)
			g.AdminName = strings.TrimSpace(in.AdminName)
			g.Email = strings.TrimSpace(in.Email)
			g.Phone = in.Phone
			if in.PlanID != "" {
				g.PlanID = in.PlanID
			}
			if !in.SubscriptionEndDate.IsZero() {
				g.SubscriptionEndDate = in.SubscriptionEndDate
			}
			if hash != "" {
				g.PasswordHash = hash
			}
			updated = *g
			updated.PasswordHash = ""
			return gyms, nil
		}
		return nil, ErrGymNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *gymService) knownTariff(ctx context.Context, id string) error {
	tariffs, err := s.tariffs.ListTariffs(ctx)
	if err != nil {
		return err
	}
	for _, t := range tariffs {
		if t.ID == id {
			return nil
		}
	}
	return invalid("unknown tariff %q", id)
}

func (s *gymService) SetGymStatus(ctx context.Context, id string, status domain.GymStatus) (*domain.Gym, error) {
	if status != domain.GymActive && status != domain.GymDisabled {
		return nil, invalid("unknown gym status %q", status)
	}
	var updated domain.Gym
	err := s.repos.Gyms.Mutate(ctx, func(gyms []domain.Gym) ([]domain.Gym, error) {
		for i := range gyms {
			if gyms[i].ID == id {
				gyms[i].Status = status
				updated = gyms[i]
				updated.PasswordHash = ""
				return gyms, nil
			}
		}
		return nil, ErrGymNotFound
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Gym status changed", zap.String("gymId", id), zap.String("status", string(status)))
	return &updated, nil
}

// DeleteGym removes the roster entry, every collection of the tenant, its
// conversations and its uploaded exports.
func (s *gymService) DeleteGym(ctx context.Context, id string) error {
	if _, err := s.GetGym(ctx, id); err != nil {
		return err
	}

	members, err := s.repos.Members.List(ctx, id)
	if err != nil {
		return err
	}
	coaches, err := s.repos.Coaches.List(ctx, id)
	if err != nil {
		return err
	}

	if err := notFoundAs(s.repos.Gyms.Delete(ctx, id), ErrGymNotFound); err != nil {
		return err
	}

	for _, contactID := range contactIDs(members, coaches) {
		if err := s.repos.Messages.Drop(ctx, id, contactID); err != nil {
			return err
		}
	}
	conversations, err := s.repos.Messages.DropAll(ctx, id)
	if err != nil {
		return err
	}
	for _, kind := range tenant.GymKinds {
		if err := s.dropKind(ctx, kind, id); err != nil {
			return err
		}
	}

	exports := 0
	if s.files != nil {
		if exports, err = s.files.DeletePrefix(ctx, storage.ExportPrefix(id)); err != nil {
			s.log.Error("Failed to delete gym exports", zap.String("gymId", id), zap.Error(err))
			return err
		}
	}
	s.log.Info("Gym deleted", zap.String("gymId", id),
		zap.Int("members", len(members)), zap.Int("coaches", len(coaches)),
		zap.Int("orphanConversations", conversations), zap.Int("exports", exports))
	return nil
}

func (s *gymService) dropKind(ctx context.Context, kind tenant.Kind, gymID string) error {
	switch kind {
	case tenant.KindMembers:
		return s.repos.Members.Drop(ctx, gymID)
	case tenant.KindCoaches:
		return s.repos.Coaches.Drop(ctx, gymID)
	case tenant.KindClasses:
		return s.repos.Classes.Drop(ctx, gymID)
	case tenant.KindEquipment:
		return s.repos.Equipment.Drop(ctx, gymID)
	case tenant.KindSubscriptions:
		return s.repos.Subscriptions.Drop(ctx, gymID)
	case tenant.KindPlans:
		return s.repos.Plans.Drop(ctx, gymID)
	default:
		return nil
	}
}

func contactIDs(members []domain.Member, coaches []domain.Coach) []string {
	ids := make([]string, 0, len(members)+len(coaches))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	for _, c := range coaches {
		ids = append(ids, c.ID)
	}
	return ids
}

// containsFold reports whether any field contains the lower-cased needle.
func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
