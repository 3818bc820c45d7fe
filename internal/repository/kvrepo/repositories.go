package kvrepo

import (
	"context"
	"encoding/json"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/repository"
	"f2fit/gym-manager/internal/tenant"
	"strings"

	"github.com/pkg/errors"
)

func tenantKey(kind tenant.Kind) keyFunc {
	return func(gymID string) (string, bool) { return tenant.Key(kind, gymID) }
}

// platformCollection pins a collection to the platform tenant.
type platformCollection[T any, P record[T]] struct {
	c *collection[T, P]
}

func newPlatformCollection[T any, P record[T]](store repository.KVStore, kind tenant.Kind, clock domain.Clock) platformCollection[T, P] {
	return platformCollection[T, P]{c: newCollection[T, P](store, tenantKey(kind), clock)}
}

func (p platformCollection[T, P]) List(ctx context.Context) ([]T, error) {
	return p.c.List(ctx, tenant.PlatformID)
}
func (p platformCollection[T, P]) Get(ctx context.Context, id string) (*T, error) {
	return p.c.Get(ctx, tenant.PlatformID, id)
}
func (p platformCollection[T, P]) Create(ctx context.Context, rec *T) error {
	return p.c.Create(ctx, tenant.PlatformID, rec)
}
func (p platformCollection[T, P]) Update(ctx context.Context, rec *T) error {
	return p.c.Update(ctx, tenant.PlatformID, rec)
}
func (p platformCollection[T, P]) Delete(ctx context.Context, id string) error {
	return p.c.Delete(ctx, tenant.PlatformID, id)
}
func (p platformCollection[T, P]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	return p.c.Mutate(ctx, tenant.PlatformID, fn)
}

// --- Gyms ---

type gymRepository struct {
	platformCollection[domain.Gym, *domain.Gym]
}

func NewGymRepository(store repository.KVStore, clock domain.Clock) repository.GymRepository {
	return &gymRepository{newPlatformCollection[domain.Gym, *domain.Gym](store, tenant.KindGyms, clock)}
}

// GetByEmail matches case-insensitively.
func (r *gymRepository) GetByEmail(ctx context.Context, email string) (*domain.Gym, error) {
	gyms, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range gyms {
		if strings.EqualFold(gyms[i].Email, email) {
			return &gyms[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- Tariffs ---

type tariffRepository struct {
	platformCollection[domain.Plan, *domain.Plan]
}

func NewTariffRepository(store repository.KVStore, clock domain.Clock) repository.TariffRepository {
	return &tariffRepository{newPlatformCollection[domain.Plan, *domain.Plan](store, tenant.KindTariffs, clock)}
}

// --- Members ---

type memberRepository struct {
	*collection[domain.Member, *domain.Member]
}

func NewMemberRepository(store repository.KVStore, clock domain.Clock) repository.MemberRepository {
	return &memberRepository{newCollection[domain.Member, *domain.Member](store, tenantKey(tenant.KindMembers), clock)}
}

func (r *memberRepository) GetByEmail(ctx context.Context, gymID, email string) (*domain.Member, error) {
	members, err := r.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if strings.EqualFold(members[i].Email, email) {
			return &members[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- Subscriptions ---

type subscriptionRepository struct {
	*collection[domain.Subscription, *domain.Subscription]
}

func NewSubscriptionRepository(store repository.KVStore, clock domain.Clock) repository.SubscriptionRepository {
	return &subscriptionRepository{newCollection[domain.Subscription, *domain.Subscription](store, tenantKey(tenant.KindSubscriptions), clock)}
}

func (r *subscriptionRepository) ListByMember(ctx context.Context, gymID, memberID string) ([]domain.Subscription, error) {
	subs, err := r.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.MemberID == memberID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *subscriptionRepository) DeleteByMember(ctx context.Context, gymID, memberID string) (int, error) {
	removed := 0
	err := r.Mutate(ctx, gymID, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		removed = 0
		kept := subs[:0]
		for _, s := range subs {
			if s.MemberID == memberID {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		return kept, nil
	})
	return removed, err
}

func (r *subscriptionRepository) RenameMember(ctx context.Context, gymID, memberID, name string) error {
	return r.Mutate(ctx, gymID, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		for i := range subs {
			if subs[i].MemberID == memberID {
				subs[i].MemberName = name
			}
		}
		return subs, nil
	})
}

// --- Plans, coaches, classes, equipment ---

type planRepository struct {
	*collection[domain.Plan, *domain.Plan]
}

func NewPlanRepository(store repository.KVStore, clock domain.Clock) repository.PlanRepository {
	return &planRepository{newCollection[domain.Plan, *domain.Plan](store, tenantKey(tenant.KindPlans), clock)}
}

type coachRepository struct {
	*collection[domain.Coach, *domain.Coach]
}

func NewCoachRepository(store repository.KVStore, clock domain.Clock) repository.CoachRepository {
	return &coachRepository{newCollection[domain.Coach, *domain.Coach](store, tenantKey(tenant.KindCoaches), clock)}
}

type classRepository struct {
	*collection[domain.Class, *domain.Class]
}

func NewClassRepository(store repository.KVStore, clock domain.Clock) repository.ClassRepository {
	return &classRepository{newCollection[domain.Class, *domain.Class](store, tenantKey(tenant.KindClasses), clock)}
}

type equipmentRepository struct {
	*collection[domain.Equipment, *domain.Equipment]
}

func NewEquipmentRepository(store repository.KVStore, clock domain.Clock) repository.EquipmentRepository {
	return &equipmentRepository{newCollection[domain.Equipment, *domain.Equipment](store, tenantKey(tenant.KindEquipment), clock)}
}

// --- Messages ---

type messageRepository struct {
	store repository.KVStore
	clock domain.Clock
}

func NewMessageRepository(store repository.KVStore, clock domain.Clock) repository.MessageRepository {
	return &messageRepository{store: store, clock: clock}
}

func (r *messageRepository) conversation(gymID, contactID string) *collection[domain.Message, *domain.Message] {
	key := func(string) (string, bool) { return tenant.ConversationKey(gymID, contactID) }
	return newCollection[domain.Message, *domain.Message](r.store, key, r.clock)
}

func (r *messageRepository) List(ctx context.Context, gymID, contactID string) ([]domain.Message, error) {
	return r.conversation(gymID, contactID).List(ctx, gymID)
}

// Append writes the message then records the contact in the gym's conversation index.
func (r *messageRepository) Append(ctx context.Context, gymID, contactID string, msg *domain.Message) error {
	if err := r.conversation(gymID, contactID).Create(ctx, gymID, msg); err != nil {
		return err
	}
	return r.updateIndex(ctx, gymID, func(contacts []string) []string {
		for _, c := range contacts {
			if c == contactID {
				return contacts
			}
		}
		return append(contacts, contactID)
	})
}

func (r *messageRepository) Drop(ctx context.Context, gymID, contactID string) error {
	if err := r.conversation(gymID, contactID).Drop(ctx, gymID); err != nil {
		return err
	}
	return r.updateIndex(ctx, gymID, func(contacts []string) []string {
		kept := contacts[:0]
		for _, c := range contacts {
			if c != contactID {
				kept = append(kept, c)
			}
		}
		return kept
	})
}

func (r *messageRepository) Contacts(ctx context.Context, gymID string) ([]string, error) {
	key, ok := tenant.Key(tenant.KindConversations, gymID)
	if !ok {
		return nil, repository.ErrNoKey
	}
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeIndex(key, raw)
}

func (r *messageRepository) DropAll(ctx context.Context, gymID string) (int, error) {
	contacts, err := r.Contacts(ctx, gymID)
	if err != nil {
		return 0, err
	}
	keys := make([]string, 0, len(contacts)+1)
	for _, c := range contacts {
		if k, ok := tenant.ConversationKey(gymID, c); ok {
			keys = append(keys, k)
		}
	}
	index, _ := tenant.Key(tenant.KindConversations, gymID)
	if err := r.store.Delete(ctx, append(keys, index)...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (r *messageRepository) updateIndex(ctx context.Context, gymID string, fn func([]string) []string) error {
	key, ok := tenant.Key(tenant.KindConversations, gymID)
	if !ok {
		return repository.ErrNoKey
	}
	return r.store.Update(ctx, key, func(current []byte, _ bool) ([]byte, error) {
		contacts, err := decodeIndex(key, current)
		if err != nil {
			return nil, err
		}
		return json.Marshal(fn(contacts))
	})
}

func decodeIndex(key string, raw []byte) ([]string, error) {
	contacts := []string{}
	if len(raw) == 0 {
		return contacts, nil
	}
	if err := json.Unmarshal(raw, &contacts); err != nil {
		return nil, errors.Wrapf(repository.ErrCorruptData, "%s: %v", key, err)
	}
	if contacts == nil {
		contacts = []string{}
	}
	return contacts, nil
}

// --- Sessions ---

type sessionRepository struct {
	store repository.KVStore
}

func NewSessionRepository(store repository.KVStore) repository.SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if err := domain.Validate(session); err != nil {
		return err
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	return r.store.Set(ctx, tenant.SessionKey(session.ID), raw)
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.store.Get(ctx, tenant.SessionKey(id))
	if err != nil {
		return nil, err
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, errors.Wrapf(repository.ErrCorruptData, "session %s: %v", id, err)
	}
	if err := domain.Validate(&session); err != nil {
		return nil, errors.Wrapf(repository.ErrCorruptData, "session %s: %v", id, err)
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, tenant.SessionKey(id))
}

// New builds every repository over one store.
func New(store repository.KVStore, clock domain.Clock) repository.Repositories {
	return repository.Repositories{
		Gyms:          NewGymRepository(store, clock),
		Tariffs:       NewTariffRepository(store, clock),
		Members:       NewMemberRepository(store, clock),
		Subscriptions: NewSubscriptionRepository(store, clock),
		Plans:         NewPlanRepository(store, clock),
		Coaches:       NewCoachRepository(store, clock),
		Classes:       NewClassRepository(store, clock),
		Equipment:     NewEquipmentRepository(store, clock),
		Messages:      NewMessageRepository(store, clock),
		Sessions:      NewSessionRepository(store),
	}
}
