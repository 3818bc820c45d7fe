package repository

import (
	"context"
	"f2fit/gym-manager/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound    = RepositoryError("not found")
	ErrNoKey       = RepositoryError("no storage key for tenant")
	ErrCorruptData = RepositoryError("stored data is malformed")
	ErrConflict    = RepositoryError("concurrent update conflict")
	ErrDuplicateID = RepositoryError("duplicate record id")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// MaxUpdateAttempts bounds optimistic retries of KVStore.Update.
const MaxUpdateAttempts = 5

// UpdateFunc receives the current value (nil and false when the key is absent)
// and returns the value to store. It may run several times and must not have
// side effects. An error returned by it aborts the update unchanged.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// KVStore is the key-value store every collection is persisted in.
type KVStore interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	// Update performs an atomic read-modify-write of one key. Backends retry
	// conflicting writes up to MaxUpdateAttempts, then return ErrConflict.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// TenantCollection is the load/save contract shared by gym-scoped entities.
type TenantCollection[T any] interface {
	List(ctx context.Context, gymID string) ([]T, error)
	Get(ctx context.Context, gymID, id string) (*T, error)
	Create(ctx context.Context, gymID string, rec *T) error
	Update(ctx context.Context, gymID string, rec *T) error
	Delete(ctx context.Context, gymID, id string) error
	// Mutate runs fn as one atomic read-modify-write of the whole collection.
	Mutate(ctx context.Context, gymID string, fn func([]T) ([]T, error)) error
	// Drop removes the collection of a gym.
	Drop(ctx context.Context, gymID string) error
}

// PlatformCollection is the contract of platform-wide collections.
type PlatformCollection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, rec *T) error
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id string) error
	Mutate(ctx context.Context, fn func([]T) ([]T, error)) error
}

// GymRepository holds the roster of gyms and their admin accounts.
type GymRepository interface {
	PlatformCollection[domain.Gym]
	GetByEmail(ctx context.Context, email string) (*domain.Gym, error)
}

// TariffRepository holds the platform default plan templates.
type TariffRepository interface {
	PlatformCollection[domain.Plan]
}

type MemberRepository interface {
	TenantCollection[domain.Member]
	GetByEmail(ctx context.Context, gymID, email string) (*domain.Member, error)
}

type SubscriptionRepository interface {
	TenantCollection[domain.Subscription]
	ListByMember(ctx context.Context, gymID, memberID string) ([]domain.Subscription, error)
	// DeleteByMember removes every subscription of memberID and reports how many.
	DeleteByMember(ctx context.Context, gymID, memberID string) (int, error)
	// RenameMember rewrites the member name snapshot on the member's subscriptions.
	RenameMember(ctx context.Context, gymID, memberID, name string) error
}

type PlanRepository interface {
	TenantCollection[domain.Plan]
}

type CoachRepository interface {
	TenantCollection[domain.Coach]
}

type ClassRepository interface {
	TenantCollection[domain.Class]
}

type EquipmentRepository interface {
	TenantCollection[domain.Equipment]
}

// MessageRepository stores one log per (gym, contact) conversation.
type MessageRepository interface {
	List(ctx context.Context, gymID, contactID string) ([]domain.Message, error)
	Append(ctx context.Context, gymID, contactID string, msg *domain.Message) error
	Drop(ctx context.Context, gymID, contactID string) error
	// Contacts lists the contacts gymID has a conversation with.
	Contacts(ctx context.Context, gymID string) ([]string, error)
	// DropAll removes every conversation of gymID and reports how many.
	DropAll(ctx context.Context, gymID string) (int, error)
}

type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// Repositories bundles every repository built over one store.
type Repositories struct {
	Gyms          GymRepository
	Tariffs       TariffRepository
	Members       MemberRepository
	Subscriptions SubscriptionRepository
	Plans         PlanRepository
	Coaches       CoachRepository
	Classes       ClassRepository
	Equipment     EquipmentRepository
	Messages      MessageRepository
	Sessions      SessionRepository
}
