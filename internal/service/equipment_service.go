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
	ErrEquipmentNotFound = errors.New("equipment not found")
)

type EquipmentInput struct {
	Name            string
	Quantity        int
	Status          domain.EquipmentStatus
	LastMaintenance domain.Date
}

func (in EquipmentInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("equipment name is required")
	}
	if in.Quantity < 0 {
		return invalid("quantity cannot be negative")
	}
	switch in.Status {
	case domain.EquipmentInService, domain.EquipmentMaintenance, domain.EquipmentOutOfService:
		return nil
	default:
		return invalid("unknown equipment status %q", in.Status)
	}
}

func (in EquipmentInput) apply(e *domain.Equipment) {
	e.Name = strings.TrimSpace(in.Name)
	e.Quantity = in.Quantity
	e.Status = in.Status
	e.LastMaintenance = in.LastMaintenance
}

type EquipmentService interface {
	ListEquipment(ctx context.Context, gymID, search string, status domain.EquipmentStatus) ([]domain.Equipment, error)
	CreateEquipment(ctx context.Context, gymID string, in EquipmentInput) (*domain.Equipment, error)
	UpdateEquipment(ctx context.Context, gymID, id string, in EquipmentInput) (*domain.Equipment, error)
	DeleteEquipment(ctx context.Context, gymID, id string) error
}

type equipmentService struct {
	equipment repository.EquipmentRepository
}

func NewEquipmentService(equipment repository.EquipmentRepository) EquipmentService {
	return &equipmentService{equipment: equipment}
}

func (s *equipmentService) ListEquipment(ctx context.Context, gymID, search string, status domain.EquipmentStatus) ([]domain.Equipment, error) {
	items, err := s.equipment.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Equipment, 0, len(items))
	for _, e := range items {
		if status != "" && e.Status != status {
			continue
		}
		if search != "" && !containsFold(search, e.Name) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *equipmentService) CreateEquipment(ctx context.Context, gymID string, in EquipmentInput) (*domain.Equipment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item := &domain.Equipment{}
	in.apply(item)
	if err := s.equipment.Create(ctx, gymID, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *equipmentService) UpdateEquipment(ctx context.Context, gymID, id string, in EquipmentInput) (*domain.Equipment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item, err := s.equipment.Get(ctx, gymID, id)
	if err != nil {
		return nil, notFoundAs(err, ErrEquipmentNotFound)
	}
	in.apply(item)
	if err := s.equipment.Update(ctx, gymID, item); err != nil {
		return nil, notFoundAs(err, ErrEquipmentNotFound)
	}
	return item, nil
}

func (s *equipmentService) DeleteEquipment(ctx context.Context, gymID, id string) error {
	return notFoundAs(s.equipment.Delete(ctx, gymID, id), ErrEquipmentNotFound)
}
