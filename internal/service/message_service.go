package service

import (
	"context"
	"errors"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/repository"
	"sort"
	"strings"
)

// --- Error Definitions ---
var (
	ErrContactNotFound = errors.New("contact not found")
	ErrEmptyMessage    = errors.New("message text cannot be empty")
)

const (
	ContactMember = "member"
	ContactCoach  = "coach"
)

// Contact is someone a gym can hold a conversation with.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

type MessageService interface {
	Contacts(ctx context.Context, gymID string) ([]Contact, error)
	Conversation(ctx context.Context, gymID, contactID string) ([]domain.Message, error)
	Send(ctx context.Context, gymID, contactID, senderID, text string) (*domain.Message, error)
}

type messageService struct {
	messages repository.MessageRepository
	members  repository.MemberRepository
	coaches  repository.CoachRepository
}

func NewMessageService(messages repository.MessageRepository, members repository.MemberRepository, coaches repository.CoachRepository) MessageService {
	return &messageService{messages: messages, members: members, coaches: coaches}
}

func (s *messageService) Contacts(ctx context.Context, gymID string) ([]Contact, error) {
	members, err := s.members.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	coaches, err := s.coaches.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	contacts := make([]Contact, 0, len(members)+len(coaches))
	for _, m := range members {
		contacts = append(contacts, Contact{ID: m.ID, Name: m.Name, Email: m.Email, Type: ContactMember})
	}
	for _, c := range coaches {
		contacts = append(contacts, Contact{ID: c.ID, Name: c.Name, Email: c.Email, Type: ContactCoach})
	}
	return contacts, nil
}

func (s *messageService) knownContact(ctx context.Context, gymID, contactID string) error {
	if _, err := s.members.Get(ctx, gymID, contactID); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	_, err := s.coaches.Get(ctx, gymID, contactID)
	return notFoundAs(err, ErrContactNotFound)
}

func (s *messageService) Conversation(ctx context.Context, gymID, contactID string) ([]domain.Message, error) {
	if err := s.knownContact(ctx, gymID, contactID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.List(ctx, gymID, contactID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

func (s *messageService) Send(ctx context.Context, gymID, contactID, senderID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.knownContact(ctx, gymID, contactID); err != nil {
		return nil, err
	}
	msg := &domain.Message{SenderID: senderID, Text: text}
	if err := s.messages.Append(ctx, gymID, contactID, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
