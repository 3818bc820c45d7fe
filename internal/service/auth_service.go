package service

import (
	"context"
	"errors"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/metrics"
	"f2fit/gym-manager/internal/repository"
	"f2fit/gym-manager/internal/tenant"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed      = errors.New("authentication failed: invalid email or password")
	ErrTokenGeneration           = errors.New("failed to generate authentication token")
	ErrSessionExpired            = errors.New("session expired or revoked")
	ErrPlatformPasswordImmutable = errors.New("the platform administrator password is managed by configuration")
	ErrAccountNotFound           = errors.New("account not found")
)

// AdminCredentials identify the single platform administrator.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Register is the public gym signup. It does not open a session.
	Register(ctx context.Context, in GymInput) (*domain.Gym, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error)
	ChangePassword(ctx context.Context, session *domain.Session, current, next, confirm string) error
	GetJWTSecret() string
}

type authService struct {
	gyms          repository.GymRepository
	members       repository.MemberRepository
	sessions      repository.SessionRepository
	gymService    GymService
	admin         AdminCredentials
	clock         domain.Clock
	log           *zap.Logger
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	repos repository.Repositories,
	gymService GymService,
	admin AdminCredentials,
	jwtSecret string,
	jwtExpiration time.Duration,
	clock domain.Clock,
	log *zap.Logger,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 12 * time.Hour
	}
	return &authService{
		gyms:          repos.Gyms,
		members:       repos.Members,
		sessions:      repos.Sessions,
		gymService:    gymService,
		admin:         admin,
		clock:         clock,
		log:           log,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Login checks the platform administrator, then gym administrators, then the
// members of every gym. The first match wins.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("email and password cannot be empty")
	}

	session, err := s.authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			metrics.RecordLogin("failed")
		}
		return nil, err
	}

	now := s.clock.Now()
	session.ID = uuid.NewString()
	session.CreatedAt = now.UTC()
	session.ExpiresAt = now.Add(s.jwtExpiration).UTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.generateJWT(session)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err))
		return nil, ErrTokenGeneration
	}

	metrics.RecordLogin(string(session.Role))
	s.log.Info("User logged in", zap.String("userId", session.UserID), zap.String("role", string(session.Role)))
	return &LoginResult{Token: token, Session: session}, nil
}

func (s *authService) authenticate(ctx context.Context, email, password string) (*domain.Session, error) {
	if strings.EqualFold(email, s.admin.Email) && checkPassword(s.admin.PasswordHash, password) {
		return &domain.Session{
			UserID:  domain.PlatformAdminUserID,
			GymID:   tenant.PlatformID,
			Role:    domain.RolePlatformAdmin,
			Name:    domain.PlatformAdminName,
			Email:   s.admin.Email,
			GymName: domain.PlatformAdminGymName,
		}, nil
	}

	gyms, err := s.gyms.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range gyms {
		if strings.EqualFold(g.Email, email) && !g.IsDisabled() && checkPassword(g.PasswordHash, password) {
			return &domain.Session{
				UserID:  g.ID,
				GymID:   g.ID,
				Role:    domain.RoleGymAdmin,
				Name:    g.AdminName,
				Email:   g.Email,
				GymName: g.GymName,
			}, nil
		}
	}

	for _, g := range gyms {
		members, err := s.members.List(ctx, g.ID)
		if err != nil {
			// An unreadable tenant is skipped, not fatal.
			s.log.Warn("Skipping gym during login", zap.String("gymId", g.ID), zap.Error(err))
			continue
		}
		for _, m := range members {
			if strings.EqualFold(m.Email, email) && m.Status == domain.MemberActive && checkPassword(m.PasswordHash, password) {
				return &domain.Session{
					UserID:             m.ID,
					GymID:              g.ID,
					Role:               domain.RoleClient,
					Name:               m.Name,
					Email:              m.Email,
					GymName:            g.GymName,
					MustChangePassword: m.MustChangePassword,
				}, nil
			}
		}
	}
	return nil, ErrAuthenticationFailed
}

func (s *authService) Register(ctx context.Context, in GymInput) (*domain.Gym, error) {
	return s.gymService.CreateGym(ctx, in)
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// CurrentSession loads a live session. Missing and expired sessions are both
// ErrSessionExpired, and so is a session whose account can no longer log in.
func (s *authService) CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(s.clock.Now()) {
		return nil, s.revoke(ctx, session, "expired")
	}
	live, err := s.accountLive(ctx, session)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, s.revoke(ctx, session, "account closed")
	}
	return session, nil
}

// accountLive reports whether the account behind session may still log in.
func (s *authService) accountLive(ctx context.Context, session *domain.Session) (bool, error) {
	switch session.Role {
	case domain.RoleGymAdmin:
		gym, err := s.gyms.Get(ctx, session.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return !gym.IsDisabled(), nil
	case domain.RoleClient:
		member, err := s.members.Get(ctx, session.GymID, session.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return member.Status == domain.MemberActive, nil
	default:
		return true, nil
	}
}

func (s *authService) revoke(ctx context.Context, session *domain.Session, reason string) error {
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		s.log.Warn("Failed to delete session", zap.String("sessionId", session.ID), zap.Error(err))
	}
	s.log.Info("Session revoked", zap.String("sessionId", session.ID), zap.String("userId", session.UserID), zap.String("reason", reason))
	return ErrSessionExpired
}

func (s *authService) ChangePassword(ctx context.Context, session *domain.Session, current, next, confirm string) error {
	if err := validateNewPassword(next, confirm); err != nil {
		return err
	}

	var err error
	switch session.Role {
	case domain.RolePlatformAdmin:
		return ErrPlatformPasswordImmutable
	case domain.RoleGymAdmin:
		err = s.changeGymAdminPassword(ctx, session.UserID, current, next)
	case domain.RoleClient:
		err = s.changeMemberPassword(ctx, session.GymID, session.UserID, current, next)
	default:
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}

	if session.MustChangePassword {
		session.MustChangePassword = false
		if err := s.sessions.Save(ctx, session); err != nil {
			return err
		}
	}
	s.log.Info("Password changed", zap.String("userId", session.UserID), zap.String("role", string(session.Role)))
	return nil
}

func (s *authService) changeGymAdminPassword(ctx context.Context, gymID, current, next string) error {
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.gyms.Mutate(ctx, func(gyms []domain.Gym) ([]domain.Gym, error) {
		for i := range gyms {
			if gyms[i].ID != gymID {
				continue
			}
			if !checkPassword(gyms[i].PasswordHash, current) {
				return nil, ErrWrongPassword
			}
			gyms[i].PasswordHash = hash
			return gyms, nil
		}
		return nil, ErrAccountNotFound
	})
}

// changeMemberPassword skips the current password check while the member
// still has the temporary password.
func (s *authService) changeMemberPassword(ctx context.Context, gymID, memberID, current, next string) error {
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.members.Mutate(ctx, gymID, func(members []domain.Member) ([]domain.Member, error) {
		for i := range members {
			m := &members[i]
			if m.ID != memberID {
				continue
			}
			if !m.MustChangePassword && !checkPassword(m.PasswordHash, current) {
				return nil, ErrWrongPassword
			}
			m.PasswordHash = hash
			m.MustChangePassword = false
			return members, nil
		}
		return nil, ErrAccountNotFound
	})
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID    string      `json:"uid"`
	Role      domain.Role `json:"role"`
	GymID     string      `json:"gid"`
	SessionID string      `json:"sid"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(session *domain.Session) (string, error) {
	claims := &jwtClaims{
		UserID:    session.UserID,
		Role:      session.Role,
		GymID:     session.GymID,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			Issuer:    "f2fit",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
