package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/ws"
	"go-pos-ledger/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

type AuthService interface {
	Login(username, password string) (*LoginResponse, error)
	ResetPassword(username, oldPassword, newPassword string) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Heartbeat(userID uuid.UUID) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.OperatorView `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.OperatorView `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	tokens    *jwt.Manager
	notifier  Notifier
	idle      time.Duration
	now       Clock
	log       zerolog.Logger
}

// NewAuthService wires operator sessions. idle is the inactivity window after
// which a token stops being accepted.
func NewAuthService(userRepo repository.UserRepository, auditRepo repository.AuditRepository, tokens *jwt.Manager, notifier Notifier, idle time.Duration, clock Clock, log zerolog.Logger) AuthService {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return &authService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		tokens:    tokens,
		notifier:  notifierOrNop(notifier),
		idle:      idle,
		now:       clock.orDefault(),
		log:       log,
	}
}

func (s *authService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		s.audit("", "login_failed", username)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		s.audit(user.ID.String(), "login_failed", username)
		return nil, ErrInvalidCredentials
	}

	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	// Single session: a new token version invalidates older tokens
	newTokenVersion := uuid.New().String()
	now := s.now()
	user.TokenVersion = newTokenVersion
	user.LastSeenAt = &now
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.New("failed to update session")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.FullName, roleCode, user.GetPrivilegeCodes(), newTokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	s.audit(user.ID.String(), "login", username)
	s.log.Info().Str("user", user.Username).Str("role", roleCode).Msg("operator logged in")

	return &LoginResponse{
		Token:      token,
		User:       user.View(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(username, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	if err := s.userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		return err
	}
	// other sessions of this operator must log in again
	if err := s.userRepo.UpdateTokenVersion(user.ID, uuid.New().String()); err != nil {
		return err
	}
	s.audit(user.ID.String(), "password_reset", username)
	return nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	if user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > s.idle {
		return nil, ErrSessionTimeout
	}

	return &TokenValidationResponse{
		User:       user.View(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	now := s.now()
	if err := s.userRepo.UpdateLastSeen(userID, now); err != nil {
		return err
	}

	s.notifier.Publish(ws.Event{
		Type:   "user_status_update",
		Action: "online",
		UserID: userID.String(),
		Data:   map[string]interface{}{"status": "online", "last_seen_at": now},
	})
	return nil
}

func (s *authService) audit(userID, action, username string) {
	if s.auditRepo == nil {
		return
	}
	entry := &model.AuditLog{UserID: userID, Action: action, Entity: "users", NewValues: username}
	entry.CreatedAt = s.now()
	if err := s.auditRepo.Create(entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}
