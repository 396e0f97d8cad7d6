package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"autovision/backend/internal/config"
	"autovision/backend/internal/ids"
	"autovision/backend/internal/models"
	"autovision/backend/internal/repository"
	"autovision/backend/internal/security"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionExpired     = errors.New("session expired")
	ErrAccountSuspended   = errors.New("account suspended")
)

type AuthService struct {
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	security config.SecurityConfig
	log      zerolog.Logger
}

func NewAuthService(
	users *repository.UserRepository,
	sessions *repository.SessionRepository,
	security config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		security: security,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// SessionMeta carries per-request client details into the session row.
type SessionMeta struct {
	DeviceID   string
	DeviceName string
	IPAddress  string
	UserAgent  string
}

type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type AuthResult struct {
	User   models.User
	Tokens TokenPair
}

func (s *AuthService) Register(ctx context.Context, email, password, fullName string, meta SessionMeta) (AuthResult, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         models.UserRoleUser,
		Status:       models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the lookup above; the
		// unique index is the authority.
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, err
	}

	tokens, err := s.createSession(ctx, user, meta)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return AuthResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string, meta SessionMeta) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if user.Status == models.UserStatusSuspended {
		return AuthResult{}, ErrAccountSuspended
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	tokens, err := s.createSession(ctx, user, meta)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh rotates the refresh token and issues a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta SessionMeta) (AuthResult, error) {
	session, err := s.sessions.FindByRefreshHash(ctx, security.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return AuthResult{}, ErrSessionExpired
		}
		return AuthResult{}, err
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.DeleteByID(ctx, session.ID)
		return AuthResult{}, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return AuthResult{}, err
	}
	if user.Status == models.UserStatusSuspended {
		return AuthResult{}, ErrAccountSuspended
	}

	newRefresh, newHash, err := security.GenerateRefreshToken(0)
	if err != nil {
		return AuthResult{}, err
	}
	expiresAt := time.Now().Add(s.security.JWTRefreshTTL)
	if err := s.sessions.RotateRefreshToken(ctx, session.ID, newHash, expiresAt); err != nil {
		return AuthResult{}, err
	}
	if err := s.sessions.Touch(ctx, session.ID, meta.IPAddress, meta.UserAgent); err != nil {
		return AuthResult{}, err
	}

	access, err := security.GenerateAccessToken(
		s.security.JWTAccessSecret, user.ID, session.ID, session.DeviceID, string(user.Role), s.security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		User: user,
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: newRefresh,
			ExpiresAt:    time.Now().Add(s.security.JWTAccessTTL),
		},
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.DeleteByID(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *AuthService) GetSession(ctx context.Context, sessionID string) (models.Session, error) {
	return s.sessions.GetByID(ctx, sessionID)
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) createSession(ctx context.Context, user models.User, meta SessionMeta) (TokenPair, error) {
	if meta.DeviceID == "" {
		meta.DeviceID = ids.New()
	}

	refresh, refreshHash, err := security.GenerateRefreshToken(0)
	if err != nil {
		return TokenPair{}, err
	}

	session := models.Session{
		ID:               ids.New(),
		UserID:           user.ID,
		DeviceID:         meta.DeviceID,
		DeviceName:       meta.DeviceName,
		RefreshTokenHash: refreshHash,
		IPAddress:        meta.IPAddress,
		UserAgent:        meta.UserAgent,
		ExpiresAt:        time.Now().Add(s.security.JWTRefreshTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return TokenPair{}, err
	}
	if err := s.enforceSessionLimit(ctx, user.ID); err != nil {
		return TokenPair{}, err
	}

	access, err := security.GenerateAccessToken(
		s.security.JWTAccessSecret, user.ID, session.ID, meta.DeviceID, string(user.Role), s.security.JWTAccessTTL,
	)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(s.security.JWTAccessTTL),
	}, nil
}

func (s *AuthService) enforceSessionLimit(ctx context.Context, userID string) error {
	count, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= s.security.MaxSessions {
		return nil
	}
	return s.sessions.DeleteOldestSessions(ctx, userID, s.security.MaxSessions)
}
