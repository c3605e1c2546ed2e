// Package service contains the auth business logic.
package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"greenbin_backend/internal/auth/repository"
	"greenbin_backend/internal/auth/token"
	"greenbin_backend/internal/events"
	"greenbin_backend/platform/apperr"
	"greenbin_backend/platform/config"
	"greenbin_backend/platform/logger"
)

const (
	accessTokenType  = "access"
	sessionTokenSize = 48
)

// Service implements signup, login, session refresh, and logout.
type Service struct {
	repo repository.AuthRepository
	cfg  config.AuthServiceConfig
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new auth service.
func New(repo repository.AuthRepository, cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus, log: log}
}

// SignUp registers a new citizen account.
func (s *Service) SignUp(ctx context.Context, email, name, plainPassword string) (Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return Profile{}, apperr.Internal("failed to hash password")
	}

	user, err := s.repo.CreateUser(ctx, email, name, string(hash))
	if err != nil {
		return Profile{}, err
	}

	s.bus.Publish(ctx, events.UserSignedUp{
		BaseEvent: events.NewBaseEvent(),
		UserID:    user.ID,
		Email:     user.Email,
	})
	s.log.AuthEvent("sign_up", user.Email, true, "")

	return toProfile(user), nil
}

// SignIn verifies credentials and issues an access token plus a session token.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (string, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("sign_in", email, false, "unknown email")
		return "", "", apperr.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plainPassword)); err != nil {
		s.log.AuthEvent("sign_in", email, false, "wrong password")
		return "", "", apperr.Unauthorized("invalid credentials")
	}

	s.log.AuthEvent("sign_in", email, true, "")
	return s.issueTokens(ctx, user.ID)
}

// Refresh exchanges a valid session token for a fresh token pair.
// The used session is rotated out.
func (s *Service) Refresh(ctx context.Context, sessionToken string) (string, string, error) {
	hash := token.HashSHA256(sessionToken)
	userID, expiresAt, err := s.repo.GetSession(ctx, hash)
	if err != nil {
		return "", "", apperr.Unauthorized("invalid session")
	}

	if time.Now().After(expiresAt) {
		_ = s.repo.DeleteSession(ctx, hash)
		return "", "", apperr.Unauthorized("session expired")
	}

	_ = s.repo.DeleteSession(ctx, hash)
	return s.issueTokens(ctx, userID)
}

// SignOut clears the session identified by the token.
func (s *Service) SignOut(ctx context.Context, sessionToken string) error {
	return s.repo.DeleteSession(ctx, token.HashSHA256(sessionToken))
}

// GetMe returns the profile of the user with the given ID.
func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return toProfile(user), nil
}

func (s *Service) issueTokens(ctx context.Context, userID uuid.UUID) (string, string, error) {
	accessToken, err := s.signJWT(userID, s.cfg.GetAccessTokenTTL())
	if err != nil {
		return "", "", apperr.Internal("failed to sign token")
	}

	sessionToken, err := token.GenerateRandomToken(sessionTokenSize)
	if err != nil {
		return "", "", apperr.Internal("failed to generate session token")
	}

	hash := token.HashSHA256(sessionToken)
	expiresAt := time.Now().Add(s.cfg.GetSessionTTL())
	if err := s.repo.CreateSession(ctx, userID, hash, expiresAt); err != nil {
		return "", "", err
	}

	return accessToken, sessionToken, nil
}

func (s *Service) signJWT(userID uuid.UUID, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"type": accessTokenType,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toProfile(u repository.User) Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
