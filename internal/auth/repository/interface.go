package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the stored account row.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// AuthRepository defines the interface for authentication data operations.
// Services depend on this abstraction rather than the concrete implementation,
// which keeps the service testable without a database.
type AuthRepository interface {
	// User operations
	CreateUser(ctx context.Context, email, name, passwordHash string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)

	// Session operations
	CreateSession(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetSession(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) error
}

// Ensure Repository implements AuthRepository
var _ AuthRepository = (*Repository)(nil)
