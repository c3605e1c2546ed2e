// Package adapters contains thin glue types that let modules depend on each
// other through narrow interfaces instead of concrete services.
package adapters

import (
	"context"

	"github.com/google/uuid"

	authservice "greenbin_backend/internal/auth/service"
	"greenbin_backend/internal/notification"
)

// UserDirectory adapts the auth service to notification.UserDirectory.
type UserDirectory struct {
	auth *authservice.Service
}

// NewUserDirectory creates the adapter.
func NewUserDirectory(auth *authservice.Service) *UserDirectory {
	return &UserDirectory{auth: auth}
}

var _ notification.UserDirectory = (*UserDirectory)(nil)

// GetContact returns the email address and display name for a user.
func (d *UserDirectory) GetContact(ctx context.Context, userID uuid.UUID) (string, string, error) {
	profile, err := d.auth.GetMe(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return profile.Email, profile.Name, nil
}
