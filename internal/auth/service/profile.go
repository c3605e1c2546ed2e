package service

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public view of a user account.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
