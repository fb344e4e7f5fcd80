package users

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderGoogle = "google"
	ProviderDev    = "dev"

	// created by the seed command, used by dev login and the dev bypass header
	DevUserEmail = "test@example.com"
)

type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  *string   `json:"avatarUrl"`
	Provider   string    `json:"provider"`
	ProviderID string    `json:"-"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ExternalProfile is what an identity provider tells us about a user.
type ExternalProfile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}
