package domain

import (
	"context"
	"time"
)

// User roles. Roles are assigned out of band; this service only reads them.
const (
	RoleDeveloper = "developer"
	RoleEvaluator = "evaluator"
)

type User struct {
	ID        string    `json:"id"` // Supabase UUID
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}

type AuthUsecase interface {
	// EnsureUserExists upserts the local row for a verified identity and
	// returns it with the authoritative role.
	EnsureUserExists(ctx context.Context, userID, email string) (*User, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
}
