package models

import (
	"time"
)

// Role represents an account role
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account represents a registered user of the platform
type Account struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	Email         string     `json:"email" bson:"email"`
	Username      string     `json:"username" bson:"username"`
	PasswordHash  string     `json:"-" bson:"passwordHash"`
	Roles         []Role     `json:"roles" bson:"roles"`
	Bio           string     `json:"bio,omitempty" bson:"bio,omitempty"`
	ProfilePath   string     `json:"profile_path,omitempty" bson:"profilePath,omitempty"`
	Locked        bool       `json:"locked" bson:"locked"`
	EmailVerified bool       `json:"email_verified" bson:"emailVerified"`
	CreatedAt     time.Time  `json:"created_at" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updatedAt"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty" bson:"lastLoginAt,omitempty"`
}

// HasRole reports whether the account carries the given role.
func (a *Account) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanAuthenticate reports whether the account may log in at all. A locked or
// unverified account never authenticates, regardless of credentials.
func (a *Account) CanAuthenticate() bool {
	return a.EmailVerified && !a.Locked
}

// CreatorProfile is the public view of a creator account served on the
// unauthenticated surface. Credentials, email, roles and moderation state
// never leave the private model.
type CreatorProfile struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Bio          string    `json:"bio,omitempty"`
	ProfilePath  string    `json:"profile_path,omitempty"`
	PodcastCount int64     `json:"podcast_count"`
	JoinedAt     time.Time `json:"joined_at"`
}

// PublicProfile derives the public creator view from an account.
func (a *Account) PublicProfile(podcastCount int64) *CreatorProfile {
	return &CreatorProfile{
		ID:           a.ID,
		Username:     a.Username,
		Bio:          a.Bio,
		ProfilePath:  a.ProfilePath,
		PodcastCount: podcastCount,
		JoinedAt:     a.CreatedAt,
	}
}

// AccountStatus is a pseudo-status used by admin account filters.
type AccountStatus string

const (
	AccountStatusActive              AccountStatus = "ACTIVE"
	AccountStatusLocked              AccountStatus = "LOCKED"
	AccountStatusPendingVerification AccountStatus = "PENDING_VERIFICATION"
)
