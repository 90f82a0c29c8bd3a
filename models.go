package auth

import (
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             uuid.UUID  `bun:"id,pk,notnull" json:"id"`
	Username       string     `bun:"username,notnull,unique" json:"username"`
	Email          string     `bun:"email,notnull,unique" json:"email"`
	FirstName      string     `bun:"first_name" json:"first_name"`
	LastName       string     `bun:"last_name" json:"last_name"`
	Bio            string     `bun:"bio" json:"bio"`
	ProfilePicture string     `bun:"profile_picture" json:"profile_picture"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	LoginAttempts  int        `bun:"login_attempts,default:0" json:"-"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at,nullzero" json:"-"`
	LoggedInAt     *time.Time `bun:"logged_in_at,nullzero" json:"-"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

var userHandlers = repository.ModelHandlers[*User]{
	NewRecord: func() *User {
		return &User{}
	},
	GetID: func(record *User) uuid.UUID {
		if record == nil {
			return uuid.Nil
		}
		return record.ID
	},
	SetID: func(record *User, id uuid.UUID) {
		record.ID = id
	},
	GetIdentifier: func() string {
		return "email"
	},
}

// Profile is the public projection of a User returned by the API.
// Email is included but never writable through profile updates.
type Profile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:             u.ID.String(),
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
	}
}
