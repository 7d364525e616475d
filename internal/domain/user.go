package domain

import (
	"context"
	"time"
)

// User is the root entity. Password is stored only as a salted HMAC hash;
// the plaintext never touches the database. Users are created once via
// registration and never updated or deleted.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	FirstName    string    `gorm:"size:64;not null" json:"firstName"`
	LastName     string    `gorm:"size:64" json:"lastName"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Salt         string    `gorm:"size:64;not null" json:"-"`
	ProfileImage string    `gorm:"size:255" json:"profileImage"`
	Threads      []Thread  `gorm:"foreignKey:UserID" json:"threads,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserRepository returns (nil, nil) when a lookup misses; mapping a miss
// to a typed error is the service layer's call.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
