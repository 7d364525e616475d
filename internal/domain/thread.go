package domain

import (
	"context"
	"time"
)

// Thread is a post. A thread with ParentThreadID set is a reply; Replies
// is the derived inverse of that association. Deleting a thread does not
// cascade to its replies.
type Thread struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	UserID         string    `gorm:"size:36;not null;index" json:"userId"`
	User           *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ParentThreadID *string   `gorm:"size:36;index" json:"parentThreadId"`
	ParentThread   *Thread   `gorm:"foreignKey:ParentThreadID" json:"parentThread,omitempty"`
	Replies        []Thread  `gorm:"foreignKey:ParentThreadID" json:"replies"`
	LikesCount     int       `gorm:"not null;default:0" json:"likesCount"`
	IsPublic       bool      `gorm:"not null;default:true" json:"isPublic"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Thread) TableName() string { return "threads" }

// ThreadLike records at most one like per (thread, user) pair. The counter
// on Thread moves together with this relation inside one transaction.
type ThreadLike struct {
	ThreadID  string    `gorm:"primaryKey;size:36" json:"threadId"`
	UserID    string    `gorm:"primaryKey;size:36" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ThreadLike) TableName() string { return "thread_likes" }

type ThreadRepository interface {
	Create(ctx context.Context, t *Thread) error
	// FindByID eagerly loads the author, the replies (with their authors)
	// and the parent thread. Returns (nil, nil) when absent.
	FindByID(ctx context.Context, id string) (*Thread, error)
	FindByUser(ctx context.Context, userID string) ([]Thread, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	// AddLike reports whether a new like was recorded; a repeated like is
	// a no-op and returns false.
	AddLike(ctx context.Context, threadID, userID string) (bool, error)
	RemoveLike(ctx context.Context, threadID, userID string) (bool, error)
}
