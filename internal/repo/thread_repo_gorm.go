package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-threads-api/internal/domain"
)

type ThreadRepo struct{ db *gorm.DB }

func NewThreadRepo(db *gorm.DB) *ThreadRepo { return &ThreadRepo{db: db} }

func (r *ThreadRepo) Create(ctx context.Context, t *domain.Thread) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ThreadRepo) FindByID(ctx context.Context, id string) (*domain.Thread, error) {
	var t domain.Thread
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Replies").
		Preload("Replies.User").
		Preload("ParentThread").
		Preload("ParentThread.User").
		First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ThreadRepo) FindByUser(ctx context.Context, userID string) ([]domain.Thread, error) {
	var threads []domain.Thread
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&threads).Error
	return threads, err
}

func (r *ThreadRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Thread{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *ThreadRepo) UpdateContent(ctx context.Context, id, content string) error {
	res := r.db.WithContext(ctx).Model(&domain.Thread{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the thread row only. Replies keep their parent_thread_id
// and stay fetchable; there is no cascade.
func (r *ThreadRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Thread{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddLike inserts the (thread, user) relation and bumps likes_count in one
// transaction. A repeated like hits the composite primary key, inserts
// nothing and leaves the counter alone.
func (r *ThreadRepo) AddLike(ctx context.Context, threadID, userID string) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.ThreadLike{ThreadID: threadID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		liked = true
		return tx.Model(&domain.Thread{}).Where("id = ?", threadID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	return liked, err
}

func (r *ThreadRepo) RemoveLike(ctx context.Context, threadID, userID string) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("thread_id = ? AND user_id = ?", threadID, userID).
			Delete(&domain.ThreadLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&domain.Thread{}).
			Where("id = ? AND likes_count > 0", threadID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
	})
	return removed, err
}
