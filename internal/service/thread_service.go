package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-threads-api/internal/apperror"
	"go-threads-api/internal/core/cache"
	"go-threads-api/internal/domain"
	"go-threads-api/pkg/utils"
)

const defaultThreadTTL = 30 * time.Second

// ThreadService enforces thread invariants on top of the repository. The
// caller-supplied actor ID is trusted to be an authenticated identity; the
// resolver layer rejects unauthenticated calls before reaching here.
type ThreadService struct {
	threads domain.ThreadRepository
	cache   *cache.Cache // optional; nil disables caching
	ttl     time.Duration
	log     *zap.Logger
}

func NewThreadService(threads domain.ThreadRepository, log *zap.Logger) *ThreadService {
	return &ThreadService{threads: threads, ttl: defaultThreadTTL, log: log}
}

// WithCache enables the redis read-through cache for GetByID.
func (s *ThreadService) WithCache(c *cache.Cache, ttl time.Duration) *ThreadService {
	s.cache = c
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

func threadKey(id string) string { return "thread:" + id }

func (s *ThreadService) ListByUser(ctx context.Context, userID string) ([]domain.Thread, error) {
	if userID == "" {
		return nil, apperror.Validation("userId", "userId is required")
	}
	return s.threads.FindByUser(ctx, userID)
}

func (s *ThreadService) GetByID(ctx context.Context, threadID string) (*domain.Thread, error) {
	if threadID == "" {
		return nil, apperror.Validation("threadId", "threadId is required")
	}
	if s.cache == nil {
		return s.load(ctx, threadID)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, threadKey(threadID), s.ttl,
		func(ctx context.Context) (*domain.Thread, error) {
			return s.load(ctx, threadID)
		})
}

func (s *ThreadService) load(ctx context.Context, threadID string) (*domain.Thread, error) {
	t, err := s.threads.FindByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperror.NotFound("thread", threadID)
	}
	return t, nil
}

func (s *ThreadService) Create(ctx context.Context, content, authorID string) (*domain.Thread, error) {
	if content == "" {
		return nil, apperror.Validation("content", "content is required")
	}
	if authorID == "" {
		return nil, apperror.Validation("userId", "userId is required")
	}
	t := &domain.Thread{
		ID:       utils.NewID(),
		Content:  content,
		UserID:   authorID,
		IsPublic: true,
	}
	if err := s.threads.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("thread created", zap.String("thread_id", t.ID), zap.String("user_id", authorID))
	return s.load(ctx, t.ID)
}

// Update changes a thread's content. Only the author may update; this
// ownership check is stricter than the original API, which accepted any
// authenticated caller.
func (s *ThreadService) Update(ctx context.Context, threadID, content, actorID string) (*domain.Thread, error) {
	if threadID == "" {
		return nil, apperror.Validation("threadId", "threadId is required")
	}
	if content == "" {
		return nil, apperror.Validation("content", "content is required")
	}
	existing, err := s.load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actorID {
		return nil, apperror.Forbidden("only the author can update a thread")
	}
	if err := s.threads.UpdateContent(ctx, threadID, content); err != nil {
		return nil, err
	}
	s.invalidate(ctx, existing)
	return s.load(ctx, threadID)
}

// Delete removes the thread and returns it. Replies are left in place and
// remain fetchable by id.
func (s *ThreadService) Delete(ctx context.Context, threadID, actorID string) (*domain.Thread, error) {
	if threadID == "" {
		return nil, apperror.Validation("threadId", "threadId is required")
	}
	existing, err := s.load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actorID {
		return nil, apperror.Forbidden("only the author can delete a thread")
	}
	if err := s.threads.Delete(ctx, threadID); err != nil {
		return nil, err
	}
	s.invalidate(ctx, existing)
	s.log.Info("thread deleted", zap.String("thread_id", threadID))
	return existing, nil
}

// AddReply creates a thread whose parentThreadId points at an existing
// thread. The parent must exist; a dangling reference is rejected here
// rather than left to foreign-key behavior.
func (s *ThreadService) AddReply(ctx context.Context, parentThreadID, content, authorID string) (*domain.Thread, error) {
	if parentThreadID == "" {
		return nil, apperror.Validation("parentThreadId", "parentThreadId is required")
	}
	if content == "" {
		return nil, apperror.Validation("content", "content is required")
	}
	if authorID == "" {
		return nil, apperror.Validation("userId", "userId is required")
	}
	ok, err := s.threads.Exists(ctx, parentThreadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("thread", parentThreadID)
	}
	t := &domain.Thread{
		ID:             utils.NewID(),
		Content:        content,
		UserID:         authorID,
		ParentThreadID: &parentThreadID,
		IsPublic:       true,
	}
	if err := s.threads.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateKeys(ctx, threadKey(parentThreadID))
	return s.load(ctx, t.ID)
}

// AddLike is idempotent: the first like per user records the relation and
// increments likesCount, a repeat changes nothing.
func (s *ThreadService) AddLike(ctx context.Context, threadID, userID string) (*domain.Thread, error) {
	if threadID == "" {
		return nil, apperror.Validation("threadId", "threadId is required")
	}
	if userID == "" {
		return nil, apperror.Validation("userId", "userId is required")
	}
	ok, err := s.threads.Exists(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("thread", threadID)
	}
	liked, err := s.threads.AddLike(ctx, threadID, userID)
	if err != nil {
		return nil, err
	}
	if liked {
		s.invalidateKeys(ctx, threadKey(threadID))
	}
	return s.load(ctx, threadID)
}

func (s *ThreadService) RemoveLike(ctx context.Context, threadID, userID string) (*domain.Thread, error) {
	if threadID == "" {
		return nil, apperror.Validation("threadId", "threadId is required")
	}
	if userID == "" {
		return nil, apperror.Validation("userId", "userId is required")
	}
	removed, err := s.threads.RemoveLike(ctx, threadID, userID)
	if err != nil {
		return nil, err
	}
	if removed {
		s.invalidateKeys(ctx, threadKey(threadID))
	}
	return s.load(ctx, threadID)
}

func (s *ThreadService) invalidate(ctx context.Context, t *domain.Thread) {
	keys := []string{threadKey(t.ID)}
	if t.ParentThreadID != nil {
		keys = append(keys, threadKey(*t.ParentThreadID))
	}
	s.invalidateKeys(ctx, keys...)
}

func (s *ThreadService) invalidateKeys(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("cache invalidate failed", zap.Error(err), zap.Strings("keys", keys))
	}
}
