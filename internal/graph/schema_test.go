package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-threads-api/internal/apperror"
	"go-threads-api/internal/core/auth"
	"go-threads-api/internal/domain"
	"go-threads-api/internal/service"
)

// In-memory repositories backing the real services, so these tests run the
// full schema → resolver → service path with only the store faked out.

type memUserRepo struct {
	users map[string]*domain.User // by id
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, e := range m.users {
		if e.Email == u.Email {
			return apperror.Conflict("email already registered: " + u.Email)
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return m.users[id], nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type memThreadRepo struct {
	threads map[string]*domain.Thread
	likes   map[string]map[string]struct{}
	order   []string
	users   map[string]*domain.User // shared with memUserRepo
}

func (m *memThreadRepo) Create(_ context.Context, t *domain.Thread) error {
	now := time.Now()
	cp := *t
	cp.CreatedAt = now
	cp.UpdatedAt = now
	m.threads[t.ID] = &cp
	m.order = append(m.order, t.ID)
	return nil
}

func (m *memThreadRepo) FindByID(_ context.Context, id string) (*domain.Thread, error) {
	t, ok := m.threads[id]
	if !ok {
		return nil, nil
	}
	out := *t
	out.User = m.users[t.UserID]
	out.Replies = []domain.Thread{}
	for _, rid := range m.order {
		r := m.threads[rid]
		if r.ParentThreadID != nil && *r.ParentThreadID == t.ID {
			reply := *r
			reply.User = m.users[r.UserID]
			out.Replies = append(out.Replies, reply)
		}
	}
	if t.ParentThreadID != nil {
		if p, ok := m.threads[*t.ParentThreadID]; ok {
			parent := *p
			parent.User = m.users[p.UserID]
			out.ParentThread = &parent
		}
	}
	return &out, nil
}

func (m *memThreadRepo) FindByUser(_ context.Context, userID string) ([]domain.Thread, error) {
	var out []domain.Thread
	for _, id := range m.order {
		if t := m.threads[id]; t.UserID == userID {
			cp := *t
			cp.User = m.users[t.UserID]
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *memThreadRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.threads[id]
	return ok, nil
}

func (m *memThreadRepo) UpdateContent(_ context.Context, id, content string) error {
	t, ok := m.threads[id]
	if !ok {
		return errors.New("thread missing")
	}
	t.Content = content
	return nil
}

func (m *memThreadRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.threads[id]; !ok {
		return errors.New("thread missing")
	}
	delete(m.threads, id)
	return nil
}

func (m *memThreadRepo) AddLike(_ context.Context, threadID, userID string) (bool, error) {
	if _, ok := m.likes[threadID][userID]; ok {
		return false, nil
	}
	if m.likes[threadID] == nil {
		m.likes[threadID] = map[string]struct{}{}
	}
	m.likes[threadID][userID] = struct{}{}
	m.threads[threadID].LikesCount++
	return true, nil
}

func (m *memThreadRepo) RemoveLike(_ context.Context, threadID, userID string) (bool, error) {
	if _, ok := m.likes[threadID][userID]; !ok {
		return false, nil
	}
	delete(m.likes[threadID], userID)
	m.threads[threadID].LikesCount--
	return true, nil
}

type fixture struct {
	schema graphql.Schema
	jwter  *auth.JWTer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := map[string]*domain.User{}
	jwter := &auth.JWTer{Secret: []byte("test-secret-at-least-16-chars"), Issuer: "threads-api"}
	log := zap.NewNop()

	userSvc := service.NewUserService(&memUserRepo{users: users}, jwter, log)
	threadSvc := service.NewThreadService(&memThreadRepo{
		threads: map[string]*domain.Thread{},
		likes:   map[string]map[string]struct{}{},
		users:   users,
	}, log)

	schema, err := NewSchema(NewResolver(userSvc, threadSvc))
	require.NoError(t, err)
	return &fixture{schema: schema, jwter: jwter}
}

func (f *fixture) do(ctx context.Context, query string, vars map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         f.schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        ctx,
	})
}

func (f *fixture) register(t *testing.T, email, password string) (userID string, ctx context.Context) {
	t.Helper()
	res := f.do(context.Background(), `mutation($email: String!, $password: String!) {
		createUser(firstName: "Ada", lastName: "Lovelace", email: $email, password: $password)
	}`, map[string]interface{}{"email": email, "password": password})
	require.Empty(t, res.Errors)

	userID, ok := res.Data.(map[string]interface{})["createUser"].(string)
	require.True(t, ok, "createUser must return the new user's id")
	require.NotEmpty(t, userID)

	return userID, auth.WithIdentity(context.Background(), &auth.Identity{ID: userID, Email: email})
}

func data(t *testing.T, res *graphql.Result, field string) map[string]interface{} {
	t.Helper()
	require.Empty(t, res.Errors)
	m, ok := res.Data.(map[string]interface{})[field].(map[string]interface{})
	require.True(t, ok, "field %s missing from response data", field)
	return m
}

func TestRegisterIssueDecodeFlow(t *testing.T) {
	f := newFixture(t)
	userID, _ := f.register(t, "a@x.com", "pw1")

	res := f.do(context.Background(), `query {
		getUserToken(email: "a@x.com", password: "pw1")
	}`, nil)
	require.Empty(t, res.Errors)
	tok, ok := res.Data.(map[string]interface{})["getUserToken"].(string)
	require.True(t, ok)
	require.NotEmpty(t, tok)

	claims, err := f.jwter.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UID)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestGetUserTokenWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.com", "pw1")

	res := f.do(context.Background(), `query { getUserToken(email: "a@x.com", password: "wrong") }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "invalid password", res.Errors[0].Message)
}

func TestDuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.com", "pw1")

	res := f.do(context.Background(), `mutation {
		createUser(firstName: "Bob", email: "a@x.com", password: "pw2")
	}`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "already registered")
}

func TestGetCurrentLoggedInUser(t *testing.T) {
	f := newFixture(t)
	userID, ctx := f.register(t, "a@x.com", "pw1")

	res := f.do(ctx, `query {
		getCurrentLoggedInUser { id firstName lastName email profileImage }
	}`, nil)
	u := data(t, res, "getCurrentLoggedInUser")
	assert.Equal(t, userID, u["id"])
	assert.Equal(t, "Ada", u["firstName"])
	assert.Equal(t, "a@x.com", u["email"])

	unauth := f.do(context.Background(), `query { getCurrentLoggedInUser { id } }`, nil)
	require.NotEmpty(t, unauth.Errors)
	assert.Equal(t, "user not authenticated", unauth.Errors[0].Message)
}

func TestCreateThreadAndGetThread(t *testing.T) {
	f := newFixture(t)
	userID, ctx := f.register(t, "a@x.com", "pw1")

	res := f.do(ctx, `mutation { createThread(content: "hello") { id content user { id } replies { id } createdAt } }`, nil)
	created := data(t, res, "createThread")
	assert.Equal(t, "hello", created["content"])
	assert.NotEmpty(t, created["createdAt"])
	assert.Equal(t, userID, created["user"].(map[string]interface{})["id"])

	threadID := created["id"].(string)
	res = f.do(context.Background(), `query($id: ID!) {
		getThread(threadId: $id) { content user { id } replies { id } likesCount isPublic parentThreadId }
	}`, map[string]interface{}{"id": threadID})
	got := data(t, res, "getThread")
	assert.Equal(t, "hello", got["content"])
	assert.Equal(t, userID, got["user"].(map[string]interface{})["id"])
	assert.Empty(t, got["replies"])
	assert.EqualValues(t, 0, got["likesCount"])
	assert.Equal(t, true, got["isPublic"])
	assert.Nil(t, got["parentThreadId"])
}

func TestAddReplyShowsUpInParent(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.register(t, "a@x.com", "pw1")

	res := f.do(ctx, `mutation { createThread(content: "hello") { id } }`, nil)
	parentID := data(t, res, "createThread")["id"].(string)

	res = f.do(ctx, `mutation($pid: ID!) {
		addReply(parentThreadId: $pid, content: "hi") { id content parentThreadId parentThread { id } }
	}`, map[string]interface{}{"pid": parentID})
	reply := data(t, res, "addReply")
	assert.Equal(t, "hi", reply["content"])
	assert.Equal(t, parentID, reply["parentThreadId"])
	assert.Equal(t, parentID, reply["parentThread"].(map[string]interface{})["id"])

	res = f.do(context.Background(), `query($id: ID!) { getThread(threadId: $id) { replies { id content } } }`,
		map[string]interface{}{"id": parentID})
	replies := data(t, res, "getThread")["replies"].([]interface{})
	require.Len(t, replies, 1)
	assert.Equal(t, reply["id"], replies[0].(map[string]interface{})["id"])
}

func TestAddReplyMissingParent(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.register(t, "a@x.com", "pw1")

	res := f.do(ctx, `mutation { addReply(parentThreadId: "missing", content: "hi") { id } }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "not found")
}

func TestLikeMutationsAreIdempotent(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.register(t, "a@x.com", "pw1")

	res := f.do(ctx, `mutation { createThread(content: "hello") { id } }`, nil)
	threadID := data(t, res, "createThread")["id"].(string)
	vars := map[string]interface{}{"id": threadID}

	res = f.do(ctx, `mutation($id: ID!) { addLike(threadId: $id) { likesCount } }`, vars)
	assert.EqualValues(t, 1, data(t, res, "addLike")["likesCount"])

	res = f.do(ctx, `mutation($id: ID!) { addLike(threadId: $id) { likesCount } }`, vars)
	assert.EqualValues(t, 1, data(t, res, "addLike")["likesCount"])

	res = f.do(ctx, `mutation($id: ID!) { removeLike(threadId: $id) { likesCount } }`, vars)
	assert.EqualValues(t, 0, data(t, res, "removeLike")["likesCount"])
}

func TestGetUserThreadsRequiresAuth(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.register(t, "a@x.com", "pw1")

	f.do(ctx, `mutation { createThread(content: "one") { id } }`, nil)
	f.do(ctx, `mutation { createThread(content: "two") { id } }`, nil)

	res := f.do(ctx, `query { getUserThreads { content user { email } } }`, nil)
	require.Empty(t, res.Errors)
	threads := res.Data.(map[string]interface{})["getUserThreads"].([]interface{})
	require.Len(t, threads, 2)
	assert.Equal(t, "one", threads[0].(map[string]interface{})["content"])

	unauth := f.do(context.Background(), `query { getUserThreads { id } }`, nil)
	require.NotEmpty(t, unauth.Errors)
	ext := unauth.Errors[0].Extensions
	require.NotNil(t, ext)
	assert.Equal(t, "UNAUTHENTICATED", ext["code"])
}

func TestUpdateAndDeleteThread(t *testing.T) {
	f := newFixture(t)
	_, ctxA := f.register(t, "a@x.com", "pw1")
	_, ctxB := f.register(t, "b@x.com", "pw2")

	res := f.do(ctxA, `mutation { createThread(content: "hello") { id } }`, nil)
	threadID := data(t, res, "createThread")["id"].(string)
	vars := map[string]interface{}{"id": threadID}

	res = f.do(ctxA, `mutation($id: ID!) { updateThread(threadId: $id, content: "hello v2") { content } }`, vars)
	assert.Equal(t, "hello v2", data(t, res, "updateThread")["content"])

	// only the author may update or delete
	forbidden := f.do(ctxB, `mutation($id: ID!) { updateThread(threadId: $id, content: "hacked") { content } }`, vars)
	require.NotEmpty(t, forbidden.Errors)

	res = f.do(ctxA, `mutation($id: ID!) { deleteThread(threadId: $id) { id content } }`, vars)
	deleted := data(t, res, "deleteThread")
	assert.Equal(t, threadID, deleted["id"])
	assert.Equal(t, "hello v2", deleted["content"])

	gone := f.do(context.Background(), `query($id: ID!) { getThread(threadId: $id) { id } }`, vars)
	require.NotEmpty(t, gone.Errors)
}

func TestUserThreadsFieldResolvesLazily(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.register(t, "a@x.com", "pw1")
	f.do(ctx, `mutation { createThread(content: "hello") { id } }`, nil)

	res := f.do(ctx, `query { getCurrentLoggedInUser { threads { content } } }`, nil)
	u := data(t, res, "getCurrentLoggedInUser")
	threads := u["threads"].([]interface{})
	require.Len(t, threads, 1)
	assert.Equal(t, "hello", threads[0].(map[string]interface{})["content"])
}

func TestUnauthenticatedMutationsRejected(t *testing.T) {
	f := newFixture(t)

	for _, q := range []string{
		`mutation { createThread(content: "x") { id } }`,
		`mutation { updateThread(threadId: "t", content: "x") { id } }`,
		`mutation { deleteThread(threadId: "t") { id } }`,
		`mutation { addReply(parentThreadId: "t", content: "x") { id } }`,
		`mutation { addLike(threadId: "t") { id } }`,
		`mutation { removeLike(threadId: "t") { id } }`,
	} {
		res := f.do(context.Background(), q, nil)
		require.NotEmpty(t, res.Errors, "query %s should be rejected", q)
		assert.Equal(t, "user not authenticated", res.Errors[0].Message)
	}
}
