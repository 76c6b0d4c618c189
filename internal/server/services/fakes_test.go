package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/dbx"
	"github.com/dmitrijs2005/pitstop/internal/server/config"
	"github.com/dmitrijs2005/pitstop/internal/server/models"
	"github.com/dmitrijs2005/pitstop/internal/server/repositories/posts"
	"github.com/dmitrijs2005/pitstop/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.PasswordHashCost = 4
	return cfg
}

// memStore is an in-memory stand-in for both repositories.
type memStore struct {
	mu    sync.Mutex
	seq   int
	clock time.Time
	users map[string]*models.User
	posts map[string]*models.Post

	// injected failures
	createUserErr error
	getUserErr    error
	appendErr     error
	countErr      error
	deleteErr     error
	imageCountErr error
}

func newMemStore() *memStore {
	return &memStore{
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users: map[string]*models.User{},
		posts: map[string]*models.Post{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) addUser(email string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: m.nextID("u"), Email: email, Name: email, Status: common.DefaultUserStatus, Posts: []string{}}
	m.users[u.ID] = u
	return u
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Posts = append([]string{}, u.Posts...)
	return &c
}

func (m *memStore) withCreator(p *models.Post) *models.Post {
	c := *p
	u := copyUser(m.users[p.CreatorID])
	u.PasswordHash = ""
	c.Creator = u
	return &c
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createUserErr != nil {
		return nil, s.createUserErr
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	user.ID = s.nextID("u")
	user.CreatedAt = s.tick()
	user.UpdatedAt = user.CreatedAt
	user.Posts = []string{}
	s.users[user.ID] = copyUser(user)
	return user, nil
}

func (r memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getUserErr != nil {
		return nil, s.getUserErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(u), nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getUserErr != nil {
		return nil, s.getUserErr
	}
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) UpdateStatus(ctx context.Context, id string, status string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Status = status
	u.UpdatedAt = s.tick()
	return copyUser(u), nil
}

func (r memUsers) AppendPost(ctx context.Context, userID string, postID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	u := s.users[userID]
	for _, id := range u.Posts {
		if id == postID {
			return errors.New("duplicate key")
		}
	}
	u.Posts = append(u.Posts, postID)
	return nil
}

func (r memUsers) RemovePost(ctx context.Context, userID string, postID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	out := u.Posts[:0]
	for _, id := range u.Posts {
		if id != postID {
			out = append(out, id)
		}
	}
	u.Posts = out
	return nil
}

func (r memUsers) PostIDs(ctx context.Context, userID string) ([]string, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.users[userID].Posts...), nil
}

type memPosts struct{ s *memStore }

func (r memPosts) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = s.nextID("p")
	post.CreatedAt = s.tick()
	post.UpdatedAt = post.CreatedAt
	c := *post
	s.posts[post.ID] = &c
	return post, nil
}

func (r memPosts) GetByID(ctx context.Context, id string) (*models.Post, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s.withCreator(p), nil
}

func (r memPosts) sorted() []*models.Post {
	list := make([]*models.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		list = append(list, r.s.withCreator(p))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func (r memPosts) List(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.sorted()
	if offset >= len(list) {
		return []*models.Post{}, nil
	}
	end := min(offset+limit, len(list))
	return list[offset:end], nil
}

func (r memPosts) ListByCreator(ctx context.Context, userID string) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Post{}
	for _, id := range r.s.users[userID].Posts {
		out = append(out, r.s.withCreator(r.s.posts[id]))
	}
	return out, nil
}

func (r memPosts) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.countErr != nil {
		return 0, r.s.countErr
	}
	return len(r.s.posts), nil
}

func (r memPosts) CountByImage(ctx context.Context, imageURL string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.imageCountErr != nil {
		return 0, r.s.imageCountErr
	}
	n := 0
	for _, p := range r.s.posts {
		if p.ImageURL == imageURL {
			n++
		}
	}
	return n, nil
}

func (r memPosts) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[post.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.Title, p.Content, p.ImageURL = post.Title, post.Content, post.ImageURL
	p.UpdatedAt = s.tick()
	post.CreatedAt, post.UpdatedAt = p.CreatedAt, p.UpdatedAt
	return post, nil
}

func (r memPosts) Delete(ctx context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(s.posts, id)
	return nil
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return memUsers{m.s} }
func (m *fakeRepoManager) Posts(db dbx.DBTX) posts.Repository           { return memPosts{m.s} }

type fakeCleaner struct {
	mu    sync.Mutex
	paths []string
}

func (c *fakeCleaner) Schedule(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
	return true
}

func (c *fakeCleaner) scheduled() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.paths...)
}
