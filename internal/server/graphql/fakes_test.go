package graphql

import (
	"context"
	"errors"
	"testing"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/server/auth"
	"github.com/dmitrijs2005/pitstop/internal/server/models"
	"github.com/dmitrijs2005/pitstop/internal/server/services"
)

var (
	created = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	alice   = &models.User{ID: "u-1", Email: "a@x.com", Name: "Alice", PasswordHash: "$2a$hash", Status: "I am new!", Posts: []string{"p-1"}}
	post1   = &models.Post{ID: "p-1", Title: "Hello", Content: "World!", ImageURL: "images/a.png", CreatorID: "u-1", Creator: alice, CreatedAt: created, UpdatedAt: created}
)

type fakeUsers struct {
	lastInput services.UserInput
	lastID    auth.Identity
	err       error
}

func (f *fakeUsers) CreateUser(ctx context.Context, in services.UserInput) (*models.User, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return alice, nil
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.AuthData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.AuthData{Token: "tok", UserID: alice.ID}, nil
}

func (f *fakeUsers) User(ctx context.Context, id auth.Identity) (*models.User, error) {
	f.lastID = id
	if !id.Authenticated {
		return nil, common.NewUnauthenticated("User not Authenticated!")
	}
	return alice, nil
}

func (f *fakeUsers) UpdateStatus(ctx context.Context, id auth.Identity, status string) (*models.User, error) {
	u := *alice
	u.Status = status
	return &u, nil
}

type fakePosts struct {
	lastPage   int
	lastInput  services.PostInput
	lastID     auth.Identity
	byUserArgs []string
	err        error
}

func (f *fakePosts) CreatePost(ctx context.Context, id auth.Identity, in services.PostInput) (*models.Post, error) {
	f.lastID, f.lastInput = id, in
	if f.err != nil {
		return nil, f.err
	}
	return post1, nil
}

func (f *fakePosts) Posts(ctx context.Context, id auth.Identity, page int) (*models.PostPage, error) {
	f.lastID, f.lastPage = id, page
	if f.err != nil {
		return nil, f.err
	}
	return &models.PostPage{Posts: []*models.Post{post1}, TotalPosts: 5}, nil
}

func (f *fakePosts) Post(ctx context.Context, id auth.Identity, postID string) (*models.Post, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	if postID != post1.ID {
		return nil, common.NewNotFound("No Post Found!")
	}
	return post1, nil
}

func (f *fakePosts) PostsByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	f.byUserArgs = append(f.byUserArgs, userID)
	return []*models.Post{post1}, nil
}

func (f *fakePosts) UpdatePost(ctx context.Context, id auth.Identity, postID string, in services.PostInput) (*models.Post, error) {
	f.lastID, f.lastInput = id, in
	if f.err != nil {
		return nil, f.err
	}
	p := *post1
	p.Title, p.Content = in.Title, in.Content
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	return &p, nil
}

func (f *fakePosts) DeletePost(ctx context.Context, id auth.Identity, postID string) (bool, error) {
	f.lastID = id
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

var errPlain = errors.New("connection reset by peer")

func newTestSchema(t *testing.T) (*graphql.Schema, *fakeUsers, *fakePosts) {
	t.Helper()
	u, p := &fakeUsers{}, &fakePosts{}
	s, err := NewSchema(u, p)
	require.NoError(t, err)
	return s, u, p
}

func authed() context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{Authenticated: true, UserID: "u-1", Email: "a@x.com"})
}
