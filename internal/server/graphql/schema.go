// Package graphql exposes the services through a GraphQL schema served by
// graph-gophers/graphql-go.
package graphql

import (
	"context"
	_ "embed"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/dmitrijs2005/pitstop/internal/server/auth"
	"github.com/dmitrijs2005/pitstop/internal/server/models"
	"github.com/dmitrijs2005/pitstop/internal/server/services"
)

//go:embed schema.graphql
var Schema string

const maxDepth = 12

// UserService is the part of services.UserService the schema needs.
type UserService interface {
	CreateUser(ctx context.Context, in services.UserInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.AuthData, error)
	User(ctx context.Context, id auth.Identity) (*models.User, error)
	UpdateStatus(ctx context.Context, id auth.Identity, status string) (*models.User, error)
}

// PostService is the part of services.PostService the schema needs.
type PostService interface {
	CreatePost(ctx context.Context, id auth.Identity, in services.PostInput) (*models.Post, error)
	Posts(ctx context.Context, id auth.Identity, page int) (*models.PostPage, error)
	Post(ctx context.Context, id auth.Identity, postID string) (*models.Post, error)
	PostsByUser(ctx context.Context, userID string) ([]*models.Post, error)
	UpdatePost(ctx context.Context, id auth.Identity, postID string, in services.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id auth.Identity, postID string) (bool, error)
}

// NewSchema parses the embedded schema against a root resolver backed by
// the given services.
func NewSchema(users UserService, posts PostService) (*graphql.Schema, error) {
	return graphql.ParseSchema(Schema, NewResolver(users, posts), graphql.MaxDepth(maxDepth))
}
