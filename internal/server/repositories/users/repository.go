// Package users persists registered authors and the ordered list of posts
// each of them has written.
package users

import (
	"context"

	"github.com/dmitrijs2005/pitstop/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in the generated id, status and
	// timestamps. A taken email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateStatus(ctx context.Context, id string, status string) (*models.User, error)
	AppendPost(ctx context.Context, userID string, postID string) error
	RemovePost(ctx context.Context, userID string, postID string) error
	PostIDs(ctx context.Context, userID string) ([]string, error)
}
