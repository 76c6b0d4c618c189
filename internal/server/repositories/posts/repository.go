// Package posts persists blog posts.
package posts

import (
	"context"

	"github.com/dmitrijs2005/pitstop/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	// GetByID returns the post with its Creator populated.
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns posts newest first, each with its Creator populated.
	List(ctx context.Context, offset, limit int) ([]*models.Post, error)
	// ListByCreator returns the posts of one user in the order they were
	// written.
	ListByCreator(ctx context.Context, userID string) ([]*models.Post, error)
	Count(ctx context.Context) (int, error)
	// CountByImage returns how many posts use imageURL.
	CountByImage(ctx context.Context, imageURL string) (int, error)
	// Update stores title, content and image url of post and refreshes
	// its updated_at.
	Update(ctx context.Context, post *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id string) error
}
