package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/dbx"
	"github.com/dmitrijs2005/pitstop/internal/server/auth"
	"github.com/dmitrijs2005/pitstop/internal/server/config"
	"github.com/dmitrijs2005/pitstop/internal/server/images"
	"github.com/dmitrijs2005/pitstop/internal/server/models"
	"github.com/dmitrijs2005/pitstop/internal/server/repositories/repomanager"
)

const (
	msgPostNotFound  = "No Post Found!"
	msgNotAuthorized = "Not Authorized!"
	msgInvalidImage  = "Image path is invalid!"
)

// PostInput carries title, content and image of a post. ImageURL is nil
// when the client did not send one; on update that keeps the stored image.
type PostInput struct {
	Title    string
	Content  string
	ImageURL *string
}

// PostService implements post creation, listing, lookup, update and
// deletion.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cleaner     images.Cleaner
	perPage     int
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, cleaner images.Cleaner, cfg *config.Config) *PostService {
	perPage := cfg.PostsPerPage
	if perPage < 1 {
		perPage = 1
	}
	return &PostService{
		db:          db,
		repomanager: m,
		cleaner:     cleaner,
		perPage:     perPage,
	}
}

func validatePost(in PostInput) error {
	var c checks
	c.rule("title", in.Title, "min=5", "Title Length too short!")
	c.rule("content", in.Content, "min=5", "Content Length too short!")
	if in.ImageURL != nil && *in.ImageURL != "" && !images.IsStoredPath(*in.ImageURL) {
		c.add("imageUrl", msgInvalidImage)
	}
	return c.err()
}

// CreatePost stores a post for the acting user and appends it to the user's
// post list in the same transaction.
func (s *PostService) CreatePost(ctx context.Context, id auth.Identity, in PostInput) (*models.Post, error) {
	if !id.Authenticated {
		return nil, common.NewUnauthenticated(msgNotAuthenticated)
	}
	if err := validatePost(in); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUnauthenticated(msgInvalidUser)
		}
		return nil, common.NewInternal(fmt.Errorf("error loading user: %w", err))
	}

	post := &models.Post{
		Title:     in.Title,
		Content:   in.Content,
		CreatorID: user.ID,
	}
	if in.ImageURL != nil {
		post.ImageURL = *in.ImageURL
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Posts(tx).Create(ctx, post); err != nil {
			return fmt.Errorf("error creating post: %w", err)
		}
		if err := s.repomanager.Users(tx).AppendPost(ctx, user.ID, post.ID); err != nil {
			return fmt.Errorf("error linking post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, common.NewInternal(err)
	}

	user.Posts = append(user.Posts, post.ID)
	post.Creator = user
	return post, nil
}

// Posts returns one page of posts, newest first. Page 0 means the first
// page.
func (s *PostService) Posts(ctx context.Context, id auth.Identity, page int) (*models.PostPage, error) {
	if !id.Authenticated {
		return nil, common.NewUnauthenticated(msgNotAuthenticated)
	}

	if page == 0 {
		page = 1
	}
	var c checks
	c.rule("page", page, "min=1", "Page must be 1 or greater!")
	if err := c.err(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Posts(s.db)

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, common.NewInternal(fmt.Errorf("error counting posts: %w", err))
	}

	list, err := repo.List(ctx, (page-1)*s.perPage, s.perPage)
	if err != nil {
		return nil, common.NewInternal(fmt.Errorf("error listing posts: %w", err))
	}

	return &models.PostPage{Posts: list, TotalPosts: total}, nil
}

// Post returns a single post with its creator.
func (s *PostService) Post(ctx context.Context, id auth.Identity, postID string) (*models.Post, error) {
	if !id.Authenticated {
		return nil, common.NewUnauthenticated(msgNotAuthenticated)
	}
	return s.load(ctx, postID)
}

// PostsByUser lists the posts of userID in the order they were written.
func (s *PostService) PostsByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	list, err := s.repomanager.Posts(s.db).ListByCreator(ctx, userID)
	if err != nil {
		return nil, common.NewInternal(fmt.Errorf("error listing user posts: %w", err))
	}
	return list, nil
}

// UpdatePost rewrites title and content of a post owned by the acting user.
// The image changes only when in.ImageURL is set; the replaced file is
// handed to the cleaner.
func (s *PostService) UpdatePost(ctx context.Context, id auth.Identity, postID string, in PostInput) (*models.Post, error) {
	if !id.Authenticated {
		return nil, common.NewUnauthenticated(msgNotAuthenticated)
	}
	if err := validatePost(in); err != nil {
		return nil, err
	}

	post, err := s.owned(ctx, id, postID)
	if err != nil {
		return nil, err
	}

	oldImage := post.ImageURL
	post.Title = in.Title
	post.Content = in.Content
	if in.ImageURL != nil {
		post.ImageURL = *in.ImageURL
	}

	updated, err := s.repomanager.Posts(s.db).Update(ctx, post)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFound(msgPostNotFound)
		}
		return nil, common.NewInternal(fmt.Errorf("error updating post: %w", err))
	}

	if oldImage != updated.ImageURL {
		s.ReleaseImage(ctx, oldImage)
	}
	return updated, nil
}

// DeletePost removes a post owned by the acting user together with its entry
// in the user's post list. The image is removed in the background after the
// transaction commits; its outcome does not affect the result.
func (s *PostService) DeletePost(ctx context.Context, id auth.Identity, postID string) (bool, error) {
	if !id.Authenticated {
		return false, common.NewUnauthenticated(msgNotAuthenticated)
	}

	post, err := s.owned(ctx, id, postID)
	if err != nil {
		return false, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).RemovePost(ctx, post.CreatorID, post.ID); err != nil {
			return fmt.Errorf("error unlinking post: %w", err)
		}
		if err := s.repomanager.Posts(tx).Delete(ctx, post.ID); err != nil {
			return fmt.Errorf("error deleting post: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, common.NewNotFound(msgPostNotFound)
		}
		return false, common.NewInternal(err)
	}

	s.ReleaseImage(ctx, post.ImageURL)
	return true, nil
}

// owned loads postID and applies the ownership gate.
func (s *PostService) owned(ctx context.Context, id auth.Identity, postID string) (*models.Post, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.CreatorID != id.UserID {
		return nil, common.NewForbidden(msgNotAuthorized)
	}
	return post, nil
}

func (s *PostService) load(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.repomanager.Posts(s.db).GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFound(msgPostNotFound)
		}
		return nil, common.NewInternal(fmt.Errorf("error loading post: %w", err))
	}
	return post, nil
}

// ReleaseImage hands path to the cleaner once no post uses it any more.
// Paths the image store could not have issued are ignored, and so is a path
// whose use cannot be counted.
func (s *PostService) ReleaseImage(ctx context.Context, path string) {
	if s.cleaner == nil || !images.IsStoredPath(path) {
		return
	}
	n, err := s.repomanager.Posts(s.db).CountByImage(ctx, path)
	if err != nil || n > 0 {
		return
	}
	s.cleaner.Schedule(path)
}
