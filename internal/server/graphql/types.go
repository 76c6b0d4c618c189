package graphql

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/server/models"
	"github.com/dmitrijs2005/pitstop/internal/server/services"
)

// timestamps go out as RFC 3339 with millisecond precision, always UTC
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// userResolver maps models.User to the User type. The stored hash never
// leaves this package: password always resolves to null.
type userResolver struct {
	u     *models.User
	posts PostService
}

func newUserResolver(u *models.User, posts PostService) *userResolver {
	return &userResolver{u: u, posts: posts}
}

func (r *userResolver) ID() graphql.ID    { return graphql.ID(r.u.ID) }
func (r *userResolver) Name() string      { return r.u.Name }
func (r *userResolver) Email() string     { return r.u.Email }
func (r *userResolver) Password() *string { return nil }
func (r *userResolver) Status() string    { return r.u.Status }

func (r *userResolver) Posts(ctx context.Context) ([]*postResolver, error) {
	list, err := r.posts.PostsByUser(ctx, r.u.ID)
	if err != nil {
		return nil, err
	}
	return newPostResolvers(list, r.posts), nil
}

// postResolver maps models.Post to the Post type.
type postResolver struct {
	p     *models.Post
	posts PostService
}

func newPostResolver(p *models.Post, posts PostService) *postResolver {
	return &postResolver{p: p, posts: posts}
}

func newPostResolvers(list []*models.Post, posts PostService) []*postResolver {
	out := make([]*postResolver, 0, len(list))
	for _, p := range list {
		out = append(out, newPostResolver(p, posts))
	}
	return out
}

func (r *postResolver) ID() graphql.ID    { return graphql.ID(r.p.ID) }
func (r *postResolver) Title() string     { return r.p.Title }
func (r *postResolver) Content() string   { return r.p.Content }
func (r *postResolver) ImageURL() string  { return r.p.ImageURL }
func (r *postResolver) CreatedAt() string { return formatTime(r.p.CreatedAt) }
func (r *postResolver) UpdatedAt() string { return formatTime(r.p.UpdatedAt) }

func (r *postResolver) Creator() (*userResolver, error) {
	if r.p.Creator == nil {
		return nil, common.NewInternal(errMissingCreator)
	}
	return newUserResolver(r.p.Creator, r.posts), nil
}

type postDataResolver struct {
	page  *models.PostPage
	posts PostService
}

func (r *postDataResolver) Posts() []*postResolver {
	return newPostResolvers(r.page.Posts, r.posts)
}

func (r *postDataResolver) TotalPosts() int32 { return int32(r.page.TotalPosts) }

type authDataResolver struct {
	d *services.AuthData
}

func (r *authDataResolver) Token() string  { return r.d.Token }
func (r *authDataResolver) UserID() string { return r.d.UserID }
