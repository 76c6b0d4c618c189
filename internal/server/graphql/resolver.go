package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/dmitrijs2005/pitstop/internal/server/auth"
	"github.com/dmitrijs2005/pitstop/internal/server/services"
)

// Resolver is the root resolver for both RootQuery and RootMutation. It
// only translates arguments and results; decisions live in the services.
type Resolver struct {
	users UserService
	posts PostService
}

func NewResolver(users UserService, posts PostService) *Resolver {
	return &Resolver{users: users, posts: posts}
}

type userInput struct {
	Email    string
	Name     string
	Password string
}

type postInput struct {
	Title    string
	Content  string
	ImageURL string
}

type postUpdateInput struct {
	Title    string
	Content  string
	ImageURL *string
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authDataResolver, error) {
	data, err := r.users.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, err
	}
	return &authDataResolver{d: data}, nil
}

func (r *Resolver) Posts(ctx context.Context, args struct{ Page *int32 }) (*postDataResolver, error) {
	page := 0
	if args.Page != nil {
		page = int(*args.Page)
	}
	p, err := r.posts.Posts(ctx, auth.IdentityFromContext(ctx), page)
	if err != nil {
		return nil, err
	}
	return &postDataResolver{page: p, posts: r.posts}, nil
}

func (r *Resolver) Post(ctx context.Context, args struct{ ID graphql.ID }) (*postResolver, error) {
	p, err := r.posts.Post(ctx, auth.IdentityFromContext(ctx), string(args.ID))
	if err != nil {
		return nil, err
	}
	return newPostResolver(p, r.posts), nil
}

func (r *Resolver) User(ctx context.Context) (*userResolver, error) {
	u, err := r.users.User(ctx, auth.IdentityFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return newUserResolver(u, r.posts), nil
}

func (r *Resolver) CreateUser(ctx context.Context, args struct{ UserInput userInput }) (*userResolver, error) {
	u, err := r.users.CreateUser(ctx, services.UserInput{
		Email:    args.UserInput.Email,
		Name:     args.UserInput.Name,
		Password: args.UserInput.Password,
	})
	if err != nil {
		return nil, err
	}
	return newUserResolver(u, r.posts), nil
}

func (r *Resolver) CreatePost(ctx context.Context, args struct{ PostInput postInput }) (*postResolver, error) {
	in := services.PostInput{
		Title:    args.PostInput.Title,
		Content:  args.PostInput.Content,
		ImageURL: &args.PostInput.ImageURL,
	}
	p, err := r.posts.CreatePost(ctx, auth.IdentityFromContext(ctx), in)
	if err != nil {
		return nil, err
	}
	return newPostResolver(p, r.posts), nil
}

func (r *Resolver) UpdatePost(ctx context.Context, args struct {
	ID        graphql.ID
	PostInput postUpdateInput
}) (*postResolver, error) {
	in := services.PostInput{
		Title:    args.PostInput.Title,
		Content:  args.PostInput.Content,
		ImageURL: args.PostInput.ImageURL,
	}
	p, err := r.posts.UpdatePost(ctx, auth.IdentityFromContext(ctx), string(args.ID), in)
	if err != nil {
		return nil, err
	}
	return newPostResolver(p, r.posts), nil
}

func (r *Resolver) DeletePost(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	return r.posts.DeletePost(ctx, auth.IdentityFromContext(ctx), string(args.ID))
}

func (r *Resolver) UpdateStatus(ctx context.Context, args struct{ Status string }) (*userResolver, error) {
	u, err := r.users.UpdateStatus(ctx, auth.IdentityFromContext(ctx), args.Status)
	if err != nil {
		return nil, err
	}
	return newUserResolver(u, r.posts), nil
}
