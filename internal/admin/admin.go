// Package admin implements the bloguser command: creating users and issuing
// bearer tokens from the shell, through the same service the API uses.
package admin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/flagx"
	"github.com/dmitrijs2005/pitstop/internal/server/models"
	"github.com/dmitrijs2005/pitstop/internal/server/services"
)

var ErrUsage = errors.New("usage: bloguser create -email <email> -name <name> | bloguser token -email <email>")

// UserService is the part of services.UserService the command needs.
type UserService interface {
	CreateUser(ctx context.Context, in services.UserInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.AuthData, error)
}

type App struct {
	users UserService
	out   io.Writer
}

func NewApp(users UserService, out io.Writer) *App {
	return &App{users: users, out: out}
}

// Run dispatches on the first argument. Flags after the command that
// belong to the server configuration are ignored.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "create":
		return a.create(ctx, args[1:])
	case "token":
		return a.token(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], ErrUsage)
	}
}

func (a *App) create(ctx context.Context, args []string) error {
	var email, name string
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&email, "email", "", "user email")
	fs.StringVar(&name, "name", "", "display name")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-email", "-name"})); err != nil {
		return err
	}
	if email == "" || name == "" {
		return ErrUsage
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer wipe(pw)

	user, err := a.users.CreateUser(ctx, services.UserInput{Email: email, Name: name, Password: string(pw)})
	if err != nil {
		a.report(err)
		return err
	}

	fmt.Fprintf(a.out, "created user %s (%s)\n", user.ID, user.Email)
	return nil
}

func (a *App) token(ctx context.Context, args []string) error {
	var email string
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&email, "email", "", "user email")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-email"})); err != nil {
		return err
	}
	if email == "" {
		return ErrUsage
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer wipe(pw)

	data, err := a.users.Login(ctx, email, string(pw))
	if err != nil {
		a.report(err)
		return err
	}

	fmt.Fprintf(a.out, "Bearer %s\n", data.Token)
	return nil
}

// report prints validation details that the error string alone hides.
func (a *App) report(err error) {
	var ce *common.Error
	if !errors.As(err, &ce) {
		return
	}
	for _, v := range ce.Data {
		fmt.Fprintf(a.out, "  %s: %s\n", v.Field, v.Message)
	}
}
