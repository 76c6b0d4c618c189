// Package services contains server-side business logic: the resolver set
// behind the GraphQL operations. Every operation receives the request's
// auth.Identity and returns either a model or a classified *common.Error.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/server/auth"
	"github.com/dmitrijs2005/pitstop/internal/server/config"
	"github.com/dmitrijs2005/pitstop/internal/server/models"
	"github.com/dmitrijs2005/pitstop/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgNotAuthenticated = "User not Authenticated!"
	msgInvalidUser      = "Invalid User!"
	msgBadCredentials   = "Email or password is incorrect!"
	msgUserExists       = "User exists already!"
	msgUserNotFound     = "No User Found!"
)

// UserInput is the payload of createUser.
type UserInput struct {
	Email    string
	Name     string
	Password string
}

// AuthData is what a successful login hands back to the client.
type AuthData struct {
	Token  string
	UserID string
}

// UserService handles registration, login and the acting user's profile.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
	hashCost      int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.AccessTokenValidityDuration,
		hashCost:      cfg.PasswordHashCost,
	}
}

// CreateUser registers a new user. A taken email is reported as a conflict.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	var c checks
	c.rule("email", in.Email, "required,email", "Email is invalid!")
	c.rule("password", in.Password, "min=5", "Password too short!")
	if len(in.Password) > 72 {
		c.add("password", "Password too long!")
	}
	if err := c.err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, common.NewInternal(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		Status:       common.DefaultUserStatus,
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewConflict(msgUserExists)
		}
		return nil, common.NewInternal(fmt.Errorf("error creating user: %w", err))
	}
	return u, nil
}

// Login checks the credentials and issues a signed token. Unknown email and
// wrong password fail the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthData, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUnauthenticated(msgBadCredentials)
		}
		return nil, common.NewInternal(fmt.Errorf("error loading user: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.NewUnauthenticated(msgBadCredentials)
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.NewInternal(fmt.Errorf("error generating token: %w", err))
	}

	return &AuthData{Token: token, UserID: user.ID}, nil
}

// User returns the acting user.
func (s *UserService) User(ctx context.Context, id auth.Identity) (*models.User, error) {
	if !id.Authenticated {
		return nil, common.NewUnauthenticated(msgNotAuthenticated)
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFound(msgUserNotFound)
		}
		return nil, common.NewInternal(fmt.Errorf("error loading user: %w", err))
	}
	return u, nil
}

// UpdateStatus replaces the acting user's status line.
func (s *UserService) UpdateStatus(ctx context.Context, id auth.Identity, status string) (*models.User, error) {
	if !id.Authenticated {
		return nil, common.NewUnauthenticated(msgNotAuthenticated)
	}

	var c checks
	c.rule("status", strings.TrimSpace(status), "required", "Status is empty!")
	if err := c.err(); err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).UpdateStatus(ctx, id.UserID, status)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFound(msgUserNotFound)
		}
		return nil, common.NewInternal(fmt.Errorf("error updating status: %w", err))
	}
	return u, nil
}
