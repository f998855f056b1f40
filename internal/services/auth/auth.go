package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"
	"github.com/eternal-silence00/Black-Needle/internal/lib/logger/sl"
	"github.com/eternal-silence00/Black-Needle/internal/repository"
	"github.com/eternal-silence00/Black-Needle/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExist          = errors.New("user already exist")
)

type Auth struct {
	log  *slog.Logger
	repo repository.UserRepository
}

func New(log *slog.Logger, repo repository.UserRepository) *Auth {
	return &Auth{
		log:  log,
		repo: repo,
	}
}

// Login verifies the credentials and returns the stored user. Unknown
// username and wrong password are indistinguishable to the caller, and
// bcrypt's comparison does not depend on where the mismatch occurs.
func (a *Auth) Login(ctx context.Context, username, password string) (models.User, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("attempting to login user")

	user, err := a.repo.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))

			return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	log.Info("user logged in successfully")

	return user, nil
}

// RegisterNewUser hashes the password and stores the user. The admin
// flag always starts false; it is flipped out of band.
func (a *Auth) RegisterNewUser(ctx context.Context, username, password string) (uuid.UUID, error) {
	const op = "auth.RegisterNewUser"

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("register user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     username,
		PassHash:     passHash,
		IsAdmin:      false,
		RegisteredAt: time.Now().UTC(),
	}

	id, err := a.repo.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exist", sl.Err(err))

			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrUserExist)
		}

		log.Error("failed to save user", sl.Err(err))

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered")

	return id, nil
}

// IsAdmin reads the current flag from the users row; the admin gate
// calls this per request instead of trusting anything cached in the
// session.
func (a *Auth) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	const op = "auth.IsAdmin"

	isAdmin, err := a.repo.IsAdmin(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return isAdmin, nil
}
