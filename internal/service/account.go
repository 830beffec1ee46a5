package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	security "github.com/linemk/storefront/internal/jwt-new"
	"github.com/linemk/storefront/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput данные для регистрации покупателя
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Address  string
}

// Profile — публичная часть учетной записи
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	IsAdmin  bool   `json:"is_admin"`
}

// AccountService регистрирует пользователей, выдает токены и ведет профиль.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (int64, error)
	Login(ctx context.Context, username, password string) (string, error)
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, email, address string) error
	EnsureAdmin(ctx context.Context, in RegisterInput) error
}

type accountService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAccountService(log *slog.Logger, userRepo storage.UserStorage, jwtSecret string, tokenTTL time.Duration) AccountService {
	return &accountService{
		log:       log,
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register создает покупателя. Через регистрацию администратора создать нельзя.
func (s *accountService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	const op = "service.AccountService.Register"
	logger := s.log.With(slog.String("op", op), slog.String("username", in.Username))

	user, err := s.createUser(ctx, in, false)
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			logger.Info("username already taken")
		} else {
			logger.Error("failed to create user", slog.Any("error", err))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user.ID, nil
}

func (s *accountService) createUser(ctx context.Context, in RegisterInput, isAdmin bool) (*models.User, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, &models.User{
		Username: in.Username,
		PassHash: passHash,
		Email:    in.Email,
		Address:  in.Address,
		IsAdmin:  isAdmin,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return user, nil
}

// Login проверяет пароль и возвращает JWT. Неизвестный пользователь и неверный пароль неразличимы.
func (s *accountService) Login(ctx context.Context, username, password string) (string, error) {
	const op = "service.AccountService.Login"
	logger := s.log.With(slog.String("op", op), slog.String("username", username))

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Info("user not found")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Info("invalid password")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := security.NewToken(user, s.jwtSecret, s.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("user logged in", slog.Int64("userID", user.ID))
	return token, nil
}

func (s *accountService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	const op = "service.AccountService.GetProfile"

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		s.log.Error("failed to get user", slog.String("op", op), slog.Int64("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Profile{
		Username: user.Username,
		Email:    user.Email,
		Address:  user.Address,
		IsAdmin:  user.IsAdmin,
	}, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, userID int64, email, address string) error {
	const op = "service.AccountService.UpdateProfile"

	if err := s.userRepo.UpdateUserProfile(ctx, userID, email, address); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		s.log.Error("failed to update profile", slog.String("op", op), slog.Int64("userID", userID), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EnsureAdmin создает администратора при старте, если его еще нет.
// Пустой пароль означает, что администратор не настроен.
func (s *accountService) EnsureAdmin(ctx context.Context, in RegisterInput) error {
	const op = "service.AccountService.EnsureAdmin"
	logger := s.log.With(slog.String("op", op), slog.String("username", in.Username))

	if in.Password == "" {
		logger.Info("admin password not set, skipping")
		return nil
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, in.Username)
	if err == nil {
		if !existing.IsAdmin {
			logger.Warn("user exists but is not an admin")
		}
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.createUser(ctx, in, true)
	if err != nil {
		// создан параллельно другим экземпляром
		if errors.Is(err, ErrDuplicateUsername) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("admin created", slog.Int64("userID", user.ID))
	return nil
}
