package service

import (
	"context"
	"strings"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/repository"
	"cluster-ledger-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Login(ctx context.Context, phone, password string) (string, *domain.User, error) {
	logger.EnterMethod("authService.Login", "phone", phone)

	user, err := s.userRepo.GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if domain.IsNotFound(err) {
			logger.ExitMethodWithError("authService.Login", domain.ErrInvalidCredentials, "phone", phone)
			return "", nil, domain.ErrInvalidCredentials
		}
		logger.ExitMethodWithError("authService.Login", err, "phone", phone)
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.ExitMethodWithError("authService.Login", domain.ErrInvalidCredentials, "userID", user.ID)
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err, "userID", user.ID)
		return "", nil, err
	}

	logger.ExitMethod("authService.Login", "userID", user.ID, "role", user.Role)
	return token, user.Redacted(), nil
}

func (s *authService) ChangePassword(ctx context.Context, actor domain.Actor, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return &domain.ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, actor.UserID, hash); err != nil {
		return err
	}
	logger.Info("Password changed", "userID", actor.UserID)
	return nil
}

func (s *authService) ChangePhone(ctx context.Context, actor domain.Actor, newPhone string) error {
	newPhone = strings.TrimSpace(newPhone)
	if newPhone == "" {
		return &domain.ValidationError{Field: "phone_number", Reason: "is required"}
	}
	if err := s.userRepo.UpdatePhone(ctx, actor.UserID, newPhone); err != nil {
		return err
	}
	logger.Info("Phone number changed", "userID", actor.UserID)
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
