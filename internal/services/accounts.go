package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/harentsoaR/docbook-api/internal/models"
	"github.com/harentsoaR/docbook-api/internal/store"
	"github.com/harentsoaR/docbook-api/internal/utils"
)

const minPasswordLen = 8

type AccountService struct {
	store         store.Store
	tokens        *utils.TokenManager
	adminEmail    string
	adminPassword string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return newError(KindValidation, "Invalid email")
	}
	if len(password) < minPasswordLen {
		return newError(KindValidation, fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
	return nil
}

// RegisterUser creates a patient account and returns its token.
func (s *AccountService) RegisterUser(ctx context.Context, name, email, password string) (string, error) {
	name, email = strings.TrimSpace(name), normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return "", newError(KindValidation, "Please fill in all fields")
	}
	if err := validateCredentials(email, password); err != nil {
		return "", err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	user := models.NewUser(name, email, hash)
	if err := s.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return "", newError(KindConflict, MsgEmailTaken)
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	return s.tokens.Generate(user.ID.Hex(), models.RoleUser)
}

func (s *AccountService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", newError(KindNotFound, MsgUserNotFound)
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return "", newError(KindUnauthorized, MsgInvalidPassword)
	}
	return s.tokens.Generate(user.ID.Hex(), models.RoleUser)
}

func (s *AccountService) LoginDoctor(ctx context.Context, email, password string) (string, error) {
	doc, err := s.store.GetDoctorByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", newError(KindUnauthorized, MsgInvalidCredentials)
		}
		return "", fmt.Errorf("find doctor: %w", err)
	}
	if !utils.CheckPasswordHash(password, doc.Password) {
		return "", newError(KindUnauthorized, MsgInvalidCredentials)
	}
	return s.tokens.Generate(doc.ID.Hex(), models.RoleDoctor)
}

// LoginAdmin checks the single configured admin account.
func (s *AccountService) LoginAdmin(email, password string) (string, error) {
	if s.adminEmail == "" || s.adminPassword == "" {
		return "", newError(KindUnauthorized, MsgInvalidCredentials)
	}
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(normalizeEmail(s.adminEmail))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	if !emailOK || !passOK {
		return "", newError(KindUnauthorized, MsgInvalidCredentials)
	}
	return s.tokens.Generate(normalizeEmail(s.adminEmail), models.RoleAdmin)
}

func (s *AccountService) UserProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Password = ""
	return user, nil
}

func (s *AccountService) UpdateUserProfile(ctx context.Context, userID string, upd models.UserProfileUpdate) error {
	upd.Name, upd.Phone = strings.TrimSpace(upd.Name), strings.TrimSpace(upd.Phone)
	if upd.Name == "" || upd.Phone == "" || upd.Dob == "" || upd.Gender == "" {
		return newError(KindValidation, MsgDataMissing)
	}
	if err := s.store.UpdateUserProfile(ctx, userID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(KindNotFound, MsgUserNotFound)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
