package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"quizo-service/internal/domain"
)

const passwordSpecials = "@#$%^&+=!"

// TokenIssuer signs access tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(u domain.User) (token string, expiresAt time.Time, err error)
}

// RegisterInput is the account sign-up payload.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=20"`
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,quizpassword"`
}

type passwordInput struct {
	Password string `validate:"required,quizpassword"`
}

// Token is handed to a client after login or registration.
type Token struct {
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        domain.User `json:"user"`
}

// AccountService handles registration, login and password changes.
type AccountService struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	validate *validator.Validate
	now      func() time.Time
}

func NewAccountService(users UserStore, hasher PasswordHasher, tokens TokenIssuer) *AccountService {
	v := validator.New()
	_ = v.RegisterValidation("quizpassword", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	return &AccountService{users: users, hasher: hasher, tokens: tokens, validate: v, now: time.Now}
}

// ValidPassword enforces 8-16 characters with at least one letter, one digit
// and one of @#$%^&+=!.
func ValidPassword(pw string) bool {
	n := len([]rune(pw))
	if n < 8 || n > 16 {
		return false
	}
	var letter, digit, special bool
	for _, r := range pw {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r < unicode.MaxASCII && unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return letter && digit && special
}

// Register creates a player account and logs it in.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (Token, error) {
	return s.create(ctx, in, domain.RoleUser)
}

// CreateAdmin creates an administrator account.
func (s *AccountService) CreateAdmin(ctx context.Context, in RegisterInput) (Token, error) {
	return s.create(ctx, in, domain.RoleAdmin)
}

func (s *AccountService) create(ctx context.Context, in RegisterInput, role string) (Token, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return Token{}, fmt.Errorf("%w: %s", domain.ErrInvalidInput, describe(err))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Token{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return Token{}, err
	}
	return s.issue(user)
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.users.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return Token{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return Token{}, domain.ErrInvalidCredentials
	}
	return s.issue(user)
}

// ChangePassword replaces the password after verifying the old one.
func (s *AccountService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, oldPassword); err != nil {
		return domain.ErrInvalidCredentials
	}
	if err := s.validate.Struct(passwordInput{Password: newPassword}); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, describe(err))
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.Email, hash)
}

// User looks up an account by email.
func (s *AccountService) User(ctx context.Context, email string) (domain.User, error) {
	return s.users.UserByEmail(ctx, email)
}

func (s *AccountService) issue(user domain.User) (Token, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}
	return Token{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, strings.ToLower(fe.Field())+" is required")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", strings.ToLower(fe.Field()), fe.Param()))
		case "email":
			parts = append(parts, "email is not valid")
		case "quizpassword":
			parts = append(parts, "password must be 8-16 characters with a letter, a digit and one of "+passwordSpecials)
		default:
			parts = append(parts, strings.ToLower(fe.Field())+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
