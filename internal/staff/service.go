package staff

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightwave/profiler/internal/token"
)

// ErrInvalidCredentials is returned when login fails. Unknown emails and
// wrong passwords are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidSession is returned when a session token does not resolve to
// an active staff account.
var ErrInvalidSession = errors.New("invalid or expired session")

const passwordLength = 8

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Service provides staff authentication and account management. Session
// tokens reuse the capability token codec with the account id as subject.
type Service struct {
	repo       Repository
	codec      *token.Codec
	bcryptCost int
	sessionTTL time.Duration
}

// NewService creates a new staff Service.
func NewService(repo Repository, codec *token.Codec, bcryptCost int, sessionTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		codec:      codec,
		bcryptCost: bcryptCost,
		sessionTTL: sessionTTL,
	}
}

// Login verifies the email/password pair and mints a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("looking up account: %w", err)
	}

	if !account.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	tok, err := s.codec.Issue(account.ID.String(), nil, s.sessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issuing session token: %w", err)
	}

	return tok, account, nil
}

// Resolve maps a session token back to its staff account.
func (s *Service) Resolve(ctx context.Context, sessionToken string) (*Account, error) {
	claims, err := s.codec.Verify(sessionToken)
	if err != nil {
		return nil, ErrInvalidSession
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidSession
	}

	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("loading session account: %w", err)
	}
	if !account.IsActive {
		return nil, ErrInvalidSession
	}

	return account, nil
}

// CreateAccount registers a new staff account with a generated password.
// The plaintext password is returned exactly once; the account must change
// it on first login.
func (s *Service) CreateAccount(ctx context.Context, email string, superuser bool) (*Account, string, error) {
	password, err := generatePassword()
	if err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	account := &Account{
		Email:                 email,
		PasswordHash:          string(hash),
		IsActive:              true,
		IsVerified:            false,
		IsSuperuser:           superuser,
		ChangePasswordOnLogin: true,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, "", err
	}

	return account, password, nil
}

// ResetPassword replaces an account's password with a generated one and
// forces a change on next login. Returns the plaintext password once.
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID) (*Account, string, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	password, err := generatePassword()
	if err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, string(hash), true); err != nil {
		return nil, "", err
	}
	account.ChangePasswordOnLogin = true

	return account, password, nil
}

// ChangePassword sets a caller-chosen password and clears the forced-change
// flag. Any password change clears the flag, including voluntary ones.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, id, string(hash), false)
}

// BootstrapAdmin creates the initial superuser when the table is empty and
// logs the generated password once. Returns the plaintext password, or ""
// when accounts already exist.
func (s *Service) BootstrapAdmin(ctx context.Context, email string) (string, error) {
	count, err := s.repo.CountAll(ctx)
	if err != nil {
		return "", fmt.Errorf("counting staff accounts: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	account, password, err := s.CreateAccount(ctx, email, true)
	if err != nil {
		return "", fmt.Errorf("creating admin account: %w", err)
	}

	slog.Info("admin account created", "email", account.Email, "password", password)

	return password, nil
}

func generatePassword() (string, error) {
	buf := make([]byte, passwordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
