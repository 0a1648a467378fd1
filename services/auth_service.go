package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ticket-resale/internal/status"
	"ticket-resale/models"
	"ticket-resale/monitoring"
	"ticket-resale/security"
	"ticket-resale/services/notify"
	"ticket-resale/utils"

	"golang.org/x/crypto/bcrypt"
)

const (
	PurposeSignup = "signup"
	PurposeLogin  = "login"
)

// ChallengeStore holds the live OTP record per phone. Satisfied by
// store.ChallengeStore.
type ChallengeStore interface {
	Put(ctx context.Context, ch models.Challenge) error
	Get(ctx context.Context, phone string) (*models.Challenge, error)
}

// UserAccounts is the slice of the user store the verifier needs.
type UserAccounts interface {
	Create(ctx context.Context, name, email, phone, upiID, role string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthOptions carries the injected challenge policy.
type AuthOptions struct {
	OTPExpiry time.Duration

	// Fixed-code override for a designated test account. Empty disables
	// it; Production forces it off regardless.
	TestPhone  string
	TestCode   string
	TestExpiry time.Duration
	Production bool
}

type AuthService struct {
	users      UserAccounts
	challenges ChallengeStore
	tokens     *security.TokenManager
	notifier   notify.Notifier
	opts       AuthOptions

	// code generation, overridable in tests
	generate func(length int) (string, error)
}

func NewAuthService(users UserAccounts, challenges ChallengeStore, tokens *security.TokenManager, notifier notify.Notifier, opts AuthOptions) *AuthService {
	if opts.OTPExpiry <= 0 {
		opts.OTPExpiry = 5 * time.Minute
	}
	if opts.TestExpiry <= 0 {
		opts.TestExpiry = 10 * time.Minute
	}
	return &AuthService{
		users:      users,
		challenges: challenges,
		tokens:     tokens,
		notifier:   notifier,
		opts:       opts,
		generate:   utils.GenerateOTP,
	}
}

// RequestChallenge issues a fresh one-time code for signup or login,
// overwriting any live record for the phone. The code goes out through
// the notifier; delivery failure is logged and not surfaced.
func (s *AuthService) RequestChallenge(ctx context.Context, phone, purpose string) error {
	if purpose == PurposeLogin {
		if _, err := s.users.FindByPhone(ctx, phone); err != nil {
			return err
		}
	}

	code, expiry, err := s.issueCode(phone)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	if err := s.challenges.Put(ctx, models.Challenge{
		PhoneNumber: phone,
		CodeHash:    hash,
		ExpiresAt:   time.Now().Add(expiry),
	}); err != nil {
		return err
	}

	monitoring.TrackOTPRequest(purpose)

	if err := s.notifier.SendOTP(ctx, phone, code); err != nil {
		slog.Error("otp dispatch failed", "phone", phone, "error", err)
	}
	return nil
}

func (s *AuthService) issueCode(phone string) (string, time.Duration, error) {
	if s.opts.TestPhone != "" && phone == s.opts.TestPhone && !s.opts.Production {
		return s.opts.TestCode, s.opts.TestExpiry, nil
	}

	code, err := s.generate(6)
	return code, s.opts.OTPExpiry, err
}

type SignupInput struct {
	Name  string
	Email string
	Phone string
	UpiID string
	Code  string
}

// Signup verifies phone control and creates the account. The challenge
// record is read-checked, not consumed: it stays valid until expiry or
// until a later request overwrites it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (string, error) {
	if _, err := s.users.FindByPhone(ctx, in.Phone); err == nil {
		return "", status.ErrPhoneRegistered
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return "", status.ErrEmailRegistered
	}

	if err := s.verifyChallenge(ctx, in.Phone, in.Code); err != nil {
		return "", err
	}

	user, err := s.users.Create(ctx, in.Name, in.Email, in.Phone, in.UpiID, models.RoleUser)
	if err != nil {
		return "", err
	}

	return s.tokens.Issue(user.ID, user.Role)
}

// Login validates the challenge and issues a token carrying the user's
// persisted role.
func (s *AuthService) Login(ctx context.Context, phone, code string) (string, error) {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return "", err
	}

	if err := s.verifyChallenge(ctx, phone, code); err != nil {
		return "", err
	}

	return s.tokens.Issue(user.ID, user.Role)
}

func (s *AuthService) verifyChallenge(ctx context.Context, phone, code string) error {
	record, err := s.challenges.Get(ctx, phone)
	if err != nil {
		return err
	}
	if time.Now().After(record.ExpiresAt) {
		return status.ErrChallengeInvalid
	}
	if bcrypt.CompareHashAndPassword(record.CodeHash, []byte(code)) != nil {
		return status.ErrChallengeMismatch
	}
	return nil
}
