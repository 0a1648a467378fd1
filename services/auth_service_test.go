package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ticket-resale/internal/status"
	"ticket-resale/models"
	"ticket-resale/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memChallenges struct {
	records map[string]models.Challenge
}

func newMemChallenges() *memChallenges {
	return &memChallenges{records: make(map[string]models.Challenge)}
}

func (m *memChallenges) Put(_ context.Context, ch models.Challenge) error {
	m.records[ch.PhoneNumber] = ch
	return nil
}

func (m *memChallenges) Get(_ context.Context, phone string) (*models.Challenge, error) {
	ch, ok := m.records[phone]
	if !ok {
		return nil, status.ErrChallengeInvalid
	}
	return &ch, nil
}

type memUsers struct {
	byPhone map[string]*models.User
	byEmail map[string]*models.User
	next    int
}

func newMemUsers() *memUsers {
	return &memUsers{
		byPhone: make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (m *memUsers) Create(_ context.Context, name, email, phone, upiID, role string) (*models.User, error) {
	if _, ok := m.byPhone[phone]; ok {
		return nil, status.ErrPhoneRegistered
	}
	if _, ok := m.byEmail[email]; ok {
		return nil, status.ErrEmailRegistered
	}
	m.next++
	user := &models.User{
		ID:          fmt.Sprintf("user-%d", m.next),
		Name:        name,
		Email:       email,
		PhoneNumber: phone,
		UpiID:       upiID,
		Role:        role,
	}
	m.byPhone[phone] = user
	m.byEmail[email] = user
	return user, nil
}

func (m *memUsers) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	if u, ok := m.byPhone[phone]; ok {
		return u, nil
	}
	return nil, status.ErrUserNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, status.ErrUserNotFound
}

type otpNotifier struct {
	lastPhone string
	lastCode  string
}

func (n *otpNotifier) SendOTP(_ context.Context, phone, code string) error {
	n.lastPhone = phone
	n.lastCode = code
	return nil
}

func (n *otpNotifier) PaymentSettled(_ context.Context, _, _, _ string) error { return nil }

func newAuthFixture(opts AuthOptions) (*AuthService, *memUsers, *memChallenges, *otpNotifier, *security.TokenManager) {
	users := newMemUsers()
	challenges := newMemChallenges()
	notifier := &otpNotifier{}
	tokens := security.NewTokenManager("test-secret", time.Hour)
	service := NewAuthService(users, challenges, tokens, notifier, opts)
	return service, users, challenges, notifier, tokens
}

func TestAuthService_SignupFlow(t *testing.T) {
	service, _, _, notifier, tokens := newAuthFixture(AuthOptions{})
	ctx := context.Background()

	require.NoError(t, service.RequestChallenge(ctx, "9876543210", PurposeSignup))
	require.Len(t, notifier.lastCode, 6)
	assert.Equal(t, "9876543210", notifier.lastPhone)

	token, err := service.Signup(ctx, SignupInput{
		Name:  "Asha",
		Email: "asha@example.com",
		Phone: "9876543210",
		Code:  notifier.lastCode,
	})
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.NotEmpty(t, claims.UserID)
}

func TestAuthService_Signup_WrongCode(t *testing.T) {
	service, _, _, _, _ := newAuthFixture(AuthOptions{})
	ctx := context.Background()

	require.NoError(t, service.RequestChallenge(ctx, "9876543210", PurposeSignup))

	_, err := service.Signup(ctx, SignupInput{
		Name:  "Asha",
		Email: "asha@example.com",
		Phone: "9876543210",
		Code:  "000000",
	})
	assert.ErrorIs(t, err, status.ErrChallengeMismatch)
}

func TestAuthService_Signup_NoChallenge(t *testing.T) {
	service, _, _, _, _ := newAuthFixture(AuthOptions{})

	_, err := service.Signup(context.Background(), SignupInput{
		Name:  "Asha",
		Email: "asha@example.com",
		Phone: "9876543210",
		Code:  "123456",
	})
	assert.ErrorIs(t, err, status.ErrChallengeInvalid)
}

func TestAuthService_Signup_ExpiredChallenge(t *testing.T) {
	service, _, challenges, notifier, _ := newAuthFixture(AuthOptions{})
	ctx := context.Background()

	require.NoError(t, service.RequestChallenge(ctx, "9876543210", PurposeSignup))

	record := challenges.records["9876543210"]
	record.ExpiresAt = time.Now().Add(-time.Minute)
	challenges.records["9876543210"] = record

	_, err := service.Signup(ctx, SignupInput{
		Name:  "Asha",
		Email: "asha@example.com",
		Phone: "9876543210",
		Code:  notifier.lastCode,
	})
	assert.ErrorIs(t, err, status.ErrChallengeInvalid)
}

func TestAuthService_RequestChallenge_OverwriteInvalidatesOldCode(t *testing.T) {
	service, _, _, notifier, _ := newAuthFixture(AuthOptions{})
	ctx := context.Background()

	require.NoError(t, service.RequestChallenge(ctx, "9876543210", PurposeSignup))
	firstCode := notifier.lastCode

	require.NoError(t, service.RequestChallenge(ctx, "9876543210", PurposeSignup))
	secondCode := notifier.lastCode

	if firstCode != secondCode {
		_, err := service.Signup(ctx, SignupInput{
			Name:  "Asha",
			Email: "asha@example.com",
			Phone: "9876543210",
			Code:  firstCode,
		})
		assert.ErrorIs(t, err, status.ErrChallengeMismatch)
	}

	token, err := service.Signup(ctx, SignupInput{
		Name:  "Asha",
		Email: "asha@example.com",
		Phone: "9876543210",
		Code:  secondCode,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAuthService_Signup_Conflicts(t *testing.T) {
	service, users, _, notifier, _ := newAuthFixture(AuthOptions{})
	ctx := context.Background()

	_, err := users.Create(ctx, "Taken", "taken@example.com", "9876543210", "", models.RoleUser)
	require.NoError(t, err)

	require.NoError(t, service.RequestChallenge(ctx, "1111111111", PurposeSignup))

	_, err = service.Signup(ctx, SignupInput{
		Name:  "Asha",
		Email: "asha@example.com",
		Phone: "9876543210",
		Code:  notifier.lastCode,
	})
	assert.ErrorIs(t, err, status.ErrPhoneRegistered)

	_, err = service.Signup(ctx, SignupInput{
		Name:  "Asha",
		Email: "taken@example.com",
		Phone: "1111111111",
		Code:  notifier.lastCode,
	})
	assert.ErrorIs(t, err, status.ErrEmailRegistered)
}

func TestAuthService_Login_CarriesPersistedRole(t *testing.T) {
	service, users, _, notifier, tokens := newAuthFixture(AuthOptions{})
	ctx := context.Background()

	_, err := users.Create(ctx, "Root", "root@example.com", "9999999999", "", models.RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, service.RequestChallenge(ctx, "9999999999", PurposeLogin))

	token, err := service.Login(ctx, "9999999999", notifier.lastCode)
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthService_Login_UnknownPhone(t *testing.T) {
	service, _, _, _, _ := newAuthFixture(AuthOptions{})

	err := service.RequestChallenge(context.Background(), "0000000000", PurposeLogin)
	assert.ErrorIs(t, err, status.ErrUserNotFound)
}

func TestAuthService_RequestChallenge_GeneratorFailure(t *testing.T) {
	service, _, challenges, notifier, _ := newAuthFixture(AuthOptions{})
	service.generate = func(int) (string, error) {
		return "", errors.New("entropy source unavailable")
	}

	err := service.RequestChallenge(context.Background(), "9876543210", PurposeSignup)
	require.Error(t, err)

	// No challenge stored, nothing dispatched: an empty code must never
	// become a verifiable record.
	assert.Empty(t, challenges.records)
	assert.Empty(t, notifier.lastCode)
}

func TestAuthService_TestPhoneOverride(t *testing.T) {
	opts := AuthOptions{TestPhone: "7777777777", TestCode: "424242"}
	service, _, _, notifier, _ := newAuthFixture(opts)
	ctx := context.Background()

	require.NoError(t, service.RequestChallenge(ctx, "7777777777", PurposeSignup))
	assert.Equal(t, "424242", notifier.lastCode)

	// Other numbers still get random codes.
	require.NoError(t, service.RequestChallenge(ctx, "9876543210", PurposeSignup))
	assert.Len(t, notifier.lastCode, 6)
}

func TestAuthService_TestPhoneOverride_RefusedInProduction(t *testing.T) {
	opts := AuthOptions{TestPhone: "7777777777", TestCode: "424242", Production: true}
	service, _, challenges, notifier, _ := newAuthFixture(opts)
	ctx := context.Background()

	require.NoError(t, service.RequestChallenge(ctx, "7777777777", PurposeSignup))
	require.Len(t, notifier.lastCode, 6)

	// The default expiry applies, not the extended test window.
	record := challenges.records["7777777777"]
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), record.ExpiresAt, 30*time.Second)
}
