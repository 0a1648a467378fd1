package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ticket-resale/internal/status"
	"ticket-resale/models"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
)

type UserStore struct {
	db *dbx.DB
}

func NewUserStore(db *dbx.DB) *UserStore {
	return &UserStore{db: db}
}

// Create registers a new user. Phone and email uniqueness is checked
// up front so callers get the specific conflict, with the UNIQUE
// constraints as the concurrent-signup backstop.
func (s *UserStore) Create(ctx context.Context, name, email, phone, upiID, role string) (*models.User, error) {
	if existing, err := s.FindByPhone(ctx, phone); err == nil && existing != nil {
		return nil, status.ErrPhoneRegistered
	}
	if existing, err := s.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, status.ErrEmailRegistered
	}

	now := time.Now().UTC().Format(time.RFC3339)
	user := &models.User{
		ID:          uuid.NewString(),
		Name:        name,
		Email:       email,
		PhoneNumber: phone,
		UpiID:       upiID,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Insert("users", dbx.Params{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"phone_number": user.PhoneNumber,
		"upi_id":       user.UpiID,
		"role":         user.Role,
		"created_at":   user.CreatedAt,
		"updated_at":   user.UpdatedAt,
	}).WithContext(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, dbx.HashExp{"id": id})
}

func (s *UserStore) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.findOne(ctx, dbx.HashExp{"phone_number": phone})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, dbx.HashExp{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, cond dbx.HashExp) (*models.User, error) {
	var u models.User
	err := s.db.Select().From("users").Where(cond).WithContext(ctx).One(&u)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, status.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// UpdateProfile changes the mutable profile fields. Empty values leave
// the current value in place.
func (s *UserStore) UpdateProfile(ctx context.Context, id, name, upiID string) error {
	params := dbx.Params{"updated_at": time.Now().UTC().Format(time.RFC3339)}
	if name != "" {
		params["name"] = name
	}
	if upiID != "" {
		params["upi_id"] = upiID
	}

	res, err := s.db.Update("users", params, dbx.HashExp{"id": id}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return status.ErrUserNotFound
	}
	return nil
}
