package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for users. Lookups by a unique
// field return slices on purpose: duplicated rows are a data-integrity signal
// the service surfaces instead of silently picking one. Create and Update must
// map store-level unique violations to ConflictError.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	FindByUsername(ctx context.Context, username string) ([]User, error)
	FindByEmail(ctx context.Context, email string) ([]User, error)
	FindByMobileNumber(ctx context.Context, mobileNumber string) ([]User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) ([]User, error)
	GetFirstByEmailOrMobileNumber(ctx context.Context, identifier string) (User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id int64) error
}

// User represents a stored account with credential material. PasswordHash is
// write-only: it never leaves the service layer, views are built with View.
// OTP and Image are empty strings when unset.
type User struct {
	ID           int64
	Username     string
	Name         string
	Email        string
	PasswordHash string
	MobileNumber string
	Role         string
	Phone        string
	Address      string
	Gender       string
	DOB          string
	Status       string
	OTP          string
	Image        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserView is the outward representation of a user. It carries no credential
// material.
type UserView struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Gender       string `json:"gender"`
	DOB          string `json:"dob"`
	Status       string `json:"status"`
	Image        string `json:"image,omitempty"`
}

// View strips credential and recovery material from the user.
func (u User) View() UserView {
	return UserView{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		Role:         u.Role,
		Phone:        u.Phone,
		Address:      u.Address,
		Gender:       u.Gender,
		DOB:          u.DOB,
		Status:       u.Status,
		Image:        u.Image,
	}
}

// SignupParams holds the candidate fields for a new account.
type SignupParams struct {
	Username     string
	Name         string
	Email        string
	Password     string
	MobileNumber string
	Role         string
	Phone        string
	Address      string
	Gender       string
	DOB          string
	Status       string
}

// UpdateUserParams holds the mutable fields of a profile update. An empty
// Password leaves the stored hash untouched.
type UpdateUserParams struct {
	Username     string
	Name         string
	Email        string
	MobileNumber string
	DOB          string
	Gender       string
	Password     string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}
