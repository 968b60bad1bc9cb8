package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/abenov/accounts-server/internal/logger"
	"github.com/abenov/accounts-server/internal/model"
)

// Identity orchestrates account lifecycle operations: signup, login,
// password recovery, profile updates, and avatar storage.
type Identity struct {
	users    model.UserStore
	assets   model.AssetStore
	resolver model.AssetResolver
	notifier model.Notifier
	tokens   model.TokenIssuer
	hasher   model.Hasher
	codes    model.CodeGenerator
	logger   *logger.Logger
}

func NewIdentity(
	users model.UserStore,
	assets model.AssetStore,
	resolver model.AssetResolver,
	notifier model.Notifier,
	tokens model.TokenIssuer,
	hasher model.Hasher,
	codes model.CodeGenerator,
	logger *logger.Logger,
) *Identity {
	return &Identity{
		users:    users,
		assets:   assets,
		resolver: resolver,
		notifier: notifier,
		tokens:   tokens,
		hasher:   hasher,
		codes:    codes,
		logger:   logger,
	}
}

// Signup registers a new account. All identity fields already taken by
// existing records are collected and reported together, not just the first
// hit. The store's unique constraints back this check, so a race between two
// concurrent signups still cannot commit twice.
func (s *Identity) Signup(ctx context.Context, params model.SignupParams) (model.UserView, error) {
	s.logger.Debug("Identity service: starting signup",
		"username", params.Username)

	var existingFields []string

	byUsername, err := s.users.FindByUsername(ctx, params.Username)
	if err != nil {
		return model.UserView{}, fmt.Errorf("failed to find users by username: %w", err)
	}
	if len(byUsername) > 0 {
		existingFields = append(existingFields, "Username")
	}

	byEmail, err := s.users.FindByEmail(ctx, params.Email)
	if err != nil {
		return model.UserView{}, fmt.Errorf("failed to find users by email: %w", err)
	}
	if len(byEmail) > 0 {
		existingFields = append(existingFields, "Email")
	}

	byMobile, err := s.users.FindByMobileNumber(ctx, params.MobileNumber)
	if err != nil {
		return model.UserView{}, fmt.Errorf("failed to find users by mobile number: %w", err)
	}
	if len(byMobile) > 0 {
		existingFields = append(existingFields, "Mobile number")
	}

	if len(existingFields) > 0 {
		s.logger.Info("Identity service: signup conflicts with existing accounts",
			"username", params.Username,
			"fields", strings.Join(existingFields, ", "))
		return model.UserView{}, &model.ConflictError{Fields: existingFields}
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return model.UserView{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Username:     params.Username,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
		MobileNumber: params.MobileNumber,
		Role:         params.Role,
		Phone:        params.Phone,
		Address:      params.Address,
		Gender:       params.Gender,
		DOB:          params.DOB,
		Status:       params.Status,
	}

	savedUser, err := s.users.Create(ctx, user)
	if err != nil {
		var conflict *model.ConflictError
		if errors.As(err, &conflict) {
			return model.UserView{}, conflict
		}
		s.logger.Error("Identity service: failed to create user",
			"username", params.Username,
			"error", err.Error())
		return model.UserView{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Identity service: signup completed",
		"username", savedUser.Username,
		"user_id", savedUser.ID)

	return savedUser.View(), nil
}

// Login authenticates an identifier interpreted as username or email.
// Exactly one account must match; more than one is a data-integrity signal
// surfaced as an ambiguous-credentials failure rather than silently picking
// one.
func (s *Identity) Login(ctx context.Context, identifier, password string) (model.LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	password = strings.TrimSpace(password)

	users, err := s.users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("failed to find users by username or email: %w", err)
	}

	switch {
	case len(users) == 0:
		return model.LoginResult{}, &model.CredentialsError{Reason: model.ReasonNotFound}
	case len(users) > 1:
		s.logger.Error("Identity service: multiple accounts match login identifier",
			"identifier", identifier,
			"count", len(users))
		return model.LoginResult{}, &model.CredentialsError{Reason: model.ReasonAmbiguous}
	}

	user := users[0]
	if !s.hasher.Verify(password, user.PasswordHash) {
		return model.LoginResult{}, &model.CredentialsError{Reason: model.ReasonBadPassword}
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("Identity service: login completed",
		"username", user.Username,
		"user_id", user.ID)

	return model.LoginResult{Token: token, User: user.View()}, nil
}

// ForgotPassword issues a one-time code and mails it to the account's email
// address. The recovery endpoints answer conversationally: blank input and
// unknown identifiers come back as messages, not failures.
func (s *Identity) ForgotPassword(ctx context.Context, identifier string) (string, error) {
	if strings.TrimSpace(identifier) == "" {
		return "Email cannot be empty.", nil
	}

	user, err := s.users.GetFirstByEmailOrMobileNumber(ctx, identifier)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Sprintf("User not found with email: %s", identifier), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user by email or mobile number: %w", err)
	}

	code, err := s.codes.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time code: %w", err)
	}

	user.OTP = code
	if _, err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("failed to store one-time code: %w", err)
	}

	if err := s.notifier.Send(ctx, user.Email, "Your OTP for Password Reset", "Your OTP is: "+code); err != nil {
		return "", fmt.Errorf("failed to send one-time code: %w", err)
	}

	s.logger.Info("Identity service: one-time code issued",
		"user_id", user.ID)

	return fmt.Sprintf("OTP sent to %s", user.Email), nil
}

// VerifyOTP checks a submitted code against the stored one. A matching code
// is cleared immediately so it cannot be used twice; a mismatch leaves the
// stored code intact for a fresh correct submission.
func (s *Identity) VerifyOTP(ctx context.Context, identifier, code string) (string, error) {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(code) == "" {
		return "Email and OTP cannot be empty.", nil
	}

	user, err := s.users.GetFirstByEmailOrMobileNumber(ctx, identifier)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Sprintf("User not found with email: %s", identifier), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user by email or mobile number: %w", err)
	}

	if user.OTP == "" || code != user.OTP {
		return "Invalid OTP.", nil
	}

	user.OTP = ""
	if _, err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("failed to clear one-time code: %w", err)
	}

	s.logger.Info("Identity service: one-time code verified",
		"user_id", user.ID)

	return "OTP verified successfully.", nil
}

// ResetPassword overwrites the stored hash with one derived from the new
// password. It is an independent call: no prior VerifyOTP is required at
// this layer, sequencing is the caller's responsibility.
func (s *Identity) ResetPassword(ctx context.Context, identifier, newPassword string) (string, error) {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(newPassword) == "" {
		return "Email and new password cannot be empty.", nil
	}

	user, err := s.users.GetFirstByEmailOrMobileNumber(ctx, identifier)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Sprintf("User not found with email: %s", identifier), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user by email or mobile number: %w", err)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = passwordHash
	if _, err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("failed to store new password: %w", err)
	}

	s.logger.Info("Identity service: password reset",
		"user_id", user.ID)

	return "Password reset successfully.", nil
}

// GetUser returns the view of a single account.
func (s *Identity) GetUser(ctx context.Context, id int64) (model.UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.UserView{}, model.ErrNotFound
	}
	if err != nil {
		return model.UserView{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user.View(), nil
}

// ListUsers returns views of all accounts.
func (s *Identity) ListUsers(ctx context.Context) ([]model.UserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	views := make([]model.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, user.View())
	}
	return views, nil
}

// Update overwrites the mutable profile fields. The orchestrator does not
// re-run the signup pre-check here; the store's unique constraints still
// reject a colliding username, email, or mobile number with ConflictError.
func (s *Identity) Update(ctx context.Context, id int64, params model.UpdateUserParams) (model.UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.UserView{}, model.ErrNotFound
	}
	if err != nil {
		return model.UserView{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	user.Username = params.Username
	user.Name = params.Name
	user.Email = params.Email
	user.MobileNumber = params.MobileNumber
	user.DOB = params.DOB
	user.Gender = params.Gender

	if params.Password != "" {
		passwordHash, err := s.hasher.Hash(params.Password)
		if err != nil {
			return model.UserView{}, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = passwordHash
	}

	savedUser, err := s.users.Update(ctx, user)
	if err != nil {
		var conflict *model.ConflictError
		if errors.As(err, &conflict) {
			return model.UserView{}, conflict
		}
		return model.UserView{}, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("Identity service: profile updated",
		"user_id", savedUser.ID)

	return savedUser.View(), nil
}

// Delete removes the account permanently. Associated assets are not cleaned
// up; orphaned blobs are accepted.
func (s *Identity) Delete(ctx context.Context, id int64) (string, error) {
	exists, err := s.users.ExistsByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return "", model.ErrNotFound
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return "", fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("Identity service: user deleted",
		"user_id", id)

	return fmt.Sprintf("User with id %d has been deleted successfully.", id), nil
}

// UploadImage stores the avatar through the configured backend and records
// the returned locator. The filename argument is used only to recover an
// extension; the stored name is randomized per upload.
func (s *Identity) UploadImage(ctx context.Context, id int64, data []byte, filename string) (model.UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.UserView{}, model.ErrNotFound
	}
	if err != nil {
		return model.UserView{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	if len(data) == 0 {
		return model.UserView{}, model.ErrEmptyUpload
	}

	name := fmt.Sprintf("%d_%s%s", id, uuid.NewString(), filepath.Ext(filename))

	locator, err := s.assets.Upload(ctx, name, data)
	if err != nil {
		s.logger.Error("Identity service: avatar upload failed",
			"user_id", id,
			"error", err.Error())
		return model.UserView{}, err
	}

	user.Image = locator
	savedUser, err := s.users.Update(ctx, user)
	if err != nil {
		return model.UserView{}, fmt.Errorf("failed to store image locator: %w", err)
	}

	s.logger.Info("Identity service: avatar uploaded",
		"user_id", id,
		"locator", locator)

	return savedUser.View(), nil
}

// GetImage returns the raw avatar bytes. Resolution branches on the stored
// locator's shape, so rows written under a previous backend keep working.
func (s *Identity) GetImage(ctx context.Context, id int64) ([]byte, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	if user.Image == "" {
		return nil, model.ErrNoImage
	}

	return s.resolver.Fetch(ctx, user.Image)
}
