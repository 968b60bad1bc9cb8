package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/abenov/accounts-server/internal/hash"
	"github.com/abenov/accounts-server/internal/model"
	"github.com/abenov/accounts-server/internal/testutil"
)

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username string) ([]model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) ([]model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) FindByMobileNumber(ctx context.Context, mobileNumber string) ([]model.User, error) {
	args := m.Called(ctx, mobileNumber)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) FindByUsernameOrEmail(ctx context.Context, identifier string) ([]model.User, error) {
	args := m.Called(ctx, identifier)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) GetFirstByEmailOrMobileNumber(ctx context.Context, identifier string) (model.User, error) {
	args := m.Called(ctx, identifier)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAssetStore mocks the AssetStore interface
type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

// MockAssetResolver mocks the AssetResolver interface
type MockAssetResolver struct {
	mock.Mock
}

func (m *MockAssetResolver) Fetch(ctx context.Context, locator string) ([]byte, error) {
	args := m.Called(ctx, locator)
	return args.Get(0).([]byte), args.Error(1)
}

// MockNotifier mocks the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// MockTokenIssuer mocks the TokenIssuer interface
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(username string) (string, error) {
	args := m.Called(username)
	return args.String(0), args.Error(1)
}

// MockCodeGenerator mocks the CodeGenerator interface
type MockCodeGenerator struct {
	mock.Mock
}

func (m *MockCodeGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

type identityMocks struct {
	users    *MockUserStore
	assets   *MockAssetStore
	resolver *MockAssetResolver
	notifier *MockNotifier
	tokens   *MockTokenIssuer
	codes    *MockCodeGenerator
}

func newIdentity(t *testing.T) (*Identity, identityMocks) {
	t.Helper()
	m := identityMocks{
		users:    &MockUserStore{},
		assets:   &MockAssetStore{},
		resolver: &MockAssetResolver{},
		notifier: &MockNotifier{},
		tokens:   &MockTokenIssuer{},
		codes:    &MockCodeGenerator{},
	}
	s := NewIdentity(m.users, m.assets, m.resolver, m.notifier, m.tokens,
		hash.NewBcrypt(4), m.codes, testutil.MakeNoopLogger())
	return s, m
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	digest, err := hash.NewBcrypt(4).Hash(password)
	require.NoError(t, err)
	return digest
}

func TestIdentity_Signup_Success(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("FindByUsername", mock.Anything, "alice").Return([]model.User{}, nil)
	m.users.On("FindByEmail", mock.Anything, "a@x.com").Return([]model.User{}, nil)
	m.users.On("FindByMobileNumber", mock.Anything, "555").Return([]model.User{}, nil)
	m.users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Username == "alice" && u.PasswordHash != "" && u.PasswordHash != "secret"
	})).Return(model.User{ID: 1, Username: "alice", Email: "a@x.com", MobileNumber: "555", PasswordHash: "digest"}, nil)

	view, err := s.Signup(ctx, model.SignupParams{
		Username: "alice", Email: "a@x.com", MobileNumber: "555", Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.ID)
	assert.Equal(t, "alice", view.Username)
}

func TestIdentity_Signup_CollectsAllConflicts(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	existing := []model.User{{ID: 7}}
	m.users.On("FindByUsername", mock.Anything, "alice").Return(existing, nil)
	m.users.On("FindByEmail", mock.Anything, "a@x.com").Return(existing, nil)
	m.users.On("FindByMobileNumber", mock.Anything, "555").Return(existing, nil)

	_, err := s.Signup(ctx, model.SignupParams{
		Username: "alice", Email: "a@x.com", MobileNumber: "555", Password: "secret",
	})
	var conflict *model.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"Username", "Email", "Mobile number"}, conflict.Fields)
	m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIdentity_Signup_SingleFieldConflict(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("FindByUsername", mock.Anything, "alice").Return([]model.User{{ID: 7}}, nil)
	m.users.On("FindByEmail", mock.Anything, "b@y.com").Return([]model.User{}, nil)
	m.users.On("FindByMobileNumber", mock.Anything, "777").Return([]model.User{}, nil)

	_, err := s.Signup(ctx, model.SignupParams{
		Username: "alice", Email: "b@y.com", MobileNumber: "777", Password: "x",
	})
	var conflict *model.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"Username"}, conflict.Fields)
}

func TestIdentity_Signup_RacingInsertConflict(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("FindByUsername", mock.Anything, "alice").Return([]model.User{}, nil)
	m.users.On("FindByEmail", mock.Anything, "a@x.com").Return([]model.User{}, nil)
	m.users.On("FindByMobileNumber", mock.Anything, "555").Return([]model.User{}, nil)
	m.users.On("Create", mock.Anything, mock.Anything).
		Return(model.User{}, &model.ConflictError{Fields: []string{"Username"}})

	_, err := s.Signup(ctx, model.SignupParams{
		Username: "alice", Email: "a@x.com", MobileNumber: "555", Password: "secret",
	})
	var conflict *model.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"Username"}, conflict.Fields)
}

func TestIdentity_Login_Success(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	user := model.User{ID: 1, Username: "alice", Email: "a@x.com", PasswordHash: hashed(t, "secret")}
	m.users.On("FindByUsernameOrEmail", mock.Anything, "a@x.com").Return([]model.User{user}, nil)
	m.tokens.On("Issue", "alice").Return("tok", nil)

	result, err := s.Login(ctx, " a@x.com ", " secret ")
	require.NoError(t, err)
	assert.Equal(t, "tok", result.Token)
	assert.Equal(t, int64(1), result.User.ID)
}

func TestIdentity_Login_BadPassword(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	user := model.User{ID: 1, Username: "alice", PasswordHash: hashed(t, "secret")}
	m.users.On("FindByUsernameOrEmail", mock.Anything, "alice").Return([]model.User{user}, nil)

	_, err := s.Login(ctx, "alice", "wrong")
	var credentials *model.CredentialsError
	require.ErrorAs(t, err, &credentials)
	assert.Equal(t, model.ReasonBadPassword, credentials.Reason)
	m.tokens.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestIdentity_Login_NotFound(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("FindByUsernameOrEmail", mock.Anything, "ghost").Return([]model.User{}, nil)

	_, err := s.Login(ctx, "ghost", "x")
	var credentials *model.CredentialsError
	require.ErrorAs(t, err, &credentials)
	assert.Equal(t, model.ReasonNotFound, credentials.Reason)
}

func TestIdentity_Login_Ambiguous(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("FindByUsernameOrEmail", mock.Anything, "dup").
		Return([]model.User{{ID: 1}, {ID: 2}}, nil)

	_, err := s.Login(ctx, "dup", "x")
	var credentials *model.CredentialsError
	require.ErrorAs(t, err, &credentials)
	assert.Equal(t, model.ReasonAmbiguous, credentials.Reason)
}

func TestIdentity_ForgotPassword_IssuesCode(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	user := model.User{ID: 1, Email: "a@x.com"}
	m.users.On("GetFirstByEmailOrMobileNumber", mock.Anything, "a@x.com").Return(user, nil)
	m.codes.On("Generate").Return("042137", nil)
	m.users.On("Update", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.OTP == "042137"
	})).Return(user, nil)
	m.notifier.On("Send", mock.Anything, "a@x.com", "Your OTP for Password Reset", "Your OTP is: 042137").Return(nil)

	message, err := s.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "OTP sent to a@x.com", message)
}

func TestIdentity_ForgotPassword_BlankIdentifier(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	message, err := s.ForgotPassword(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, "Email cannot be empty.", message)
	m.users.AssertNotCalled(t, "GetFirstByEmailOrMobileNumber", mock.Anything, mock.Anything)
}

func TestIdentity_ForgotPassword_UnknownIdentifier(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("GetFirstByEmailOrMobileNumber", mock.Anything, "ghost@x.com").
		Return(model.User{}, model.ErrNotFound)

	message, err := s.ForgotPassword(ctx, "ghost@x.com")
	require.NoError(t, err)
	assert.Equal(t, "User not found with email: ghost@x.com", message)
}

func TestIdentity_VerifyOTP_ConsumesCodeOnce(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	withCode := model.User{ID: 1, Email: "a@x.com", OTP: "042137"}
	m.users.On("GetFirstByEmailOrMobileNumber", mock.Anything, "a@x.com").Return(withCode, nil).Once()
	m.users.On("Update", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.OTP == ""
	})).Return(model.User{ID: 1, Email: "a@x.com"}, nil).Once()

	message, err := s.VerifyOTP(ctx, "a@x.com", "042137")
	require.NoError(t, err)
	assert.Equal(t, "OTP verified successfully.", message)

	// code now cleared, the same submission no longer matches
	m.users.On("GetFirstByEmailOrMobileNumber", mock.Anything, "a@x.com").
		Return(model.User{ID: 1, Email: "a@x.com"}, nil).Once()

	message, err = s.VerifyOTP(ctx, "a@x.com", "042137")
	require.NoError(t, err)
	assert.Equal(t, "Invalid OTP.", message)
}

func TestIdentity_VerifyOTP_MismatchKeepsCode(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("GetFirstByEmailOrMobileNumber", mock.Anything, "a@x.com").
		Return(model.User{ID: 1, Email: "a@x.com", OTP: "042137"}, nil)

	message, err := s.VerifyOTP(ctx, "a@x.com", "000000")
	require.NoError(t, err)
	assert.Equal(t, "Invalid OTP.", message)
	m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestIdentity_VerifyOTP_BlankInput(t *testing.T) {
	ctx := context.Background()
	s, _ := newIdentity(t)

	message, err := s.VerifyOTP(ctx, "", "042137")
	require.NoError(t, err)
	assert.Equal(t, "Email and OTP cannot be empty.", message)

	message, err = s.VerifyOTP(ctx, "a@x.com", " ")
	require.NoError(t, err)
	assert.Equal(t, "Email and OTP cannot be empty.", message)
}

func TestIdentity_ResetPassword_OverwritesHash(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	oldHash := hashed(t, "old")
	user := model.User{ID: 1, Email: "a@x.com", PasswordHash: oldHash}
	m.users.On("GetFirstByEmailOrMobileNumber", mock.Anything, "a@x.com").Return(user, nil)

	var stored model.User
	m.users.On("Update", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		stored = u
		return u.PasswordHash != oldHash && u.PasswordHash != "new"
	})).Return(user, nil)

	message, err := s.ResetPassword(ctx, "a@x.com", "new")
	require.NoError(t, err)
	assert.Equal(t, "Password reset successfully.", message)

	hasher := hash.NewBcrypt(4)
	assert.True(t, hasher.Verify("new", stored.PasswordHash))
	assert.False(t, hasher.Verify("old", stored.PasswordHash))
}

func TestIdentity_ResetPassword_BlankInput(t *testing.T) {
	ctx := context.Background()
	s, _ := newIdentity(t)

	message, err := s.ResetPassword(ctx, "", "new")
	require.NoError(t, err)
	assert.Equal(t, "Email and new password cannot be empty.", message)
}

func TestIdentity_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("GetByID", mock.Anything, int64(42)).Return(model.User{}, model.ErrNotFound)

	_, err := s.Update(ctx, 42, model.UpdateUserParams{Username: "x"})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestIdentity_Update_KeepsHashWithoutPassword(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	user := model.User{ID: 1, Username: "alice", PasswordHash: "keep"}
	m.users.On("GetByID", mock.Anything, int64(1)).Return(user, nil)
	m.users.On("Update", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Username == "allie" && u.PasswordHash == "keep"
	})).Return(model.User{ID: 1, Username: "allie", PasswordHash: "keep"}, nil)

	view, err := s.Update(ctx, 1, model.UpdateUserParams{Username: "allie"})
	require.NoError(t, err)
	assert.Equal(t, "allie", view.Username)
}

func TestIdentity_Update_RehashesNewPassword(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	user := model.User{ID: 1, Username: "alice", PasswordHash: "old"}
	m.users.On("GetByID", mock.Anything, int64(1)).Return(user, nil)
	m.users.On("Update", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.PasswordHash != "old" && u.PasswordHash != "fresh"
	})).Return(user, nil)

	_, err := s.Update(ctx, 1, model.UpdateUserParams{Username: "alice", Password: "fresh"})
	require.NoError(t, err)
}

func TestIdentity_Delete(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("ExistsByID", mock.Anything, int64(1)).Return(true, nil)
	m.users.On("Delete", mock.Anything, int64(1)).Return(nil)

	message, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "User with id 1 has been deleted successfully.", message)
}

func TestIdentity_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("ExistsByID", mock.Anything, int64(42)).Return(false, nil)

	_, err := s.Delete(ctx, 42)
	require.ErrorIs(t, err, model.ErrNotFound)
	m.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestIdentity_UploadImage_EmptyPayload(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("GetByID", mock.Anything, int64(1)).Return(model.User{ID: 1, Image: "before.jpg"}, nil)

	_, err := s.UploadImage(ctx, 1, nil, "avatar.jpg")
	require.ErrorIs(t, err, model.ErrEmptyUpload)
	m.assets.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestIdentity_UploadImage_StoresLocator(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("GetByID", mock.Anything, int64(1)).Return(model.User{ID: 1}, nil)
	m.assets.On("Upload", mock.Anything, mock.MatchedBy(func(name string) bool {
		return len(name) > 6 && name[:2] == "1_" && name[len(name)-4:] == ".png"
	}), []byte("bytes")).Return("1_abc.png", nil)
	m.users.On("Update", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Image == "1_abc.png"
	})).Return(model.User{ID: 1, Image: "1_abc.png"}, nil)

	view, err := s.UploadImage(ctx, 1, []byte("bytes"), "avatar.png")
	require.NoError(t, err)
	assert.Equal(t, "1_abc.png", view.Image)
}

func TestIdentity_GetImage_NoImage(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("GetByID", mock.Anything, int64(1)).Return(model.User{ID: 1}, nil)

	_, err := s.GetImage(ctx, 1)
	require.ErrorIs(t, err, model.ErrNoImage)
}

func TestIdentity_GetImage_ResolvesLocator(t *testing.T) {
	ctx := context.Background()
	s, m := newIdentity(t)

	m.users.On("GetByID", mock.Anything, int64(1)).Return(model.User{ID: 1, Image: "1_abc.jpg"}, nil)
	m.resolver.On("Fetch", mock.Anything, "1_abc.jpg").Return([]byte("jpeg"), nil)

	data, err := s.GetImage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
}
