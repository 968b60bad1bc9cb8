package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/abenov/accounts-server/internal/logger"
	"github.com/abenov/accounts-server/internal/model"
)

// maxImageSize bounds multipart avatar uploads.
const maxImageSize = 10 << 20

// IdentityService defines the account lifecycle operations the HTTP layer
// exposes.
type IdentityService interface {
	Signup(ctx context.Context, params model.SignupParams) (model.UserView, error)
	Login(ctx context.Context, identifier, password string) (model.LoginResult, error)
	ForgotPassword(ctx context.Context, identifier string) (string, error)
	VerifyOTP(ctx context.Context, identifier, code string) (string, error)
	ResetPassword(ctx context.Context, identifier, newPassword string) (string, error)
	GetUser(ctx context.Context, id int64) (model.UserView, error)
	ListUsers(ctx context.Context) ([]model.UserView, error)
	Update(ctx context.Context, id int64, params model.UpdateUserParams) (model.UserView, error)
	Delete(ctx context.Context, id int64) (string, error)
	UploadImage(ctx context.Context, id int64, data []byte, filename string) (model.UserView, error)
	GetImage(ctx context.Context, id int64) ([]byte, error)
}

// TokenIssuer mints a bearer token for the signup response.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// User handles HTTP endpoints for accounts.
type User struct {
	service IdentityService
	tokens  TokenIssuer
	logger  *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(service IdentityService, tokens TokenIssuer, logger *logger.Logger) *User {
	return &User{
		service: service,
		tokens:  tokens,
		logger:  logger,
	}
}

type signupRequest struct {
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	MobileNumber string `json:"mobileNumber"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Gender       string `json:"gender"`
	DOB          string `json:"dob"`
	Status       string `json:"status"`
}

func (r signupRequest) params() model.SignupParams {
	return model.SignupParams{
		Username:     r.Username,
		Name:         r.Name,
		Email:        r.Email,
		Password:     r.Password,
		MobileNumber: r.MobileNumber,
		Role:         r.Role,
		Phone:        r.Phone,
		Address:      r.Address,
		Gender:       r.Gender,
		DOB:          r.DOB,
		Status:       r.Status,
	}
}

type credentialsRequest struct {
	EmailOrMobile string `json:"emailOrMobile"`
	Password      string `json:"password"`
	OTP           string `json:"otp"`
	NewPassword   string `json:"newPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Signup registers an account and answers with a bearer token plus the
// stored view.
func (h *User) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.service.Signup(r.Context(), req.params())
	if err != nil {
		h.logger.Error("User handler: signup failed",
			"username", req.Username,
			"error", err.Error())
		writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(view.Username)
	if err != nil {
		h.logger.Error("User handler: failed to issue signup token",
			"username", view.Username,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.LoginResult{Token: token, User: view})
}

// Create registers an account and answers with the stored view only.
func (h *User) Create(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.service.Signup(r.Context(), req.params())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// Login authenticates a username-or-email identifier.
func (h *User) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.service.Login(r.Context(), req.EmailOrMobile, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ForgotPassword starts the recovery flow. The response is always a message
// string, even for unknown identifiers.
func (h *User) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.recoveryMessage(w, r, func(ctx context.Context, req credentialsRequest) (string, error) {
		return h.service.ForgotPassword(ctx, req.EmailOrMobile)
	})
}

// VerifyOTP checks a submitted recovery code.
func (h *User) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	h.recoveryMessage(w, r, func(ctx context.Context, req credentialsRequest) (string, error) {
		return h.service.VerifyOTP(ctx, req.EmailOrMobile, req.OTP)
	})
}

// ResetPassword overwrites the account password.
func (h *User) ResetPassword(w http.ResponseWriter, r *http.Request) {
	h.recoveryMessage(w, r, func(ctx context.Context, req credentialsRequest) (string, error) {
		return h.service.ResetPassword(ctx, req.EmailOrMobile, req.NewPassword)
	})
}

func (h *User) recoveryMessage(w http.ResponseWriter, r *http.Request, call func(context.Context, credentialsRequest) (string, error)) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	message, err := call(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

// List answers with all account views.
func (h *User) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// Get answers with a single account view.
func (h *User) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Update overwrites the mutable profile fields.
func (h *User) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.service.Update(r.Context(), id, model.UpdateUserParams{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		DOB:          req.DOB,
		Gender:       req.Gender,
		Password:     req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Delete removes the account permanently.
func (h *User) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	message, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

// UploadImage stores the avatar sent as the multipart "image" part.
func (h *User) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart body"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "image part is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read image part"})
		return
	}

	view, err := h.service.UploadImage(r.Context(), id, data, header.Filename)
	if err != nil {
		h.logger.Error("User handler: avatar upload failed",
			"user_id", id,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// GetImage answers with the raw avatar bytes.
func (h *User) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, err := h.service.GetImage(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
