package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abenov/accounts-server/internal/api/http/handler"
	"github.com/abenov/accounts-server/internal/api/http/middleware"
	"github.com/abenov/accounts-server/internal/logger"
	"github.com/abenov/accounts-server/internal/model"
)

// Router registers HTTP routes and middleware for the accounts API.
type Router struct {
	identityService handler.IdentityService
	websiteService  handler.WebsiteService
	tokens          model.TokenIssuer
	verifier        model.TokenVerifier
	logger          *logger.Logger
}

// New creates a new Router instance.
func New(
	identityService handler.IdentityService,
	websiteService handler.WebsiteService,
	tokens model.TokenIssuer,
	verifier model.TokenVerifier,
	logger *logger.Logger,
) *Router {
	return &Router{
		identityService: identityService,
		websiteService:  websiteService,
		tokens:          tokens,
		verifier:        verifier,
		logger:          logger,
	}
}

// Register builds the route table. Signup, login and the recovery endpoints
// are open; account reads and mutations require a bearer token. Website CRUD
// is open, matching the original API surface.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.verifier, r.logger)

	userHandler := handler.NewUser(r.identityService, r.tokens, r.logger)
	websiteHandler := handler.NewWebsite(r.websiteService, r.logger)

	root := mux.NewRouter()
	root.Use(logging.Handle)

	root.HandleFunc("/", home).Methods(http.MethodGet)
	root.HandleFunc("/signup", userHandler.Signup).Methods(http.MethodPost)
	root.HandleFunc("/login", userHandler.Login).Methods(http.MethodPost)
	root.HandleFunc("/forgot-password", userHandler.ForgotPassword).Methods(http.MethodPost)
	root.HandleFunc("/verify-otp", userHandler.VerifyOTP).Methods(http.MethodPost)
	root.HandleFunc("/reset-password", userHandler.ResetPassword).Methods(http.MethodPost)

	root.HandleFunc("/website", websiteHandler.Create).Methods(http.MethodPost)
	root.HandleFunc("/websites", websiteHandler.List).Methods(http.MethodGet)
	root.HandleFunc("/website/{id}", websiteHandler.Get).Methods(http.MethodGet)
	root.HandleFunc("/website/{id}", websiteHandler.Update).Methods(http.MethodPut)
	root.HandleFunc("/website/{id}", websiteHandler.Delete).Methods(http.MethodDelete)

	protected := root.NewRoute().Subrouter()
	protected.Use(authenticate.Handle)
	protected.HandleFunc("/users", userHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/user", userHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/user/{id}", userHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/user/{id}", userHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/user/{id}", userHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/user/{id}/image", userHandler.UploadImage).Methods(http.MethodPost)
	protected.HandleFunc("/user/{id}/image", userHandler.GetImage).Methods(http.MethodGet)

	return root
}

func home(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Welcome to the Accounts API!"))
}
