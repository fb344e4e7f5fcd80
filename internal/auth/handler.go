package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/users"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=auth

type oauthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*users.ExternalProfile, error)
}

type stateStore interface {
	Create(ctx context.Context) (string, error)
	Consume(ctx context.Context, state string) (bool, error)
}

type tokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type userStore interface {
	FindOrCreate(ctx context.Context, profile users.ExternalProfile) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

type HandlerParams struct {
	Provider        oauthProvider
	States          stateStore
	Tokens          *TokenManager
	Revocations     tokenRevoker
	Users           userStore
	MetricsManager  *metrics.Manager
	FrontendURL     string
	SecureCookies   bool
	DevLoginEnabled bool
}

type Handler struct {
	provider        oauthProvider
	states          stateStore
	tokens          *TokenManager
	revocations     tokenRevoker
	users           userStore
	metricsManager  *metrics.Manager
	frontendURL     string
	secureCookies   bool
	devLoginEnabled bool
}

func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		provider:        params.Provider,
		states:          params.States,
		tokens:          params.Tokens,
		revocations:     params.Revocations,
		users:           params.Users,
		metricsManager:  params.MetricsManager,
		frontendURL:     strings.TrimSuffix(params.FrontendURL, "/"),
		secureCookies:   params.SecureCookies,
		devLoginEnabled: params.DevLoginEnabled,
	}
}

// SetupRoutes registers the login flow under /api/auth (optionally rate
// limited) and the profile endpoint.
func (h *Handler) SetupRoutes(router *mux.Router, authRateLimit mux.MiddlewareFunc) {
	authRouter := router.PathPrefix("/api/auth").Subrouter()
	if authRateLimit != nil {
		authRouter.Use(authRateLimit)
	}
	authRouter.HandleFunc("/google", h.handleGoogleLogin).Methods("GET", "OPTIONS").Name("auth-google")
	authRouter.HandleFunc("/callback", h.handleCallback).Methods("GET", "OPTIONS").Name("auth-callback")
	authRouter.HandleFunc("/logout", h.handleLogout).Methods("POST", "OPTIONS").Name("auth-logout")
	authRouter.HandleFunc("/dev", h.handleDevLogin).Methods("POST", "OPTIONS").Name("auth-dev")

	router.HandleFunc("/api/user/me", h.handleMe).Methods("GET", "OPTIONS").Name("user-me")
}

func (h *Handler) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.google")
	defer span.End()

	state, err := h.states.Create(ctx)
	if err != nil {
		log.Errorf("auth google, create state: %s", err)
		pkg.WriteJSONError(w, "failed to start login", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.callback")
	defer span.End()

	query := r.URL.Query()
	if providerErr := query.Get("error"); providerErr != "" {
		log.Warnf("auth callback, provider returned error: %s", providerErr)
		h.redirectWithError(w, r, "access_denied")
		return
	}

	valid, err := h.states.Consume(ctx, query.Get("state"))
	if err != nil {
		log.Errorf("auth callback, consume state: %s", err)
		h.redirectWithError(w, r, "auth_failed")
		return
	}
	if !valid {
		h.countLogin("invalid_state")
		h.redirectWithError(w, r, "invalid_state")
		return
	}

	code := query.Get("code")
	if code == "" {
		h.redirectWithError(w, r, "missing_code")
		return
	}

	profile, err := h.provider.Exchange(ctx, code)
	if err != nil {
		log.Errorf("auth callback, exchange code: %s", err)
		h.countLogin("exchange_failed")
		h.redirectWithError(w, r, "auth_failed")
		return
	}

	user, err := h.users.FindOrCreate(ctx, *profile)
	if err != nil {
		log.Errorf("auth callback, find or create user: %s", err)
		h.countLogin("user_failed")
		h.redirectWithError(w, r, "auth_failed")
		return
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	if err := h.startSession(w, user); err != nil {
		log.Errorf("auth callback, start session: %s", err)
		h.redirectWithError(w, r, "auth_failed")
		return
	}
	h.countLogin("success")

	log.Debugf("user %s logged in via %s", user.ID, h.provider.Name())
	http.Redirect(w, r, h.frontendURL+"/workout", http.StatusFound)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	if token := TokenFromRequest(r); token != "" {
		if claims, err := h.tokens.Parse(token); err == nil {
			if err := h.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				log.Errorf("logout, revoke token %s: %s", claims.ID, err)
				pkg.WriteJSONError(w, "logout failed", http.StatusInternalServerError)
				return
			}
		}
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	pkg.WriteSuccess(w)
}

func (h *Handler) handleDevLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.dev")
	defer span.End()

	if !h.devLoginEnabled {
		pkg.WriteJSONError(w, "dev login is not available", http.StatusForbidden)
		return
	}

	user, err := h.users.GetByEmail(ctx, users.DevUserEmail)
	if errors.Is(err, users.ErrUserNotFound) {
		pkg.WriteJSONError(w, "test user not found, run the seed command with -mock", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("dev login, get test user: %s", err)
		pkg.WriteJSONError(w, "dev login failed", http.StatusInternalServerError)
		return
	}

	if err := h.startSession(w, user); err != nil {
		log.Errorf("dev login, start session: %s", err)
		pkg.WriteJSONError(w, "dev login failed", http.StatusInternalServerError)
		return
	}
	h.countLogin("dev")

	pkg.WriteJSONOK(w, map[string]any{"success": true, "user": user})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.user.me")
	defer span.End()

	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	pkg.WriteJSONOK(w, user)
}

func (h *Handler) startSession(w http.ResponseWriter, user *users.User) error {
	token, _, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, h.sessionCookie(token, int(h.tokens.TTL().Seconds())))
	return nil
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, h.frontendURL+"/?error="+url.QueryEscape(reason), http.StatusFound)
}

func (h *Handler) countLogin(outcome string) {
	if h.metricsManager == nil {
		return
	}
	provider := users.ProviderDev
	if outcome != "dev" {
		provider = h.provider.Name()
	}
	h.metricsManager.CounterLogins.WithLabelValues(provider, outcome).Inc()
}

// TokenFromRequest reads the session token from the cookie, falling back to a bearer header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}
