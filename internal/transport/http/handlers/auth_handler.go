package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/opensourcefinder/server/internal/auth"
	"github.com/opensourcefinder/server/internal/logging"
	"github.com/opensourcefinder/server/internal/service"
	"github.com/opensourcefinder/server/pkg/validator"
	"github.com/sirupsen/logrus"
)

const stateCookie = "oauth_state"

type AuthHandler struct {
	authService *service.AuthService
	provider    *auth.GitHubProvider
	frontendURL string
	log         *logrus.Entry
}

func NewAuthHandler(authService *service.AuthService, provider *auth.GitHubProvider, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		provider:    provider,
		frontendURL: frontendURL,
		log:         logging.C("auth-handler"),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateRegister(input.Email, input.DisplayName, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
		} else {
			h.log.WithError(err).Error("register failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateLogin(input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		} else {
			h.log.WithError(err).Error("login failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GitHubLogin starts the OAuth flow. The random state round-trips through a
// short-lived cookie and is checked again in the callback.
func (h *AuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	if !h.provider.Enabled() {
		writeError(w, http.StatusNotImplemented, "OAUTH_DISABLED", "GitHub sign-in is not configured")
		return
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		h.log.WithError(err).Error("generating oauth state")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusBadRequest, "INVALID_STATE", "OAuth state mismatch")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CODE", "Missing authorization code")
		return
	}

	profile, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.log.WithError(err).Error("oauth exchange failed")
		writeError(w, http.StatusBadGateway, "OAUTH_FAILED", "Could not complete GitHub sign-in")
		return
	}

	resp, err := h.authService.SignInWithGitHub(r.Context(), profile)
	if err != nil {
		h.log.WithError(err).Error("oauth sign-in failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	if h.frontendURL != "" {
		http.Redirect(w, r, fmt.Sprintf("%s/auth/callback?token=%s", h.frontendURL, resp.AccessToken), http.StatusTemporaryRedirect)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
