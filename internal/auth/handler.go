package auth

import (
	"errors"
	"net/http"

	"github.com/sessionworks/authcore/internal/httputil"
	"github.com/sessionworks/authcore/internal/logging"
	"github.com/sessionworks/authcore/internal/user"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_id"

// Handler contains HTTP handlers for the authentication endpoints. Request
// bodies are form-encoded and the session travels in a cookie.
type Handler struct {
	service      *Service
	logger       *logging.Logger
	isProduction bool
}

func NewHandler(service *Service, logger *logging.Logger, isProduction bool) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		isProduction: isProduction,
	}
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ProfileResponse is returned for an authenticated profile lookup.
type ProfileResponse struct {
	Email string `json:"email"`
}

// ResetTokenResponse is returned when a password-reset token is issued.
type ResetTokenResponse struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// PasswordUpdatedResponse is returned after a successful password reset.
type PasswordUpdatedResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Welcome handles the root endpoint.
// @Summary      Welcome message
// @Tags         misc
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       / [get]
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"message": "Bienvenue"}, http.StatusOK)
}

// Register handles user registration.
// @Summary      Register a new user
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email formData string true "Email address"
// @Param        password formData string true "Password"
// @Success      200 {object} RegisterResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields or email already registered"
// @Router       /users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		httputil.RespondErrorWithCode(w, "email and password required", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	newUser, err := h.service.Register(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already registered", "email", email)
			httputil.RespondErrorWithCode(w, "email already registered", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrEmailRequired) || errors.Is(err, ErrPasswordRequired) {
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidRequestBody, http.StatusBadRequest)
			return
		}
		logger.Error("registration failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered", "user_id", newUser.ID, "email", newUser.Email)

	httputil.RespondJSON(w, RegisterResponse{
		Email:   newUser.Email,
		Message: "user created",
	}, http.StatusOK)
}

// Login handles user login and session creation.
// @Summary      Log in
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email formData string true "Email address"
// @Param        password formData string true "Password"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Router       /sessions [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		httputil.RespondErrorWithCode(w, "email and password required", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	ok, err := h.service.ValidLogin(r.Context(), email, password)
	if err != nil {
		logger.Error("login check failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to log in", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	if !ok {
		logger.Warn("login denied", "email", email)
		httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		return
	}

	token, err := h.service.CreateSession(r.Context(), email)
	if err != nil {
		logger.Error("session creation failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to log in", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	if token == "" {
		httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("user logged in", "email", email)

	httputil.RespondJSON(w, LoginResponse{
		Email:   email,
		Message: "logged in",
	}, http.StatusOK)
}

// Logout destroys the session identified by the session cookie.
// @Summary      Log out
// @Tags         auth
// @Success      302
// @Failure      403 {object} httputil.ErrorResponse "Unknown session"
// @Router       /sessions [delete]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u := h.sessionUser(w, r)
	if u == nil {
		return
	}

	if err := h.service.DestroySession(r.Context(), u.ID); err != nil {
		logger.Error("logout failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to log out", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	// Expire the cookie alongside the server-side session.
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("user logged out", "user_id", u.ID)

	http.Redirect(w, r, "/", http.StatusFound)
}

// Profile returns the email of the authenticated user.
// @Summary      User profile
// @Tags         auth
// @Produce      json
// @Success      200 {object} ProfileResponse
// @Failure      403 {object} httputil.ErrorResponse "Not authenticated"
// @Router       /profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u := h.sessionUser(w, r)
	if u == nil {
		return
	}

	httputil.RespondJSON(w, ProfileResponse{Email: u.Email}, http.StatusOK)
}

// GetResetToken issues a password-reset token.
// @Summary      Request a password reset token
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email formData string true "Email address"
// @Success      200 {object} ResetTokenResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing email"
// @Failure      403 {object} httputil.ErrorResponse "Unknown email"
// @Router       /reset_password [post]
func (h *Handler) GetResetToken(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	email := r.PostFormValue("email")
	if email == "" {
		httputil.RespondErrorWithCode(w, "email required", httputil.CodeEmailRequired, http.StatusBadRequest)
		return
	}

	token, err := h.service.GetResetToken(r.Context(), email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("reset token denied: unknown email", "email", email)
			httputil.RespondErrorWithCode(w, "forbidden", httputil.CodeUserNotFound, http.StatusForbidden)
			return
		}
		logger.Error("reset token issuance failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to issue reset token", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("reset token issued", "email", email)

	httputil.RespondJSON(w, ResetTokenResponse{
		Email:      email,
		ResetToken: token,
	}, http.StatusOK)
}

// UpdatePassword consumes a reset token and sets a new password.
// @Summary      Reset password
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email formData string true "Email address"
// @Param        reset_token formData string true "Reset token"
// @Param        new_password formData string true "New password"
// @Success      200 {object} PasswordUpdatedResponse
// @Failure      403 {object} httputil.ErrorResponse "Invalid or used reset token"
// @Router       /reset_password [put]
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	email := r.PostFormValue("email")
	resetToken := r.PostFormValue("reset_token")
	newPassword := r.PostFormValue("new_password")

	err := h.service.UpdatePassword(r.Context(), resetToken, newPassword)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("password update denied: unknown reset token")
			httputil.RespondErrorWithCode(w, "forbidden", httputil.CodeResetTokenInvalid, http.StatusForbidden)
			return
		}
		if errors.Is(err, ErrPasswordRequired) {
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
			return
		}
		logger.Error("password update failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password updated", "email", email)

	httputil.RespondJSON(w, PasswordUpdatedResponse{
		Email:   email,
		Message: "Password updated",
	}, http.StatusOK)
}

// sessionUser resolves the session cookie to a user, writing a 403 and
// returning nil when the request carries no valid session.
func (h *Handler) sessionUser(w http.ResponseWriter, r *http.Request) *user.User {
	logger := logging.GetLoggerFromContext(r.Context())

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		httputil.RespondErrorWithCode(w, "forbidden", httputil.CodeSessionNotFound, http.StatusForbidden)
		return nil
	}

	u, err := h.service.GetUserFromSession(r.Context(), cookie.Value)
	if err != nil {
		logger.Error("session lookup failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to resolve session", httputil.CodeInternalError, http.StatusInternalServerError)
		return nil
	}
	if u == nil {
		httputil.RespondErrorWithCode(w, "forbidden", httputil.CodeSessionNotFound, http.StatusForbidden)
		return nil
	}

	return u
}
