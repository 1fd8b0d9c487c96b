package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"idp-tool/internal/service"
)

// AuthHandler handles passwordless login HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

// RequestMagicLink mails a single-use login link
// @Summary Request a magic link
// @Description Send a passwordless sign-in link to an email address
// @Tags Auth
// @Accept json
// @Param request body magicLinkRequest true "Email address"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /auth/magic-link [post]
func (h *AuthHandler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.RequestMagicLink(req.Email); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "If the address is valid, a sign-in link is on its way",
	})
}

// Verify exchanges a magic-link token for a session
// @Summary Verify a magic link
// @Description Exchange a single-use login token for a JWT session
// @Tags Auth
// @Accept json
// @Param request body verifyRequest true "Login token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Invalid or expired token"
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := h.authService.VerifyMagicLink(req.Token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLoginToken) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
