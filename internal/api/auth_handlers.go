package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/stripe-payments/internal/auth"
)

// AuthHandlers issues admin tokens. There is a single configured admin
// credential; the orders API is an operator surface, not a user product.
type AuthHandlers struct {
	jwtService        *auth.JWTService
	adminEmail        string
	adminPasswordHash string
}

func NewAuthHandlers(jwtService *auth.JWTService, adminEmail, adminPasswordHash string) *AuthHandlers {
	return &AuthHandlers{
		jwtService:        jwtService,
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges the admin credential for a bearer token
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email != h.adminEmail || !auth.CheckPassword(req.Password, h.adminPasswordHash) {
		respondJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(req.Email, "admin")
	if err != nil {
		respondJSONError(w, "Internal error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt})
}
