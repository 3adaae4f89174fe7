package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/hifi-storefront/internal/metrics"
	"github.com/iyhunko/hifi-storefront/internal/session"
)

// SessionController handles login and logout.
type SessionController struct {
	gate *session.Gate
}

// NewSessionController creates a new SessionController with the given gate.
func NewSessionController(gate *session.Gate) *SessionController {
	return &SessionController{
		gate: gate,
	}
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles the HTTP POST request creating the session.
func (sc *SessionController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := sc.gate.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// only attempts the authenticator turned down count as failed logins
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			metrics.Logins.WithLabelValues("failed").Inc()
		}
		respondError(c, err)
		return
	}

	metrics.Logins.WithLabelValues("succeeded").Inc()
	c.JSON(http.StatusCreated, current)
}

// Status handles the HTTP GET request reporting whether someone is logged in.
func (sc *SessionController) Status(c *gin.Context) {
	active, err := sc.gate.IsActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": active})
}

// Logout handles the HTTP DELETE request destroying the session.
func (sc *SessionController) Logout(c *gin.Context) {
	if err := sc.gate.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
