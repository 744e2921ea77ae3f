package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
	"github.com/ErlanBelekov/superrichie/internal/session"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	RequestMagicLink(ctx context.Context, email string) error
	Login(ctx context.Context, rawToken string) (*domain.User, error)
	CurrentUser(ctx context.Context, email string) (*domain.User, error)
}

type sessionIssuer interface {
	Issue(user *domain.User) (string, error)
	TTL() time.Duration
}

type AuthHandler struct {
	authUsecase  authUsecaser
	sessions     sessionIssuer
	appBaseURL   string
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler builds the auth endpoints. secureCookie should be true in
// production only, so local http:// development keeps working.
func NewAuthHandler(authUsecase authUsecaser, sessions sessionIssuer, appBaseURL string, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase:  authUsecase,
		sessions:     sessions,
		appBaseURL:   appBaseURL,
		secureCookie: secureCookie,
		logger:       logger.With("component", "auth_handler"),
	}
}

type magicLinkRequest struct {
	Email string `json:"email" binding:"required,contains=@"`
}

type meResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// POST /api/auth/magic-link
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req magicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errEmailRequired})
		return
	}

	if err := h.authUsecase.RequestMagicLink(c.Request.Context(), req.Email); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "request magic link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errSendFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Magic link sent to your email",
	})
}

// GET /api/auth/verify?token=<raw>
// Always redirects: to the dashboard with a session cookie on success,
// otherwise back to signup with an error code.
func (h *AuthHandler) Verify(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		h.redirectError(c, verifyErrMissing)
		return
	}

	ctx := c.Request.Context()
	user, err := h.authUsecase.Login(ctx, rawToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			h.redirectError(c, verifyErrRejected)
			return
		}
		h.logger.ErrorContext(ctx, "verify magic link", "error", err)
		h.redirectError(c, verifyErrInternal)
		return
	}

	value, err := h.sessions.Issue(user)
	if err != nil {
		h.logger.ErrorContext(ctx, "issue session", "user_id", user.ID, "error", err)
		h.redirectError(c, verifyErrInternal)
		return
	}

	h.setSessionCookie(c, value, int(h.sessions.TTL().Seconds()))
	c.Redirect(http.StatusFound, h.appBaseURL+"/dashboard?success=true")
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// GET /api/me (behind middleware.Session)
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.authUsecase.CurrentUser(ctx, c.GetString("userEmail"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}
		h.logger.ErrorContext(ctx, "load current user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, meResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, value, maxAge, "/", "", h.secureCookie, true)
}

func (h *AuthHandler) redirectError(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, h.appBaseURL+"/signup?error="+url.QueryEscape(code))
}
