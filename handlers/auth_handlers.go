package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"chatdesk/api/apperrors"
	"chatdesk/api/middleware"
	"chatdesk/api/models"
	"chatdesk/api/session"
	"chatdesk/api/store"
	"chatdesk/api/utils"
)

const (
	sseKeepAlive      = 25 * time.Second
	invalidCredential = "Invalid credentials"
)

// EventSubscriber is the subscribe side of the session broker.
type EventSubscriber interface {
	Subscribe(userID string) (<-chan session.Event, func())
}

type AuthHandlers struct {
	Profiles     *store.ProfileStore
	Tokens       *utils.TokenManager
	Publisher    session.Publisher
	Subscriber   EventSubscriber
	SecureCookie bool
}

func NewAuthHandlers(profiles *store.ProfileStore, tokens *utils.TokenManager, publisher session.Publisher, subscriber EventSubscriber) *AuthHandlers {
	return &AuthHandlers{
		Profiles:   profiles,
		Tokens:     tokens,
		Publisher:  publisher,
		Subscriber: subscriber,
	}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	var fullName *string
	if name := strings.TrimSpace(req.FullName); name != "" {
		fullName = &name
	}

	profile, err := h.Profiles.CreateProfile(c.Request.Context(), req.Email, fullName, hashedPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info().Str("user_id", profile.ID).Str("email", profile.Email).Msg("User registered")
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": profile})
}

// Login checks credentials and issues a token as both a cookie and JSON.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.Profiles.GetProfileByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			log.Info().Str("email", req.Email).Msg("Login failed: unknown email")
			c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredential})
			return
		}
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(profile.HashedPassword, []byte(req.Password)); err != nil {
		log.Info().Str("email", req.Email).Msg("Login failed: password mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredential})
		return
	}

	token, ok := h.issueToken(c, profile)
	if !ok {
		return
	}
	h.publish(c.Request.Context(), session.SignedIn, profile.ID, profile.Email)

	log.Info().Str("user_id", profile.ID).Msg("User logged in")
	c.JSON(http.StatusOK, gin.H{
		"message":   "Login successful",
		"token":     token,
		"expiresIn": int(h.Tokens.TTL() / time.Second),
		"user":      profile,
	})
}

// Logout clears the cookie. A valid token in the request produces a
// SIGNED_OUT event; logout without one still succeeds.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if token := middleware.TokenFromRequest(c); token != "" {
		if claims, err := h.Tokens.ValidateJWT(token); err == nil {
			h.publish(c.Request.Context(), session.SignedOut, claims.UserID, claims.Email)
		}
	}

	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Refresh issues a fresh token for an authenticated owner.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	profile, err := h.Profiles.GetProfileByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: account no longer exists"})
			return
		}
		respondError(c, err)
		return
	}

	token, ok := h.issueToken(c, profile)
	if !ok {
		return
	}
	h.publish(c.Request.Context(), session.TokenRefreshed, profile.ID, profile.Email)

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresIn": int(h.Tokens.TTL() / time.Second),
	})
}

func (h *AuthHandlers) Me(c *gin.Context) {
	profile, err := h.Profiles.GetProfileByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Events streams the caller's session lifecycle events as Server-Sent Events
// until the client goes away.
func (h *AuthHandlers) Events(c *gin.Context) {
	userID := currentUserID(c)
	events, unsubscribe := h.Subscriber.Subscribe(userID)
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	log.Debug().Str("user_id", userID).Msg("Session event stream opened")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(e.Type), e)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
	log.Debug().Str("user_id", userID).Msg("Session event stream closed")
}

func (h *AuthHandlers) issueToken(c *gin.Context, profile *models.Profile) (string, bool) {
	token, err := h.Tokens.GenerateJWT(profile)
	if err != nil {
		log.Error().Err(err).Str("user_id", profile.ID).Msg("Failed to generate JWT")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return "", false
	}
	c.SetCookie(middleware.TokenCookie, token, int(h.Tokens.TTL()/time.Second), "/", "", h.SecureCookie, true)
	return token, true
}

func (h *AuthHandlers) publish(ctx context.Context, t session.EventType, userID, email string) {
	if h.Publisher == nil {
		return
	}
	e := session.Event{Type: t, UserID: userID, Email: email, At: time.Now().UTC()}
	if err := h.Publisher.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("type", string(t)).Msg("Failed to publish session event")
	}
}
