package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anselmoalexandre/tivi/internal/database/users"
	syncsvc "github.com/anselmoalexandre/tivi/internal/sync"
	"github.com/anselmoalexandre/tivi/internal/tokenstore"
	"github.com/anselmoalexandre/tivi/internal/trakt"
)

// AccountController handles catalog sign-in, the account profile and
// sign-out.
type AccountController struct {
	client    *trakt.Client
	tokens    *tokenstore.TokenStore
	usersRepo *users.Repository
	service   *syncsvc.Service
	sessions  *SessionManager
}

func NewAccountController(
	client *trakt.Client,
	tokens *tokenstore.TokenStore,
	usersRepo *users.Repository,
	service *syncsvc.Service,
	sessions *SessionManager,
) *AccountController {
	return &AccountController{
		client:    client,
		tokens:    tokens,
		usersRepo: usersRepo,
		service:   service,
		sessions:  sessions,
	}
}

type loginRequest struct {
	Token string `json:"token" binding:"required"`
}

// Login validates a catalog access token, stores it sealed and starts a
// device session.
func (a *AccountController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	if err := a.client.ValidateToken(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, trakt.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token was rejected by the catalog"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not reach the catalog: " + err.Error()})
		return
	}

	if err := a.tokens.SetToken(req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Profile sync is best-effort; the token is already validated and stored.
	username := ""
	if err := a.service.SyncUserProfile(c.Request.Context()); err != nil {
		log.Printf("Login: profile sync failed: %v", err)
	} else if me, err := a.usersRepo.GetMe(); err == nil {
		username = me.Username
	}
	if username == "" {
		username = "me"
	}

	if err := a.sessions.CreateSession(c.Request, username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged in", "username": username})
}

// Profile returns the signed-in user's catalog profile.
func (a *AccountController) Profile(c *gin.Context) {
	if !a.tokens.IsLoggedIn() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	me, err := a.usersRepo.GetMe()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not synced yet"})
		return
	}

	c.JSON(http.StatusOK, me)
}

// Logout clears the stored token, the cached profile and the device session.
func (a *AccountController) Logout(c *gin.Context) {
	if err := a.tokens.ClearToken(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := a.usersRepo.DeleteMe(); err != nil {
		log.Printf("Logout: failed to remove cached profile: %v", err)
	}
	if err := a.sessions.DestroySession(c.Request); err != nil {
		log.Printf("Logout: failed to destroy session: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
