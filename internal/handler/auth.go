package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/id8-org/id8-recovery/internal/middleware"
	"github.com/id8-org/id8-recovery/internal/service"
	"github.com/id8-org/id8-recovery/internal/tiers"
	"github.com/id8-org/id8-recovery/pkg/googleauth"
)

type AuthHandler struct {
	authService *service.AuthService
	oauth       *googleauth.OAuthClient
}

func NewAuthHandler(authService *service.AuthService, oauth *googleauth.OAuthClient) *AuthHandler {
	return &AuthHandler{authService: authService, oauth: oauth}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		FirstName string `json:"first_name" binding:"max=64"`
		LastName  string `json:"last_name" binding:"max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	result, err := h.authService.Register(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// GET /auth/google/login
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	redirectURI := c.DefaultQuery("redirect_uri", "/")
	// Encode redirect_uri into state so it survives the OAuth round-trip.
	// Format: "<random_hex>|<redirect_uri>"
	state := generateState() + "|" + redirectURI
	c.Redirect(http.StatusFound, h.oauth.AuthURL(state))
}

// GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		BadRequest(c, 40001, "code is required")
		return
	}

	info, err := h.oauth.GetUserInfoByCode(code)
	if err != nil {
		Error(c, http.StatusInternalServerError, 50105, "google sign-in failed: "+err.Error())
		return
	}
	result, err := h.authService.GoogleLogin(info)
	if err != nil {
		Fail(c, err)
		return
	}

	redirectURI := "/"
	if state := c.Query("state"); state != "" {
		if idx := strings.Index(state, "|"); idx >= 0 {
			redirectURI = state[idx+1:]
		}
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("%s?token=%s", redirectURI, result.Token))
}

// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		Unauthorized(c, 40103, "not authenticated")
		return
	}
	Success(c, gin.H{
		"user":     user,
		"features": tiers.Features(user),
	})
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
