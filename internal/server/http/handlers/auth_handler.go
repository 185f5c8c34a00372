package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AliXAbdullah03/nge-brain/internal/server/http/dto"
	"github.com/AliXAbdullah03/nge-brain/internal/server/http/middleware"
)

// AuthHandler processes login and operator accounts.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	user, token, err := h.facade.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, User: toUserResponse(user)})
}

// CreateUser handles POST /api/users.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	user, err := h.facade.CreateUser(c.Request.Context(), req.Login, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}
