package api

import (
	"net/http"

	"retail-api/internal/apperr"
	"retail-api/internal/service"

	"github.com/gin-gonic/gin"
)

// register handles user registration
func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.InvalidRequest("Informação obrigatória para cadastro não informada.").WithCause(err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Usuário cadastrado com sucesso.",
		"usuario": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// login handles user login
func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.InvalidRequest("Informação obrigatória para login não informada.").WithCause(err))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// refreshToken issues a fresh token for a valid bearer token
func (h *Handler) refreshToken(c *gin.Context) {
	tokenString, ok := bearerToken(c)
	if !ok {
		writeError(c, apperr.Unauthorized("Token de autenticação não informado!"))
		return
	}

	token, err := h.authService.Refresh(c.Request.Context(), tokenString)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}
