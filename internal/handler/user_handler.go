package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"sgo-sapem/internal/model"
	"sgo-sapem/internal/service"
)

// UserHandler serves account management and verification codes.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Perfil returns the authenticated user's own account.
func (h *UserHandler) Perfil(c *gin.Context) {
	user := c.MustGet("user").(*model.User)
	c.JSON(http.StatusOK, user)
}

// Listar returns every account. Admin only.
func (h *UserHandler) Listar(c *gin.Context) {
	users, err := h.userService.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListarInspectores returns the Inspector accounts for assignment selects.
func (h *UserHandler) ListarInspectores(c *gin.Context) {
	users, err := h.userService.ListarInspectores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// RegistrarRequest is the body of POST /usuarios.
type RegistrarRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nombre   string `json:"nombre" binding:"required"`
	Email    string `json:"email"`
	Rol      string `json:"rol" binding:"required"`
}

// Registrar creates an account. Admin only.
func (h *UserHandler) Registrar(c *gin.Context) {
	var req RegistrarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cuerpo de la petición inválido"})
		return
	}

	user, err := h.userService.Registrar(c.Request.Context(), req.Username, req.Password, req.Nombre, req.Email, req.Rol)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// CambiarRolRequest is the body of PUT /usuarios/:id/rol.
type CambiarRolRequest struct {
	Rol string `json:"rol" binding:"required"`
}

// CambiarRol assigns a new role to an account. Admin only.
func (h *UserHandler) CambiarRol(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}
	var req CambiarRolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cuerpo de la petición inválido"})
		return
	}

	user, err := h.userService.CambiarRol(c.Request.Context(), uint(id), req.Rol)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// EnviarCodigo issues a verification code for the authenticated user.
func (h *UserHandler) EnviarCodigo(c *gin.Context) {
	user := c.MustGet("user").(*model.User)
	if err := h.userService.EnviarCodigoVerificacion(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "código enviado"})
}

// VerificarCodigoRequest is the body of POST /usuarios/codigo/verificar.
type VerificarCodigoRequest struct {
	Codigo string `json:"codigo" binding:"required"`
}

// VerificarCodigo consumes the pending verification code.
func (h *UserHandler) VerificarCodigo(c *gin.Context) {
	user := c.MustGet("user").(*model.User)
	var req VerificarCodigoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cuerpo de la petición inválido"})
		return
	}

	if err := h.userService.VerificarCodigo(c.Request.Context(), user.ID, req.Codigo); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "código verificado"})
}
