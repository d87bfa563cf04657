package v1

import (
	"net/http"

	"go-headhunter-backend/internal/delivery/http/response"
	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, loginLimit gin.HandlerFunc) {
	handler := &AuthHandler{authUC: authUC}

	login := []gin.HandlerFunc{handler.Login}
	if loginLimit != nil {
		login = append([]gin.HandlerFunc{loginLimit}, login...)
	}
	public.Group("/auth").POST("/login", login...)
	protected.Group("/auth").GET("/me", handler.Me)
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges email and password of an active account for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=domain.LoginResult}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body").Wrap(err))
		return
	}

	result, err := h.authUC.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Logged in", result)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.SanitizedUser}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Current user", user)
}
