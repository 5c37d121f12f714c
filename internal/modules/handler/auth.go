package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AbelardoOk/PlanTracker/internal/modules/serializer"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
	"github.com/AbelardoOk/PlanTracker/internal/pkg/utils/tokens"
)

type AuthHandler struct {
	svc service.UserService
}

func NewAuthHandler(s service.UserService) *AuthHandler {
	return &AuthHandler{svc: s}
}

type RegisterReq struct {
	Username        string `json:"username" form:"username" example:"ana.souza"`
	Email           string `json:"email" form:"email" example:"ana.souza@gmail.com"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
}

// Register godoc
//
//	@Summary		Register
//	@Description	Create an account. Field problems come back as a field to message map in data.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.RegisterReq	true	"Account"
//	@Success		201		{object}	serializer.Response{data=model.User}
//	@Failure		400		{object}	serializer.Response{data=map[string]string}
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	req := RegisterReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	u, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: u})
}

type LoginReq struct {
	Username string `json:"username" form:"username" binding:"required" example:"ana.souza"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login godoc
//
//	@Summary		Login
//	@Description	Exchange credentials for a bearer token. Unknown usernames and wrong passwords get the same answer.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.LoginReq	true	"Credentials"
//	@Success		200		{object}	serializer.Response{data=service.LoginOutput}
//	@Failure		401		{object}	serializer.Response{}
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req := LoginReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// Logout godoc
//
//	@Summary		Logout
//	@Description	Revoke the bearer token used for this request
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := tokens.FromAuthorization(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	if err := h.svc.Logout(c.Request.Context(), token); err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}
