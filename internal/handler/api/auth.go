package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	models "TradeGate/internal/domain/models"
	"TradeGate/internal/repository"
	"TradeGate/internal/usecase"
	xhttp "TradeGate/pkg/http"
	xlogger "TradeGate/pkg/logger"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	logger *xlogger.Logger
	auth   *usecase.AuthUseCase
}

func NewAuthHandler(logger *xlogger.Logger, auth *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{logger: logger, auth: auth}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

func (h *AuthHandler) Register(c echo.Context) error {
	req := &models.RegisterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	u, err := h.auth.Register(c.Request().Context(), *req)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return xhttp.BadRequestResponse(c, "email already registered")
		}
		h.logger.Error("register error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, u)
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := &models.LoginRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	tok, err := h.auth.Login(c.Request().Context(), *req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return xhttp.UnauthorizedResponse(c, err.Error())
		}
		h.logger.Error("login error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, tok)
}
