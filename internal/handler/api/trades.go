package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	models "TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
	mid "TradeGate/internal/middleware"
	"TradeGate/internal/usecase"
	xhttp "TradeGate/pkg/http"
	xlogger "TradeGate/pkg/logger"
)

// TradesHandler serves the paper-trade journal and behavior reports.
type TradesHandler struct {
	logger  *xlogger.Logger
	trades  *usecase.TradesUseCase
	reports *usecase.ReportsUseCase
}

func NewTradesHandler(logger *xlogger.Logger, trades *usecase.TradesUseCase, reports *usecase.ReportsUseCase) *TradesHandler {
	return &TradesHandler{logger: logger, trades: trades, reports: reports}
}

func (h *TradesHandler) RegisterRoutes(e *echo.Echo, authmw echo.MiddlewareFunc) {
	g := e.Group("/api", authmw)
	g.POST("/trades/open", h.Open)
	g.POST("/trades/close", h.Close)
	g.GET("/trades", h.List)
	g.GET("/reports/daily", h.DailyReport)
	g.GET("/reports/weekly", h.WeeklyReport)
}

func (h *TradesHandler) Open(c echo.Context) error {
	req := &models.TradeOpenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	t, err := h.trades.Open(c.Request().Context(), mid.UserIDFrom(c), *req)
	if err != nil {
		if errors.Is(err, usecase.ErrLiveModeNotAllowed) {
			return xhttp.ForbiddenResponse(c, err.Error())
		}
		h.logger.Error("trade open error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, t)
}

func (h *TradesHandler) Close(c echo.Context) error {
	req := &models.TradeCloseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.trades.Close(c.Request().Context(), mid.UserIDFrom(c), *req)
	if err != nil {
		switch {
		case errors.Is(err, domrepo.ErrNotFound):
			return xhttp.NotFoundResponse(c, "trade not found")
		case errors.Is(err, usecase.ErrTradeAlreadyClosed):
			return xhttp.BadRequestResponse(c, err.Error())
		}
		h.logger.Error("trade close error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *TradesHandler) List(c echo.Context) error {
	req := &models.TradesListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	trades, err := h.trades.List(c.Request().Context(), mid.UserIDFrom(c), req.Days)
	if err != nil {
		h.logger.Error("trades list error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, trades, int64(len(trades)))
}

func (h *TradesHandler) DailyReport(c echo.Context) error {
	r, err := h.reports.Daily(c.Request().Context(), mid.UserIDFrom(c), time.Now())
	if err != nil {
		h.logger.Error("daily report error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, r)
}

func (h *TradesHandler) WeeklyReport(c echo.Context) error {
	r, err := h.reports.Weekly(c.Request().Context(), mid.UserIDFrom(c), time.Now())
	if err != nil {
		h.logger.Error("weekly report error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, r)
}
