package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	models "TradeGate/internal/domain/models"
	mid "TradeGate/internal/middleware"
	icache "TradeGate/internal/service/cache"
	"TradeGate/internal/service/metrics"
	"TradeGate/internal/service/ratelimit"
	"TradeGate/internal/usecase"
	xhttp "TradeGate/pkg/http"
	xlogger "TradeGate/pkg/logger"
	xutil "TradeGate/pkg/util"
)

// GateHandler serves the trade-permission endpoints.
type GateHandler struct {
	logger  *xlogger.Logger
	gate    *usecase.GateUseCase
	candles *usecase.CandlesUseCase
	cache   icache.BytesCache
	rl      *ratelimit.Limiter
}

func NewGateHandler(logger *xlogger.Logger, gate *usecase.GateUseCase, candles *usecase.CandlesUseCase) *GateHandler {
	metrics.Register()
	return &GateHandler{logger: logger, gate: gate, candles: candles, rl: ratelimit.New()}
}

// SetCache enables short-TTL response caching for regime queries.
func (h *GateHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *GateHandler) RegisterRoutes(e *echo.Echo, authmw echo.MiddlewareFunc) {
	g := e.Group("/api")
	g.GET("/session", h.Session)
	g.GET("/regime", h.Regime, authmw)
	g.GET("/candles", h.Candles, authmw)
	g.POST("/gate/check-trade", h.CheckTrade, authmw)
}

func (h *GateHandler) CheckTrade(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.GateLatency.WithLabelValues("check_trade").Observe(time.Since(start).Seconds())
	}()

	req := &models.CheckTradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":check", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	res, err := h.gate.CheckTrade(c.Request().Context(), mid.UserIDFrom(c), *req)
	if err != nil {
		metrics.GateErrors.WithLabelValues("check_trade").Inc()
		if errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrEmptySeries) {
			return xhttp.BadRequestResponse(c, err.Error())
		}
		h.logger.Error("check-trade usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GateHandler) Regime(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.GateLatency.WithLabelValues("regime").Observe(time.Since(start).Seconds())
	}()

	req := &models.RegimeQueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cacheKey := "regime:" + req.Symbol + ":" + req.TF
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err == nil && ok {
			var cached usecase.RegimeQueryResult
			if json.Unmarshal(b, &cached) == nil {
				return xhttp.SuccessResponse(c, &cached)
			}
		}
	}

	res, err := h.gate.QueryRegime(c.Request().Context(), *req)
	if err != nil {
		metrics.GateErrors.WithLabelValues("regime").Inc()
		if errors.Is(err, models.ErrEmptySeries) {
			return xhttp.BadRequestResponse(c, err.Error())
		}
		h.logger.Error("regime usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if h.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			_ = h.cache.SetBytes(cacheKey, b, 30*time.Second)
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GateHandler) Candles(c echo.Context) error {
	req := &models.CandlesQueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	to := xhttp.ParseTimeDefault(req.To, time.Now().UTC())
	from := xhttp.ParseTimeDefault(req.From, to.Add(-24*time.Hour))
	tf := models.NormalizeTimeframe(req.TF)
	from, to = xutil.AlignFromTo(from, to, string(tf))

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
		Limit:     req.Limit,
	})
	if err != nil {
		metrics.GateErrors.WithLabelValues("candles").Inc()
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GateHandler) Session(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.gate.CurrentSession(time.Now()))
}
