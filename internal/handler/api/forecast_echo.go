package api

import (
	"errors"
	"net/http"
	"time"

	"FinCast/internal/domain/models"
	apimetrics "FinCast/internal/service/metrics"
	"FinCast/internal/usecase"
	xhttp "FinCast/pkg/http"
	xlogger "FinCast/pkg/logger"
	"FinCast/pkg/util"

	"github.com/labstack/echo/v4"
)

const maxBatchSymbols = 25

// ForecastEchoHandler serves forecasts, batch forecasts, evaluations and the dashboard payload.
type ForecastEchoHandler struct {
	logger   *xlogger.Logger
	forecast *usecase.ForecastUseCase
	batch    *usecase.BatchUseCase
	now      func() time.Time
}

func NewForecastEchoHandler(logger *xlogger.Logger, forecast *usecase.ForecastUseCase, batch *usecase.BatchUseCase) *ForecastEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ForecastEchoHandler{logger: logger, forecast: forecast, batch: batch, now: time.Now}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/forecast", h.Forecast)
	g.POST("/forecast", h.ForecastHistory)
	g.GET("/forecast/batch", h.Batch)
	g.GET("/evaluate", h.Evaluate)
	e.GET("/analyze/:symbol", h.Analyze)
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	defer observe("forecast", time.Now())
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "forecast", verr)
	}
	res, err := h.forecast.Analyze(c.Request().Context(), req.Symbol, req.Overrides)
	if err != nil {
		return h.fail(c, "forecast", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, toForecastDTO(res, h.now()))
}

func (h *ForecastEchoHandler) ForecastHistory(c echo.Context) error {
	defer observe("forecast_history", time.Now())
	req := &models.HistoryForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "forecast_history", verr)
	}
	obs := make([]models.PriceObservation, len(req.History))
	for i, in := range req.History {
		d, ok := util.ParseDate(in.Date)
		if !ok {
			return h.fail(c, "forecast_history", xhttp.BadRequestErrorf("history[%d].date is not a valid date", i))
		}
		obs[i] = models.PriceObservation{Date: d, Close: in.Close}
	}
	hist, err := models.NewPriceHistory(obs)
	if err != nil {
		return h.fail(c, "forecast_history", err)
	}
	res, err := h.forecast.AnalyzeHistory(req.Symbol, hist, req.Overrides)
	if err != nil {
		return h.fail(c, "forecast_history", err)
	}
	return xhttp.SuccessResponse(c, toForecastDTO(res, h.now()))
}

func (h *ForecastEchoHandler) Batch(c echo.Context) error {
	defer observe("forecast_batch", time.Now())
	req := &models.BatchForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "forecast_batch", verr)
	}
	symbols := util.ParseSymbols(req.Symbols)
	if len(symbols) == 0 || len(symbols) > maxBatchSymbols {
		return h.fail(c, "forecast_batch",
			xhttp.BadRequestErrorf("symbols must list between 1 and %d tickers", maxBatchSymbols).WithParam("max", maxBatchSymbols))
	}

	out := h.batch.AnalyzeMany(c.Request().Context(), symbols, req.Overrides)
	now := h.now()
	dto := BatchDTO{Results: make([]ForecastDTO, len(out.Results)), Failures: out.Failures}
	for i, r := range out.Results {
		dto.Results[i] = toForecastDTO(r, now)
	}
	return xhttp.SuccessResponse(c, dto)
}

func (h *ForecastEchoHandler) Evaluate(c echo.Context) error {
	defer observe("evaluate", time.Now())
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "evaluate", verr)
	}
	rep, err := h.forecast.Evaluate(c.Request().Context(), req.Symbol, req.Holdout, models.Overrides{})
	if err != nil {
		return h.fail(c, "evaluate", err)
	}
	return xhttp.SuccessResponse(c, toEvaluationDTO(rep))
}

// Analyze serves the dashboard: a bare payload on success and {"error": ...} on failure.
func (h *ForecastEchoHandler) Analyze(c echo.Context) error {
	defer observe("analyze", time.Now())
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		apimetrics.APIErrors.WithLabelValues("analyze", "ERR_VALIDATION").Inc()
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "invalid request", "details": verr})
	}
	res, err := h.forecast.Analyze(c.Request().Context(), req.Symbol, req.Overrides)
	if err != nil {
		appErr := toAppError(err)
		apimetrics.APIErrors.WithLabelValues("analyze", appErr.Code).Inc()
		return c.JSON(appErr.Status, map[string]string{"error": appErr.Message})
	}
	return c.JSON(http.StatusOK, toAnalyzeDTO(res))
}

func (h *ForecastEchoHandler) badRequest(c echo.Context, endpoint string, verr interface{}) error {
	apimetrics.APIErrors.WithLabelValues(endpoint, "ERR_VALIDATION").Inc()
	return xhttp.BadRequestResponse(c, verr)
}

func (h *ForecastEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	apimetrics.APIErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps domain errors to HTTP errors. Unknown errors become 500 without leaking details.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	kind := models.ErrorKind(err)
	switch {
	case errors.Is(err, models.ErrSymbolNotFound):
		return xhttp.NotFoundError("no price data for symbol").WithCode(kind).WithError(err)
	case errors.Is(err, models.ErrInsufficientHistory),
		errors.Is(err, models.ErrMalformedHistory):
		return xhttp.UnprocessableError(err.Error()).WithCode(kind).WithError(err)
	case errors.Is(err, models.ErrInvalidHorizon),
		errors.Is(err, models.ErrInvalidConfidence),
		errors.Is(err, models.ErrInvalidConfig):
		return xhttp.BadRequestError(err.Error()).WithCode(kind).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}

func observe(endpoint string, start time.Time) {
	apimetrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
