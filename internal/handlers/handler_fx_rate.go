package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/dto"
	"github.com/hishab-app/hishab_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// fxRateHandler handles HTTP requests related to exchange rates.
type fxRateHandler struct {
	fxRateService portssvc.FxRateSvcFacade
}

// newFxRateHandler creates a new fxRateHandler.
func newFxRateHandler(frs portssvc.FxRateSvcFacade) *fxRateHandler {
	return &fxRateHandler{
		fxRateService: frs,
	}
}

// registerFxRateRoutes registers routes related to exchange rates.
func registerFxRateRoutes(rg *gin.RouterGroup, fxRateService portssvc.FxRateSvcFacade) {
	h := newFxRateHandler(fxRateService)

	rates := rg.Group("/fx-rates")
	{
		rates.POST("", h.upsertRate)
		rates.GET("", h.listRates)
		rates.GET("/:from/:to", h.resolveRate)
		rates.DELETE("/:rateID", h.deactivateRate)
	}
}

// upsertRate godoc
// @Summary Create or update an exchange rate
// @Description Records a rate for the exact (from, to, effectiveDate) key, updating it in place when the key already exists. The response carries a warning when postings already captured a snapshot on that date; previously posted entries are never adjusted.
// @Tags fx-rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.UpsertFxRateRequest true "Rate details"
// @Success 200 {object} dto.UpsertFxRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to upsert rate"
// @Router /fx-rates [post]
func (h *fxRateHandler) upsertRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpsertFxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	logger = logger.With(slog.String("actor_id", actorID))

	rate, warning, err := h.fxRateService.UpsertRate(c.Request.Context(), req, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error upserting rate", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to upsert rate in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert exchange rate"})
		}
		return
	}

	logger.Info("Exchange rate upserted",
		slog.String("rate_id", rate.RateID),
		slog.String("from", rate.FromCurrencyCode),
		slog.String("to", rate.ToCurrencyCode),
	)
	c.JSON(http.StatusOK, dto.UpsertFxRateResponse{
		Rate:    dto.ToFxRateResponse(rate),
		Warning: warning,
	})
}

// resolveRate godoc
// @Summary Resolve the applicable rate for a currency pair
// @Description Returns the newest active rate with effectiveDate on or before the given date (today when omitted). No triangulation and no future-dated rates.
// @Tags fx-rates
// @Produce  json
// @Param   from path string true "From currency code"
// @Param   to path string true "To currency code"
// @Param   date query string false "Lookup date (YYYY-MM-DD)"
// @Success 200 {object} dto.FxRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "No rate on or before the date"
// @Failure 500 {object} map[string]string "Failed to resolve rate"
// @Router /fx-rates/{from}/{to} [get]
func (h *fxRateHandler) resolveRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.GetRateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ResolveRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	onOrBefore := time.Now()
	if params.Date != "" {
		parsed, err := time.Parse("2006-01-02", params.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date: " + params.Date})
			return
		}
		onOrBefore = parsed
	}

	from := c.Param("from")
	to := c.Param("to")

	rate, err := h.fxRateService.GetRate(c.Request.Context(), from, to, onOrBefore)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrMissingRate):
			logger.Warn("No rate resolvable for pair", slog.String("from", from), slog.String("to", to))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to resolve rate in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve exchange rate"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToFxRateResponse(rate))
}

// listRates godoc
// @Summary List exchange rates
// @Description Retrieves a paginated rate listing, optionally filtered by pair
// @Tags fx-rates
// @Produce  json
// @Param   from query string false "Filter by from currency code"
// @Param   to query string false "Filter by to currency code"
// @Param   limit query int false "Max rates to return (default 20)"
// @Param   offset query int false "Offset for pagination (default 0)"
// @Success 200 {object} dto.ListFxRatesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list rates"
// @Router /fx-rates [get]
func (h *fxRateHandler) listRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListFxRatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.fxRateService.ListRates(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list rates from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exchange rates"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// deactivateRate godoc
// @Summary Deactivate an exchange rate
// @Description Hides the rate from future lookups without deleting its history
// @Tags fx-rates
// @Produce  json
// @Param   rateID path string true "Rate ID (UUID)"
// @Success 204 "Rate deactivated"
// @Failure 404 {object} map[string]string "Rate not found"
// @Failure 500 {object} map[string]string "Failed to deactivate rate"
// @Router /fx-rates/{rateID} [delete]
func (h *fxRateHandler) deactivateRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateID := c.Param("rateID")
	actorID := middleware.GetActorIDFromContext(c)
	logger = logger.With(slog.String("rate_id", rateID), slog.String("actor_id", actorID))

	if err := h.fxRateService.DeactivateRate(c.Request.Context(), rateID, actorID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Rate to deactivate not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
		} else {
			logger.Error("Failed to deactivate rate in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate exchange rate"})
		}
		return
	}

	logger.Info("Exchange rate deactivated")
	c.Status(http.StatusNoContent)
}
