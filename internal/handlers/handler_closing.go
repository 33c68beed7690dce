package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portssvc "github.com/SscSPs/closing_engine/internal/core/ports/services"
	"github.com/SscSPs/closing_engine/internal/dto"
	"github.com/SscSPs/closing_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// closingHandler handles HTTP requests related to period and fiscal-year closing.
type closingHandler struct {
	closingService portssvc.ClosingSvcFacade
}

func newClosingHandler(cs portssvc.ClosingSvcFacade) *closingHandler {
	return &closingHandler{closingService: cs}
}

// RegisterClosingRoutes registers routes related to closing under a company group.
// Routes that write are wrapped with the given middleware (typically rate limiting).
func RegisterClosingRoutes(rg *gin.RouterGroup, closingService portssvc.ClosingSvcFacade, writeMiddleware ...gin.HandlerFunc) {
	h := newClosingHandler(closingService)

	company := rg.Group("/companies/:company_id")
	periods := company.Group("/periods")
	{
		periods.POST("/close", withMiddleware(writeMiddleware, h.closePeriod)...)
		periods.GET("/can-close", h.canClosePeriod)
		periods.GET("/preview", h.previewClose)
		periods.GET("", h.listPeriods)
		periods.GET("/:period_id", h.getPeriod)
	}

	years := company.Group("/fiscal-years/:year")
	{
		years.POST("/close", withMiddleware(writeMiddleware, h.closeFiscalYear)...)
		years.GET("/can-close", h.canCloseFiscalYear)
	}
}

// closePeriod godoc
// @Summary Close an accounting period
// @Description Posts the closing entry for the period and marks it closed. The closing user is taken from the token.
// @Tags closing
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   request body dto.ClosePeriodRequest true "Period to close"
// @Success 200 {object} dto.ClosingResultResponse
// @Failure 400 {object} dto.ClosingResultResponse "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} dto.ClosingResultResponse "Period already closed"
// @Failure 422 {object} dto.ClosingResultResponse "Closing accounts misconfigured"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} dto.ClosingResultResponse "Close failed"
// @Security BearerAuth
// @Router /companies/{company_id}/periods/close [post]
func (h *closingHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.ClosePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ClosePeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	start, errStart := dto.ParseDate(req.PeriodStart)
	end, errEnd := dto.ParseDate(req.PeriodEnd)
	if err := errors.Join(errStart, errEnd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period dates: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("company_id", companyID), slog.String("period_start", req.PeriodStart), slog.String("period_end", req.PeriodEnd))
	logger.Info("Received request to close period")

	result, err := h.closingService.ClosePeriod(c.Request.Context(), domain.ClosePeriodRequest{
		CompanyID:   companyID,
		PeriodStart: start,
		PeriodEnd:   end,
		ClosedBy:    userID,
		PeriodName:  req.PeriodName,
		Notes:       req.Notes,
	})
	h.writeClosingResult(c, logger, result, err)
}

// closeFiscalYear godoc
// @Summary Close a fiscal year
// @Description Transfers any remaining net income to retained earnings and locks every period of the year.
// @Tags closing
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   year path int true "Fiscal year"
// @Param   request body dto.CloseFiscalYearRequest false "Optional notes"
// @Success 200 {object} dto.ClosingResultResponse
// @Failure 400 {object} dto.ClosingResultResponse "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} dto.ClosingResultResponse "Fiscal year already closed"
// @Failure 422 {object} dto.ClosingResultResponse "Closing accounts misconfigured"
// @Failure 500 {object} dto.ClosingResultResponse "Close failed"
// @Security BearerAuth
// @Router /companies/{company_id}/fiscal-years/{year}/close [post]
func (h *closingHandler) closeFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fiscal year"})
		return
	}

	var req dto.CloseFiscalYearRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for CloseFiscalYear", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("company_id", companyID), slog.Int("fiscal_year", year))
	logger.Info("Received request to close fiscal year")

	result, err := h.closingService.CloseFiscalYear(c.Request.Context(), domain.CloseFiscalYearRequest{
		CompanyID:  companyID,
		FiscalYear: year,
		ClosedBy:   userID,
		Notes:      req.Notes,
	})
	h.writeClosingResult(c, logger, result, err)
}

func (h *closingHandler) writeClosingResult(c *gin.Context, logger *slog.Logger, result *domain.ClosingResult, err error) {
	if result == nil {
		result = &domain.ClosingResult{Err: err, Outcome: apperrors.OutcomeOf(err)}
	}
	resp := dto.ToClosingResultResponse(result)

	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Close failed", slog.String("error", err.Error()), slog.String("outcome", string(result.Outcome)))
			if !resp.NeedsOperator {
				resp.Error = "Failed to close"
			}
		} else {
			logger.Warn("Close rejected", slog.String("error", err.Error()))
		}
		c.JSON(status, resp)
		return
	}

	logger.Info("Close committed", slog.String("journal_entry_id", result.JournalEntryID))
	c.JSON(http.StatusOK, resp)
}

// canClosePeriod godoc
// @Summary Check whether a period can be closed
// @Tags closing
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   start query string true "Period start (YYYY-MM-DD)"
// @Param   end query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} dto.CanCloseResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 500 {object} map[string]string "Check failed"
// @Security BearerAuth
// @Router /companies/{company_id}/periods/can-close [get]
func (h *closingHandler) canClosePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	start, end, ok := bindPeriodRange(c)
	if !ok {
		return
	}

	answer, err := h.closingService.CanClosePeriod(c.Request.Context(), companyID, start, end)
	if err != nil {
		logger.Error("Failed to check period close", slog.String("company_id", companyID), slog.String("error", err.Error()))
		c.JSON(statusForError(err), gin.H{"error": "Failed to check period"})
		return
	}
	c.JSON(http.StatusOK, dto.CanCloseResponse{CanClose: answer.CanClose, Reason: answer.Reason})
}

// previewClose godoc
// @Summary Preview a period close
// @Description Computes the net income and the closing lines without writing anything.
// @Tags closing
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   start query string true "Period start (YYYY-MM-DD)"
// @Param   end query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} dto.ClosingPreviewResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 422 {object} map[string]string "Closing accounts misconfigured"
// @Failure 500 {object} map[string]string "Preview failed"
// @Security BearerAuth
// @Router /companies/{company_id}/periods/preview [get]
func (h *closingHandler) previewClose(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	start, end, ok := bindPeriodRange(c)
	if !ok {
		return
	}

	preview, err := h.closingService.PreviewClose(c.Request.Context(), companyID, start, end)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to preview close", slog.String("company_id", companyID), slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to preview close"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ToClosingPreviewResponse(preview))
}

// canCloseFiscalYear godoc
// @Summary Check whether a fiscal year can be closed
// @Tags closing
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   year path int true "Fiscal year"
// @Success 200 {object} dto.CanCloseResponse
// @Failure 400 {object} map[string]string "Invalid fiscal year"
// @Failure 500 {object} map[string]string "Check failed"
// @Security BearerAuth
// @Router /companies/{company_id}/fiscal-years/{year}/can-close [get]
func (h *closingHandler) canCloseFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fiscal year"})
		return
	}

	answer, err := h.closingService.CanCloseFiscalYear(c.Request.Context(), companyID, year)
	if err != nil {
		logger.Error("Failed to check fiscal year close", slog.String("company_id", companyID), slog.String("error", err.Error()))
		c.JSON(statusForError(err), gin.H{"error": "Failed to check fiscal year"})
		return
	}
	c.JSON(http.StatusOK, dto.CanCloseResponse{CanClose: answer.CanClose, Reason: answer.Reason})
}

// listPeriods godoc
// @Summary List accounting periods
// @Description Lists the periods of a company, newest first, with token pagination.
// @Tags periods
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListPeriodsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 500 {object} map[string]string "Failed to list periods"
// @Security BearerAuth
// @Router /companies/{company_id}/periods [get]
func (h *closingHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.ListPeriodsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	periods, next, err := h.closingService.ListPeriods(c.Request.Context(), companyID, params.Limit, params.NextToken)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to list periods", slog.String("company_id", companyID), slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to list periods"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ToListPeriodsResponse(periods, next))
}

// getPeriod godoc
// @Summary Get an accounting period
// @Tags periods
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   period_id path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to retrieve period"
// @Security BearerAuth
// @Router /companies/{company_id}/periods/{period_id} [get]
func (h *closingHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	periodID := c.Param("period_id")

	period, err := h.closingService.GetPeriod(c.Request.Context(), companyID, periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
			return
		}
		logger.Error("Failed to get period", slog.String("period_id", periodID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve period"})
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func withMiddleware(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(mw)+1)
	return append(append(chain, mw...), h)
}

func bindPeriodRange(c *gin.Context) (start, end time.Time, ok bool) {
	var q dto.PeriodRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return start, end, false
	}
	s, errStart := dto.ParseDate(q.Start)
	e, errEnd := dto.ParseDate(q.End)
	if err := errors.Join(errStart, errEnd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period dates: " + err.Error()})
		return start, end, false
	}
	return s, e, true
}

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrAlreadyClosed), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
