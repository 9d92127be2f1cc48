package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/satriawan/awardsearch/internal/models"
	"github.com/satriawan/awardsearch/internal/search"
)

type SearchHandler struct {
	service *search.Service
}

func NewSearchHandler(service *search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search handles POST /api/v1/awards/search. Validation problems are the
// only 4xx; provider outages come back as 200 with diagnostics so the
// caller can render a partial-failure banner.
func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var criteria models.SearchCriteria
	if err := c.Bind(&criteria); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if criteria.ReturnDate != nil && *criteria.ReturnDate != "" {
		resp, err := h.service.AggregateRoundTrip(ctx, criteria)
		if err != nil {
			return validationResponse(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}

	resp, err := h.service.Aggregate(ctx, criteria)
	if err != nil {
		return validationResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func validationResponse(c echo.Context, err error) error {
	var verr models.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: verr.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "search_error",
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
