package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/services"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/utils"
)

type OrderingHandler struct {
	BaseHandler
	service services.OrderingService
}

func NewOrderingHandler(service services.OrderingService, logger utils.Logger) *OrderingHandler {
	return &OrderingHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// PreviewOrdering sequences inline questions or stored ones by id
// @Summary Preview ordering
// @Description Computes the presentation order without starting a session
// @Tags orderings
// @Accept json
// @Produce json
// @Param request body services.OrderPreviewRequest true "Questions and option overrides"
// @Success 200 {object} services.OrderingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Unknown question ids"
// @Router /orderings/preview [post]
func (h *OrderingHandler) PreviewOrdering(c *gin.Context) {
	var req services.OrderPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	response, err := h.service.Preview(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ValidateResult compares a scored result with an expected one
// @Summary Validate result
// @Tags results
// @Accept json
// @Produce json
// @Param request body services.ValidateResultRequest true "Actual and expected results"
// @Success 200 {object} results.Report
// @Failure 400 {object} ErrorResponse
// @Router /results/validate [post]
func (h *OrderingHandler) ValidateResult(c *gin.Context) {
	var req services.ValidateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	report, err := h.service.ValidateResult(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
