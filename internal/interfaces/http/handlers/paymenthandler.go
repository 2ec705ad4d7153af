package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	usecases "marketplace/internal/application/payment/usecases"
	"marketplace/internal/interfaces/http/middleware"
	"marketplace/internal/shared/utils"
)

// PaymentHandler serves checkout creation and the browser redirects
// back from the provider.
type PaymentHandler struct {
	createPreferenceUC *usecases.CreatePreferenceUseCase
	processReturnUC    *usecases.ProcessReturnUseCase
}

func NewPaymentHandler(
	createPreferenceUC *usecases.CreatePreferenceUseCase,
	processReturnUC *usecases.ProcessReturnUseCase,
) *PaymentHandler {
	return &PaymentHandler{
		createPreferenceUC: createPreferenceUC,
		processReturnUC:    processReturnUC,
	}
}

type createPreferenceRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`
}

func (h *PaymentHandler) CreatePreference(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.createPreferenceUC.Execute(c.Request.Context(), usecases.CreatePreferenceCommand{
		UserID: userID,
		PlanID: req.PlanID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "checkout created")
}

// Success is the provider's approved-payment redirect. It races the
// webhook; whichever lands second sees already_processed.
func (h *PaymentHandler) Success(c *gin.Context) {
	result, err := h.processReturnUC.Execute(c.Request.Context(), usecases.ReturnCommand{
		PaymentID:         paymentIDFromQuery(c),
		ExternalReference: c.Query("external_reference"),
		Status:            c.Query("status"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "payment processed", result)
}

func (h *PaymentHandler) Failure(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "payment not completed", gin.H{
		"status": c.DefaultQuery("status", "rejected"),
	})
}

func (h *PaymentHandler) Pending(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "payment pending, plan activates on confirmation", gin.H{
		"status": c.DefaultQuery("status", "pending"),
	})
}

// paymentIDFromQuery accepts both parameter spellings the provider
// has used across API versions.
func paymentIDFromQuery(c *gin.Context) string {
	if id := c.Query("payment_id"); id != "" {
		return id
	}
	if id := c.Query("collection_id"); id != "" {
		if _, err := strconv.ParseInt(id, 10, 64); err == nil {
			return id
		}
	}
	return ""
}
