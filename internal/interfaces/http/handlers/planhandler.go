package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	activation "marketplace/internal/application/activation/usecases"
	"marketplace/internal/interfaces/http/middleware"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/utils"
)

// PlanHandler serves the catalog, direct plan activation and the
// stored portal credentials.
type PlanHandler struct {
	listPlansUC   *activation.ListPlansUseCase
	activateUC    *activation.ActivatePlanUseCase
	credentialsUC *activation.GetCredentialsUseCase
}

func NewPlanHandler(
	listPlansUC *activation.ListPlansUseCase,
	activateUC *activation.ActivatePlanUseCase,
	credentialsUC *activation.GetCredentialsUseCase,
) *PlanHandler {
	return &PlanHandler{
		listPlansUC:   listPlansUC,
		activateUC:    activateUC,
		credentialsUC: credentialsUC,
	}
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.listPlansUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "plan catalog", plans)
}

// Activate grants a free plan directly. Paid plans answer 402 and go
// through the payment preference endpoint instead.
func (h *PlanHandler) Activate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	planID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || planID == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid plan id")
		return
	}

	result, err := h.activateUC.Execute(c.Request.Context(), activation.ActivatePlanCommand{
		UserID: userID,
		PlanID: uint(planID),
	})
	if err != nil {
		respondActivationError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "plan activated", result)
}

func (h *PlanHandler) GetCredentials(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	creds, err := h.credentialsUC.Execute(c.Request.Context(),
		activation.GetCredentialsQuery{UserID: userID})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "portal credentials", creds)
}

// respondActivationError maps activation failure kinds onto HTTP
// statuses; other errors fall through to the generic mapping.
func respondActivationError(c *gin.Context, err error) {
	actErr := apperrors.GetActivationError(err)
	if actErr == nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	status := http.StatusBadGateway
	switch actErr.Kind {
	case apperrors.KindIdentityRequired, apperrors.KindPhoneUnverified:
		status = http.StatusBadRequest
	case apperrors.KindPlanNotFound:
		status = http.StatusNotFound
	case apperrors.KindPaymentRequired:
		status = http.StatusPaymentRequired
	case apperrors.KindFreePlanAlreadyGranted, apperrors.KindIdentityStateInconsistent:
		status = http.StatusConflict
	}
	utils.ErrorResponse(c, status, actErr.Message)
}
