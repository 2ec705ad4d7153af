package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usecases "marketplace/internal/application/user/usecases"
	"marketplace/internal/interfaces/http/middleware"
	"marketplace/internal/shared/utils"
)

// PhoneHandler serves the WhatsApp verification round-trip.
type PhoneHandler struct {
	phoneUC *usecases.PhoneVerificationUseCase
}

func NewPhoneHandler(phoneUC *usecases.PhoneVerificationUseCase) *PhoneHandler {
	return &PhoneHandler{phoneUC: phoneUC}
}

type sendCodeRequest struct {
	Phone string `json:"phone"`
}

func (h *PhoneHandler) SendCode(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	err := h.phoneUC.SendCode(c.Request.Context(), usecases.SendPhoneCodeCommand{
		UserID: userID,
		Phone:  req.Phone,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "verification code sent", nil)
}

type verifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *PhoneHandler) VerifyCode(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	err := h.phoneUC.VerifyCode(c.Request.Context(), usecases.VerifyPhoneCodeCommand{
		UserID: userID,
		Code:   req.Code,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "phone verified", nil)
}
