package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usecases "marketplace/internal/application/user/usecases"
	"marketplace/internal/interfaces/http/middleware"
	"marketplace/internal/shared/utils"
)

// AuthHandler serves registration, login and email verification.
type AuthHandler struct {
	registerUC    *usecases.RegisterUserUseCase
	loginUC       *usecases.LoginUseCase
	verifyEmailUC *usecases.VerifyEmailUseCase
	resendUC      *usecases.ResendVerificationUseCase
}

func NewAuthHandler(
	registerUC *usecases.RegisterUserUseCase,
	loginUC *usecases.LoginUseCase,
	verifyEmailUC *usecases.VerifyEmailUseCase,
	resendUC *usecases.ResendVerificationUseCase,
) *AuthHandler {
	return &AuthHandler{
		registerUC:    registerUC,
		loginUC:       loginUC,
		verifyEmailUC: verifyEmailUC,
		resendUC:      resendUC,
	}
}

type registerRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Phone          string `json:"phone"`
	IdentityNumber string `json:"identity_number"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.IdentityNumber != "" && !utils.IsValidRFC(req.IdentityNumber) {
		utils.ErrorResponse(c, http.StatusBadRequest, "identity_number must be a valid RFC")
		return
	}

	result, err := h.registerUC.Execute(c.Request.Context(), usecases.RegisterUserCommand{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		IdentityNumber: req.IdentityNumber,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "account created, verification email sent")
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.loginUC.Execute(c.Request.Context(), usecases.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "login successful", result)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.resendUC.Execute(c.Request.Context(), userID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "verification email sent", nil)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	err := h.verifyEmailUC.Execute(c.Request.Context(), usecases.VerifyEmailCommand{Token: token})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "email verified", nil)
}
