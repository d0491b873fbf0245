// internal/handlers/otp/otp_handler.go
package otp

import (
	"net/http"

	"estatedesk-service/internal/domain/otp"
	"estatedesk-service/internal/middleware"
	"estatedesk-service/internal/pkg/response"
	service "estatedesk-service/internal/service/otp"

	"github.com/gin-gonic/gin"
)

type OTPHandler struct {
	otpService *service.Service
}

func NewOTPHandler(otpService *service.Service) *OTPHandler {
	return &OTPHandler{
		otpService: otpService,
	}
}

// Send issues a verification code for an association
func (h *OTPHandler) Send(c *gin.Context) {
	var req otp.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.otpService.Send(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to send verification code", err)
		return
	}

	response.Success(c, http.StatusOK, "verification code issued", result)
}

// Verify checks a submitted code
func (h *OTPHandler) Verify(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var req otp.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.otpService.Verify(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, "verification failed", err)
		return
	}

	response.Success(c, http.StatusOK, "phone verified", result)
}
