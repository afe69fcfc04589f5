package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pocketmint/pocketmint-api/internal/dto"
	"github.com/pocketmint/pocketmint-api/internal/service"
)

// refreshCookiePath covers both the refresh and logout endpoints.
const refreshCookiePath = "/api/v1/auth"

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// InitiateSignupOTP starts the signup flow for a new contact identity
// @Summary Initiate signup
// @Description Create a pending account for an email or phone number and send it an OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.InitiateSignupOTPRequest true "Signup initiation request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/initiate-signup-otp [post]
func (h *AuthHandler) InitiateSignupOTP(c *gin.Context) {
	var req dto.InitiateSignupOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	message, err := h.authService.InitiateSignupOTP(c.Request.Context(), &req)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: message})
}

// VerifyOTP redeems a signup OTP
// @Summary Verify signup OTP
// @Description Redeem a signup OTP and receive a signup flow token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "OTP verification request"
// @Success 200 {object} dto.VerifyOTPResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	flowToken, err := h.authService.VerifyOTP(c.Request.Context(), req.OTP)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyOTPResponse{SignupFlowToken: flowToken})
}

// CompleteSignup finishes registration for a verified identity
// @Summary Complete signup
// @Description Set password and profile for a verified identity, consuming the signup flow token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.CompleteSignupRequest true "Signup completion request"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/complete-signup [post]
func (h *AuthHandler) CompleteSignup(c *gin.Context) {
	var req dto.CompleteSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.CompleteSignup(c.Request.Context(), &req); err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{Message: "Signup completed successfully"})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate a user by email or phone number and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req, c.Request.UserAgent())
	if err != nil {
		respondFlowError(c, err)
		return
	}

	setRefreshCookie(c, result.RefreshToken, result.RefreshTokenExpiresIn)

	c.JSON(http.StatusOK, authResponse(result))
}

// Refresh handles token refresh
// @Summary Refresh tokens
// @Description Rotate the refresh token and issue a new access token
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Refresh token not found in cookie",
		})
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	setRefreshCookie(c, result.RefreshToken, result.RefreshTokenExpiresIn)

	c.JSON(http.StatusOK, authResponse(result))
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the refresh token and clear the session cookie
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie("refresh_token")

	if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
		respondFlowError(c, err)
		return
	}

	// Clear refresh token cookie
	c.SetCookie("refresh_token", "", -1, refreshCookiePath, "", true, true)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// ForgotPassword starts a password reset
// @Summary Forgot password
// @Description Send a password reset OTP to the user's contact address
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Password reset request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "An OTP has been sent. Please use it to reset your password."})
}

// ResetPassword redeems a password reset OTP
// @Summary Reset password
// @Description Set a new password using a password reset OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Password reset confirmation"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password reset successfully"})
}

// ResendOTP reissues the OTP for a pending flow
// @Summary Resend OTP
// @Description Invalidate the previous OTP for the flow and send a new one
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResendOTPRequest true "OTP resend request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req dto.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.ResendOTP(c.Request.Context(), &req); err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "OTP has been resent"})
}

// GetMe handles getting current user profile
// @Summary Get current user profile
// @Description Get information about the current authenticated user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID.(string))
	if err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.AccessTokenExpiresIn,
		User:        result.User,
	}
}

// setRefreshCookie stores the refresh token in an httpOnly cookie scoped to
// the auth endpoints.
func setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie("refresh_token", token, maxAge, refreshCookiePath, "", true, true)
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Validation failed",
		Message: err.Error(),
	})
}

// respondFlowError maps a service failure to its HTTP status. Untyped errors
// are infrastructure failures and surface as 500.
func respondFlowError(c *gin.Context, err error) {
	var flowErr *service.Error
	if errors.As(err, &flowErr) {
		status := flowErr.Status()
		c.JSON(status, dto.ErrorResponse{
			Error:   http.StatusText(status),
			Message: flowErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal server error",
		Message: err.Error(),
	})
}
