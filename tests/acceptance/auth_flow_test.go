package acceptance

import (
	"fmt"
	"net/http"

	"github.com/pocketmint/pocketmint-api/internal/dto"
)

// signupVerifiedUser drives the full signup flow for an email identity.
func (s *Suite) signupVerifiedUser(email, password string) {
	resp := s.postJSON("/api/v1/auth/initiate-signup-otp", dto.InitiateSignupOTPRequest{
		Details: email,
		Type:    "EMAIL",
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	verifyResp := s.postJSON("/api/v1/auth/verify-otp", dto.VerifyOTPRequest{OTP: s.Publisher.lastOTP()})
	defer verifyResp.Body.Close()
	s.Require().Equal(http.StatusOK, verifyResp.StatusCode)

	var verified dto.VerifyOTPResponse
	s.decodeJSON(verifyResp.Body, &verified)
	s.Require().NotEmpty(verified.SignupFlowToken)

	completeResp := s.postJSON("/api/v1/auth/complete-signup", dto.CompleteSignupRequest{
		SignupFlowToken: verified.SignupFlowToken,
		Password:        password,
		FirstName:       "Ada",
		LastName:        "Lovelace",
		AccountType:     "PERSONAL",
	})
	defer completeResp.Body.Close()
	s.Require().Equal(http.StatusCreated, completeResp.StatusCode)
}

// login authenticates and returns the auth response plus the session cookies.
func (s *Suite) login(email, password string) (dto.AuthResponse, []*http.Cookie) {
	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Details:  email,
		Type:     "EMAIL",
		Password: password,
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	s.decodeJSON(resp.Body, &authResp)
	return authResp, resp.Cookies()
}

func (s *Suite) TestSignupFlow() {
	email := "signup@example.com"

	resp := s.postJSON("/api/v1/auth/initiate-signup-otp", dto.InitiateSignupOTPRequest{
		Details: email,
		Type:    "EMAIL",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var initResp dto.SuccessResponse
	s.decodeJSON(resp.Body, &initResp)
	s.Contains(initResp.Message, "email")

	otp := s.Publisher.lastOTP()
	s.Require().Len(otp, 6)

	// A wrong OTP of the right shape is rejected as absent
	badResp := s.postJSON("/api/v1/auth/verify-otp", dto.VerifyOTPRequest{OTP: "999999"})
	defer badResp.Body.Close()
	s.Equal(http.StatusNotFound, badResp.StatusCode)

	verifyResp := s.postJSON("/api/v1/auth/verify-otp", dto.VerifyOTPRequest{OTP: otp})
	defer verifyResp.Body.Close()
	s.Equal(http.StatusOK, verifyResp.StatusCode)

	var verified dto.VerifyOTPResponse
	s.decodeJSON(verifyResp.Body, &verified)
	s.NotEmpty(verified.SignupFlowToken)

	completeResp := s.postJSON("/api/v1/auth/complete-signup", dto.CompleteSignupRequest{
		SignupFlowToken: verified.SignupFlowToken,
		Password:        "Password123",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		AccountType:     "PERSONAL",
	})
	defer completeResp.Body.Close()
	s.Equal(http.StatusCreated, completeResp.StatusCode)

	authResp, cookies := s.login(email, "Password123")
	s.NotEmpty(authResp.AccessToken)
	s.Equal("Bearer", authResp.TokenType)
	s.NotEmpty(cookies, "Should have refresh token cookie")

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	meResp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Equal(http.StatusOK, meResp.StatusCode)

	var userResp dto.UserResponse
	s.decodeJSON(meResp.Body, &userResp)
	s.Require().NotNil(userResp.Email)
	s.Equal(email, *userResp.Email)
	s.True(userResp.IsVerified)
	s.True(userResp.IsEmailVerified)
	s.False(userResp.IsPhoneVerified)
}

func (s *Suite) TestInitiateSignup_DuplicateContact() {
	req := dto.InitiateSignupOTPRequest{Details: "dup@example.com", Type: "EMAIL"}

	first := s.postJSON("/api/v1/auth/initiate-signup-otp", req)
	first.Body.Close()
	s.Equal(http.StatusOK, first.StatusCode)

	second := s.postJSON("/api/v1/auth/initiate-signup-otp", req)
	defer second.Body.Close()
	s.Equal(http.StatusConflict, second.StatusCode)

	var errResp dto.ErrorResponse
	s.decodeJSON(second.Body, &errResp)
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestVerifyOTP_MalformedCode() {
	resp := s.postJSON("/api/v1/auth/verify-otp", dto.VerifyOTPRequest{OTP: "123"})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestSignupFlowToken_SingleUse() {
	email := "singleuse@example.com"

	initResp := s.postJSON("/api/v1/auth/initiate-signup-otp", dto.InitiateSignupOTPRequest{
		Details: email,
		Type:    "EMAIL",
	})
	initResp.Body.Close()

	verifyResp := s.postJSON("/api/v1/auth/verify-otp", dto.VerifyOTPRequest{OTP: s.Publisher.lastOTP()})
	defer verifyResp.Body.Close()

	var verified dto.VerifyOTPResponse
	s.decodeJSON(verifyResp.Body, &verified)

	complete := dto.CompleteSignupRequest{
		SignupFlowToken: verified.SignupFlowToken,
		Password:        "Password123",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		AccountType:     "PERSONAL",
	}

	first := s.postJSON("/api/v1/auth/complete-signup", complete)
	first.Body.Close()
	s.Equal(http.StatusCreated, first.StatusCode)

	second := s.postJSON("/api/v1/auth/complete-signup", complete)
	defer second.Body.Close()
	s.Equal(http.StatusNotFound, second.StatusCode)
}

func (s *Suite) TestLogin_InvalidCredentials() {
	s.signupVerifiedUser("login@example.com", "Password123")

	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Details:  "login@example.com",
		Type:     "EMAIL",
		Password: "WrongPassword123",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.decodeJSON(resp.Body, &errResp)
	s.Equal("Unauthorized", errResp.Error)
}

func (s *Suite) TestLogin_UnverifiedUser() {
	resp := s.postJSON("/api/v1/auth/initiate-signup-otp", dto.InitiateSignupOTPRequest{
		Details: "pending@example.com",
		Type:    "EMAIL",
	})
	resp.Body.Close()

	loginResp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Details:  "pending@example.com",
		Type:     "EMAIL",
		Password: "Password123",
	})
	defer loginResp.Body.Close()
	s.Equal(http.StatusUnauthorized, loginResp.StatusCode)
}

func (s *Suite) TestRefresh_RotatesToken() {
	s.signupVerifiedUser("rotate@example.com", "Password123")
	_, cookies := s.login("rotate@example.com", "Password123")
	s.Require().NotEmpty(cookies)

	refreshReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range cookies {
		refreshReq.AddCookie(cookie)
	}

	refreshResp, err := http.DefaultClient.Do(refreshReq)
	s.Require().NoError(err)
	defer refreshResp.Body.Close()
	s.Equal(http.StatusOK, refreshResp.StatusCode)

	var authResp dto.AuthResponse
	s.decodeJSON(refreshResp.Body, &authResp)
	s.NotEmpty(authResp.AccessToken)
	s.NotEmpty(refreshResp.Cookies())

	// The consumed refresh token no longer works
	replayReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range cookies {
		replayReq.AddCookie(cookie)
	}

	replayResp, err := http.DefaultClient.Do(replayReq)
	s.Require().NoError(err)
	defer replayResp.Body.Close()
	s.Equal(http.StatusUnauthorized, replayResp.StatusCode)
}

func (s *Suite) TestRefresh_NoCookie() {
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestSecondLogin_RevokesFirstSession() {
	s.signupVerifiedUser("sessions@example.com", "Password123")

	_, firstCookies := s.login("sessions@example.com", "Password123")
	_, secondCookies := s.login("sessions@example.com", "Password123")
	s.Require().NotEmpty(secondCookies)

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range firstCookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogout() {
	s.signupVerifiedUser("logout@example.com", "Password123")
	authResp, cookies := s.login("logout@example.com", "Password123")

	logoutReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)
	logoutReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))
	for _, cookie := range cookies {
		logoutReq.AddCookie(cookie)
	}

	logoutResp, err := http.DefaultClient.Do(logoutReq)
	s.Require().NoError(err)
	defer logoutResp.Body.Close()
	s.Equal(http.StatusOK, logoutResp.StatusCode)

	var successResp dto.SuccessResponse
	s.decodeJSON(logoutResp.Body, &successResp)
	s.Equal("Logged out successfully", successResp.Message)

	// The revoked refresh token no longer works
	refreshReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range cookies {
		refreshReq.AddCookie(cookie)
	}

	refreshResp, err := http.DefaultClient.Do(refreshReq)
	s.Require().NoError(err)
	defer refreshResp.Body.Close()
	s.Equal(http.StatusUnauthorized, refreshResp.StatusCode)
}

func (s *Suite) TestForgotAndResetPassword() {
	s.signupVerifiedUser("reset@example.com", "Password123")

	forgotResp := s.postJSON("/api/v1/auth/forgot-password", dto.ForgotPasswordRequest{Email: "reset@example.com"})
	defer forgotResp.Body.Close()
	s.Equal(http.StatusOK, forgotResp.StatusCode)

	resetResp := s.postJSON("/api/v1/auth/reset-password", dto.ResetPasswordRequest{
		OTP:         s.Publisher.lastOTP(),
		NewPassword: "NewPassword456",
	})
	defer resetResp.Body.Close()
	s.Equal(http.StatusOK, resetResp.StatusCode)

	oldResp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Details:  "reset@example.com",
		Type:     "EMAIL",
		Password: "Password123",
	})
	defer oldResp.Body.Close()
	s.Equal(http.StatusUnauthorized, oldResp.StatusCode)

	authResp, _ := s.login("reset@example.com", "NewPassword456")
	s.NotEmpty(authResp.AccessToken)
}

func (s *Suite) TestForgotPassword_UnknownUser() {
	resp := s.postJSON("/api/v1/auth/forgot-password", dto.ForgotPasswordRequest{Email: "nobody@example.com"})
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestResendOTP_InvalidatesPrevious() {
	resp := s.postJSON("/api/v1/auth/initiate-signup-otp", dto.InitiateSignupOTPRequest{
		Details: "resend@example.com",
		Type:    "EMAIL",
	})
	resp.Body.Close()
	firstOTP := s.Publisher.lastOTP()

	resendResp := s.postJSON("/api/v1/auth/resend-otp", dto.ResendOTPRequest{
		Context: "INITIATE_SIGNUP",
		Email:   "resend@example.com",
	})
	defer resendResp.Body.Close()
	s.Equal(http.StatusOK, resendResp.StatusCode)

	secondOTP := s.Publisher.lastOTP()
	s.Require().NotEqual(firstOTP, secondOTP)

	oldResp := s.postJSON("/api/v1/auth/verify-otp", dto.VerifyOTPRequest{OTP: firstOTP})
	defer oldResp.Body.Close()
	s.Equal(http.StatusNotFound, oldResp.StatusCode)

	newResp := s.postJSON("/api/v1/auth/verify-otp", dto.VerifyOTPRequest{OTP: secondOTP})
	defer newResp.Body.Close()
	s.Equal(http.StatusOK, newResp.StatusCode)
}
