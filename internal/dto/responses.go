package dto

// VerifyOTPResponse carries the flow token bridging OTP verification and
// signup completion
type VerifyOTPResponse struct {
	SignupFlowToken string `json:"signupFlowToken"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// UserInfo represents user information in an auth response
type UserInfo struct {
	ID          string  `json:"id"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
}

// UserResponse represents a user profile response
type UserResponse struct {
	ID              string  `json:"id"`
	Email           *string `json:"email"`
	PhoneNumber     *string `json:"phone_number"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	AccountType     *string `json:"account_type"`
	FinancialGoal   *string `json:"financial_goal"`
	IsVerified      bool    `json:"is_verified"`
	IsEmailVerified bool    `json:"is_email_verified"`
	IsPhoneVerified bool    `json:"is_phone_verified"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
