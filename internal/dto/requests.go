package dto

// InitiateSignupOTPRequest starts the signup flow for a contact identity
type InitiateSignupOTPRequest struct {
	Details string `json:"details" binding:"required"`
	Type    string `json:"type" binding:"required,oneof=EMAIL PHONE_NUMBER"`
}

// VerifyOTPRequest redeems a signup OTP
type VerifyOTPRequest struct {
	OTP string `json:"otp" binding:"required,len=6"`
}

// CompleteSignupRequest finishes registration for a verified identity.
// Company fields are required for BUSINESS accounts; this is enforced in the
// service since it depends on the account type.
type CompleteSignupRequest struct {
	SignupFlowToken   string `json:"signupFlowToken" binding:"required"`
	Password          string `json:"password" binding:"required,min=8"`
	FirstName         string `json:"firstName" binding:"required"`
	LastName          string `json:"lastName" binding:"required"`
	AccountType       string `json:"accountType" binding:"required,oneof=BUSINESS PERSONAL"`
	CompanyName       string `json:"companyName"`
	CompanyWebsite    string `json:"companyWebsite"`
	CompanyCategory   string `json:"companyCategory"`
	BusinessStructure string `json:"businessStructure"`
	FinancialGoal     string `json:"financialGoal"`
}

// LoginRequest authenticates a user by email or phone number
type LoginRequest struct {
	Details  string `json:"details" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=EMAIL PHONE_NUMBER"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest starts a password reset. Exactly one of email or
// phone number must be set; the service enforces the exclusivity.
type ForgotPasswordRequest struct {
	Email       string `json:"email" binding:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty"`
}

// ResetPasswordRequest redeems a password reset OTP
type ResetPasswordRequest struct {
	OTP         string `json:"otp" binding:"required,len=6"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ResendOTPRequest reissues an OTP for a pending flow
type ResendOTPRequest struct {
	Context     string `json:"context" binding:"required,oneof=INITIATE_SIGNUP FORGOT_PASSWORD VERIFY_EMAIL LOGIN"`
	Email       string `json:"email" binding:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty"`
}
