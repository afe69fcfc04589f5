package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pocketmint/pocketmint-api/internal/aggregator"
	"github.com/pocketmint/pocketmint-api/internal/domain"
	"github.com/pocketmint/pocketmint-api/internal/dto"
	"github.com/pocketmint/pocketmint-api/internal/notification"
	"github.com/pocketmint/pocketmint-api/internal/repository"
	"github.com/pocketmint/pocketmint-api/internal/utils"
)

// tokenCreateAttempts bounds retries when a freshly minted token value
// collides with an existing row.
const tokenCreateAttempts = 3

type authService struct {
	users          repository.UserRepository
	tokens         repository.TokenRepository
	linkedAccounts repository.LinkedAccountRepository
	jwt            *utils.JWTManager
	otp            utils.OTPSource
	hasher         utils.PasswordHasher
	publisher      notification.Publisher
	aggregator     aggregator.Client
	logger         *zap.Logger

	otpTTL       time.Duration
	flowTokenTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	linkedAccounts repository.LinkedAccountRepository,
	jwtManager *utils.JWTManager,
	otpSource utils.OTPSource,
	hasher utils.PasswordHasher,
	publisher notification.Publisher,
	aggregatorClient aggregator.Client,
	logger *zap.Logger,
	otpTTL time.Duration,
	flowTokenTTL time.Duration,
) AuthService {
	return &authService{
		users:          users,
		tokens:         tokens,
		linkedAccounts: linkedAccounts,
		jwt:            jwtManager,
		otp:            otpSource,
		hasher:         hasher,
		publisher:      publisher,
		aggregator:     aggregatorClient,
		logger:         logger,
		otpTTL:         otpTTL,
		flowTokenTTL:   flowTokenTTL,
	}
}

// InitiateSignupOTP creates an incomplete user for a new contact identity and
// sends it a signup OTP. Returns the confirmation message for the client.
func (s *authService) InitiateSignupOTP(ctx context.Context, req *dto.InitiateSignupOTPRequest) (string, error) {
	method := domain.VerificationMethod(req.Type)

	value, err := normalizeContact(req.Details, method)
	if err != nil {
		return "", err
	}

	_, err = s.users.GetByContact(ctx, value, method)
	if err == nil {
		return "", failConflict("user already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("failed to check user existence: %w", err)
	}

	user := &domain.User{VerificationMethod: method}
	if method == domain.VerificationMethodEmail {
		user.Email = &value
	} else {
		user.PhoneNumber = &value
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) || errors.Is(err, repository.ErrDuplicatePhoneNumber) {
			return "", failConflict("user already exists")
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueExclusiveOTP(ctx, user.ID, domain.TokenTypeInitiateSignupOTP)
	if err != nil {
		return "", err
	}

	s.publish(ctx, notification.Message{
		Channel:   channelFor(method),
		Recipient: value,
		Template:  notification.TemplateSignupOTP,
		Data:      map[string]string{"otp": token.Value},
	})

	s.logger.Info("signup initiated",
		zap.String("user_id", user.ID),
		zap.String("method", string(method)),
	)

	channelWord := "email"
	if method == domain.VerificationMethodPhone {
		channelWord = "phone"
	}
	return fmt.Sprintf("An OTP has been sent. Please check your %s for the OTP.", channelWord), nil
}

// VerifyOTP redeems a signup OTP, marks the user verified and returns a
// signup flow token gating the completion step.
func (s *authService) VerifyOTP(ctx context.Context, otp string) (string, error) {
	token, err := s.tokens.GetByOTP(ctx, otp)
	if errors.Is(err, repository.ErrNotFound) {
		return "", failNotFound("invalid or expired OTP")
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up otp: %w", err)
	}

	if token.IsExpired() {
		if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("failed to delete expired otp", zap.Error(err))
		}
		return "", failExpired("invalid or expired OTP")
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", failNotFound("user not found")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	// GetByOTP is type-agnostic, so a verified user's reset or login OTP
	// would otherwise redeem here into a signup flow token. Reject before
	// consuming so the OTP stays usable in its own flow.
	if user.IsVerified {
		return "", failValidation("user already verified")
	}

	// Redemption is the delete: a concurrent request racing on the same OTP
	// loses when the row is already gone.
	if err := s.tokens.Delete(ctx, token.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", failNotFound("invalid or expired OTP")
		}
		return "", fmt.Errorf("failed to consume otp: %w", err)
	}

	verified := true
	update := &repository.UserUpdate{IsVerified: &verified}
	if user.VerificationMethod == domain.VerificationMethodEmail {
		update.IsEmailVerified = &verified
	} else {
		update.IsPhoneVerified = &verified
	}
	if err := s.users.Update(ctx, user.ID, update); err != nil {
		return "", fmt.Errorf("failed to mark user verified: %w", err)
	}

	flowToken, err := s.createFlowToken(ctx, user.ID)
	if err != nil {
		return "", err
	}

	s.logger.Info("otp verified", zap.String("user_id", user.ID))

	return flowToken.Value, nil
}

// CompleteSignup sets the user's password and profile, creates the aggregator
// account and consumes the signup flow token.
func (s *authService) CompleteSignup(ctx context.Context, req *dto.CompleteSignupRequest) error {
	token, err := s.tokens.GetByToken(ctx, req.SignupFlowToken, domain.TokenTypeSignupFlow)
	if errors.Is(err, repository.ErrNotFound) {
		return failNotFound("invalid or expired signup flow token")
	}
	if err != nil {
		return fmt.Errorf("failed to look up signup flow token: %w", err)
	}

	if token.IsExpired() {
		if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("failed to delete expired signup flow token", zap.Error(err))
		}
		return failExpired("invalid or expired signup flow token")
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return failNotFound("user not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	accountType := domain.AccountType(req.AccountType)
	if accountType == domain.AccountTypeBusiness && req.CompanyName == "" {
		return failValidation("company name is required for business accounts")
	}

	if !utils.ValidatePassword(req.Password) {
		return failValidation("password must be at least 8 characters and contain an uppercase letter, a lowercase letter and a number")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	update := &repository.UserUpdate{
		FirstName:    &req.FirstName,
		LastName:     &req.LastName,
		AccountType:  &accountType,
		PasswordHash: &hash,
	}
	setIfPresent(&update.CompanyName, req.CompanyName)
	setIfPresent(&update.CompanyWebsite, req.CompanyWebsite)
	setIfPresent(&update.CompanyCategory, req.CompanyCategory)
	setIfPresent(&update.BusinessStructure, req.BusinessStructure)
	setIfPresent(&update.FinancialGoal, req.FinancialGoal)

	if err := s.users.Update(ctx, user.ID, update); err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	account, err := s.aggregator.CreateLinkedAccount(ctx, user.ID, email)
	if err != nil {
		return failDependency("failed to create linked account", err)
	}

	linked := &domain.LinkedAccount{
		UserID:     user.ID,
		ExternalID: account.ExternalID,
		Email:      user.Email,
	}
	if err := s.linkedAccounts.Create(ctx, linked); err != nil && !errors.Is(err, repository.ErrDuplicateLinkedAccount) {
		return fmt.Errorf("failed to save linked account: %w", err)
	}

	if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to consume signup flow token: %w", err)
	}

	s.logger.Info("signup completed",
		zap.String("user_id", user.ID),
		zap.String("account_type", string(accountType)),
	)

	return nil
}

// Login authenticates a user by contact identity and password. All previous
// sessions are revoked before the new one is issued.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, userAgent string) (*AuthResult, error) {
	method := domain.VerificationMethod(req.Type)

	value, err := normalizeContact(req.Details, method)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByContact(ctx, value, method)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, failInvalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.PasswordHash == nil || !s.hasher.Compare(req.Password, *user.PasswordHash) {
		return nil, failInvalidCredentials()
	}

	if !user.IsVerified {
		return nil, failUnauthorized("user is not verified")
	}

	if err := s.tokens.DeleteRefreshTokens(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke previous sessions: %w", err)
	}

	var ua *string
	if userAgent != "" {
		ua = &userAgent
	}

	result, err := s.issueSession(ctx, user, ua)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))

	return result, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// session is issued in its place.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, failUnauthorized("invalid refresh token")
	}

	record, err := s.tokens.GetByToken(ctx, refreshToken, domain.TokenTypeRefresh)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, failUnauthorized("invalid refresh token")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if record.IsExpired() {
		if err := s.tokens.Delete(ctx, record.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("failed to delete expired refresh token", zap.Error(err))
		}
		return nil, failUnauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, failUnauthorized("invalid refresh token")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.tokens.Delete(ctx, record.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, failUnauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	return s.issueSession(ctx, user, record.UserAgent)
}

// Logout revokes the presented refresh token. Logging out with an unknown or
// already-revoked token succeeds.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	err := s.tokens.DeleteByToken(ctx, refreshToken, domain.TokenTypeRefresh)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// ForgotPassword sends a password reset OTP to a verified user's contact
// address.
func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	value, method, err := exclusiveContact(req.Email, req.PhoneNumber)
	if err != nil {
		return err
	}

	user, err := s.users.GetByContact(ctx, value, method)
	if errors.Is(err, repository.ErrNotFound) {
		return failNotFound("user not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsVerified {
		return failValidation("user is not verified. Please verify your account")
	}

	token, err := s.issueExclusiveOTP(ctx, user.ID, domain.TokenTypeForgotPasswordOTP)
	if err != nil {
		return err
	}

	s.publish(ctx, notification.Message{
		Channel:   channelFor(method),
		Recipient: value,
		Template:  notification.TemplateResetOTP,
		Data:      map[string]string{"otp": token.Value},
	})

	s.logger.Info("password reset requested", zap.String("user_id", user.ID))

	return nil
}

// ResetPassword redeems a password reset OTP and sets the new password.
func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	token, err := s.tokens.GetByToken(ctx, req.OTP, domain.TokenTypeForgotPasswordOTP)
	if errors.Is(err, repository.ErrNotFound) {
		return failNotFound("invalid or expired OTP")
	}
	if err != nil {
		return fmt.Errorf("failed to look up otp: %w", err)
	}

	if token.IsExpired() {
		if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("failed to delete expired otp", zap.Error(err))
		}
		return failExpired("invalid or expired OTP")
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return failNotFound("user not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	// Pre-signup accounts have no password to reset; the hash is only ever
	// set by complete-signup.
	if !user.IsVerified {
		return failValidation("user is not verified. Please verify your account")
	}

	if !utils.ValidatePassword(req.NewPassword) {
		return failValidation("password must be at least 8 characters and contain an uppercase letter, a lowercase letter and a number")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.Update(ctx, user.ID, &repository.UserUpdate{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokens.DeleteByUserAndType(ctx, user.ID, domain.TokenTypeForgotPasswordOTP); err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}

	s.logger.Info("password reset completed", zap.String("user_id", user.ID))

	return nil
}

// ResendOTP reissues the OTP for a pending flow, invalidating the previous
// one of the same type.
func (s *authService) ResendOTP(ctx context.Context, req *dto.ResendOTPRequest) error {
	value, method, err := exclusiveContact(req.Email, req.PhoneNumber)
	if err != nil {
		return err
	}

	user, err := s.users.GetByContact(ctx, value, method)
	if errors.Is(err, repository.ErrNotFound) {
		return failNotFound("user not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if method != user.VerificationMethod {
		if user.VerificationMethod == domain.VerificationMethodEmail {
			return failValidation("user verification method is email")
		}
		return failValidation("user verification method is phone number")
	}

	var tokenType domain.TokenType
	var template notification.Template
	switch req.Context {
	case "INITIATE_SIGNUP", "VERIFY_EMAIL":
		if user.IsVerified {
			return failValidation("user already verified")
		}
		tokenType = domain.TokenTypeInitiateSignupOTP
		template = notification.TemplateSignupOTP
	case "FORGOT_PASSWORD":
		tokenType = domain.TokenTypeForgotPasswordOTP
		template = notification.TemplateResetOTP
	case "LOGIN":
		tokenType = domain.TokenTypeLoginOTP
		template = notification.TemplateLoginOTP
	default:
		return failValidation("unknown otp context")
	}

	token, err := s.issueExclusiveOTP(ctx, user.ID, tokenType)
	if err != nil {
		return err
	}

	s.publish(ctx, notification.Message{
		Channel:   channelFor(method),
		Recipient: user.Contact(),
		Template:  template,
		Data:      map[string]string{"otp": token.Value, "context": req.Context},
	})

	s.logger.Info("otp resent",
		zap.String("user_id", user.ID),
		zap.String("context", req.Context),
	)

	return nil
}

// GetUser returns the profile of a user by ID.
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, failNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	resp := &dto.UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		PhoneNumber:     user.PhoneNumber,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		FinancialGoal:   user.FinancialGoal,
		IsVerified:      user.IsVerified,
		IsEmailVerified: user.IsEmailVerified,
		IsPhoneVerified: user.IsPhoneVerified,
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       user.UpdatedAt.Format(time.RFC3339),
	}
	if user.AccountType != nil {
		accountType := string(*user.AccountType)
		resp.AccountType = &accountType
	}

	return resp, nil
}

// ValidateToken validates an access token and returns its claims.
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, failUnauthorized("invalid or expired token")
	}
	return claims, nil
}

// issueExclusiveOTP mints and persists an OTP of the given type, invalidating
// any previous token of the same type for the user first.
func (s *authService) issueExclusiveOTP(ctx context.Context, userID string, tokenType domain.TokenType) (*domain.Token, error) {
	if err := s.tokens.DeleteByUserAndType(ctx, userID, tokenType); err != nil {
		return nil, fmt.Errorf("failed to invalidate previous tokens: %w", err)
	}

	for attempt := 0; attempt < tokenCreateAttempts; attempt++ {
		code, err := s.otp.OTP()
		if err != nil {
			return nil, fmt.Errorf("failed to generate otp: %w", err)
		}

		token := &domain.Token{
			UserID:    userID,
			Value:     code,
			Type:      tokenType,
			ExpiresAt: time.Now().Add(s.otpTTL),
		}

		err = s.tokens.Create(ctx, token)
		if errors.Is(err, repository.ErrDuplicateToken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save otp: %w", err)
		}
		return token, nil
	}

	return nil, fmt.Errorf("failed to mint otp after %d attempts", tokenCreateAttempts)
}

// createFlowToken mints and persists a signup flow token.
func (s *authService) createFlowToken(ctx context.Context, userID string) (*domain.Token, error) {
	for attempt := 0; attempt < tokenCreateAttempts; attempt++ {
		token := &domain.Token{
			UserID:    userID,
			Value:     s.otp.FlowToken(),
			Type:      domain.TokenTypeSignupFlow,
			ExpiresAt: time.Now().Add(s.flowTokenTTL),
		}

		err := s.tokens.Create(ctx, token)
		if errors.Is(err, repository.ErrDuplicateToken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save signup flow token: %w", err)
		}
		return token, nil
	}

	return nil, fmt.Errorf("failed to mint signup flow token after %d attempts", tokenCreateAttempts)
}

// publish delivers a notification fire-and-forget: failures are logged and
// never fail the calling flow.
func (s *authService) publish(ctx context.Context, msg notification.Message) {
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Error("notification delivery failed",
			zap.String("template", string(msg.Template)),
			zap.Error(err),
		)
	}
}

// normalizeContact sanitizes and validates a contact identity against the
// declared method.
func normalizeContact(value string, method domain.VerificationMethod) (string, error) {
	switch method {
	case domain.VerificationMethodEmail:
		value = utils.SanitizeEmail(value)
		if !utils.ValidateEmail(value) {
			return "", failValidation("invalid email")
		}
	case domain.VerificationMethodPhone:
		value = utils.SanitizePhoneNumber(value)
		if !utils.ValidatePhoneNumber(value) {
			return "", failValidation("invalid phone number")
		}
	default:
		return "", failValidation("invalid verification method")
	}
	return value, nil
}

// exclusiveContact resolves a request carrying optional email and phone
// fields of which exactly one must be set.
func exclusiveContact(email, phoneNumber string) (string, domain.VerificationMethod, error) {
	if (email == "") == (phoneNumber == "") {
		return "", "", failValidation("provide exactly one of email or phone number")
	}
	if email != "" {
		return normalizeContactWithMethod(email, domain.VerificationMethodEmail)
	}
	return normalizeContactWithMethod(phoneNumber, domain.VerificationMethodPhone)
}

func normalizeContactWithMethod(value string, method domain.VerificationMethod) (string, domain.VerificationMethod, error) {
	normalized, err := normalizeContact(value, method)
	if err != nil {
		return "", "", err
	}
	return normalized, method, nil
}

func channelFor(method domain.VerificationMethod) notification.Channel {
	if method == domain.VerificationMethodPhone {
		return notification.ChannelSMS
	}
	return notification.ChannelEmail
}

func setIfPresent(dst **string, value string) {
	if value != "" {
		*dst = &value
	}
}
