package clients

import (
	"net/http"

	"go.uber.org/zap"

	"bootstrapbugz/backend/libs/models"
)

// DefaultAuthURL is the auth API root of a local backend.
const DefaultAuthURL = "localhost:8181/v1.0/auth"

// AuthService issues authentication lifecycle requests.
type AuthService struct {
	base *BaseClient
}

// NewAuthService returns client.
func NewAuthService(baseURL string, httpClient HTTPDoer, logger *zap.Logger) *AuthService {
	return &AuthService{base: NewBaseClient(baseURL, httpClient, logger)}
}

// Login posts credentials. The result is the whole response because the backend
// answers with session headers rather than a body.
func (s *AuthService) Login(req models.LoginRequest) *Call[*Response] {
	return newCall(s.base, http.MethodPost, "/login", decodeFull).withBody(req)
}

// Logout ends the current session.
func (s *AuthService) Logout() *Call[NoContent] {
	return newCall(s.base, http.MethodGet, "/logout", decodeNone)
}

// SignUp registers an account.
func (s *AuthService) SignUp(req models.SignUpRequest) *Call[models.SimpleUser] {
	return newCall(s.base, http.MethodPost, "/sign-up", decodeJSON[models.SimpleUser]).withBody(req)
}

// ConfirmRegistration activates an account with the mailed token.
func (s *AuthService) ConfirmRegistration(token string) *Call[NoContent] {
	return newCall(s.base, http.MethodGet, "/confirm-registration", decodeNone).withQuery("token", token)
}

// ResendConfirmationEmail mails a new confirmation token.
func (s *AuthService) ResendConfirmationEmail(req models.ResendConfirmationEmailRequest) *Call[NoContent] {
	return newCall(s.base, http.MethodPost, "/resend-confirmation-email", decodeNone).withBody(req)
}

// ForgotPassword mails a reset token.
func (s *AuthService) ForgotPassword(req models.ForgotPasswordRequest) *Call[NoContent] {
	return newCall(s.base, http.MethodPost, "/forgot-password", decodeNone).withBody(req)
}

// ResetPassword sets a new password.
func (s *AuthService) ResetPassword(req models.ResetPasswordRequest) *Call[NoContent] {
	return newCall(s.base, http.MethodPut, "/reset-password", decodeNone).withBody(req)
}
