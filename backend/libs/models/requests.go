package models

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// AdminRequest selects the users an administrative action applies to.
type AdminRequest struct {
	Usernames []string `json:"usernames"`
}

// Validate checks the request against the backend constraints.
func (r AdminRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Usernames, validation.Required, usernamesRule{}),
	)
}

// ChangeRoleRequest replaces the roles of the selected users.
type ChangeRoleRequest struct {
	Usernames []string   `json:"usernames"`
	RoleNames []RoleName `json:"roleNames"`
}

// Validate checks the request against the backend constraints.
func (r ChangeRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Usernames, validation.Required, usernamesRule{}),
		validation.Field(&r.RoleNames, validation.Required, roleNamesRule{}),
	)
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate only checks presence; the backend decides whether credentials are valid.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// SignUpRequest registers a new account.
type SignUpRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks the request against the backend constraints.
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Match(namePattern)),
		validation.Field(&r.LastName, validation.Required, validation.Match(namePattern)),
		validation.Field(&r.Username, validation.Required, usernameRule),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, passwordRules()...),
		validation.Field(&r.ConfirmPassword, validation.Required, equalsRule{other: r.Password}),
	)
}

// ForgotPasswordRequest asks the backend to mail a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ResetPasswordRequest sets a new password using a reset token.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, passwordRules()...),
		validation.Field(&r.ConfirmPassword, validation.Required, equalsRule{other: r.Password}),
	)
}

// ResendConfirmationEmailRequest identifies an account awaiting confirmation.
type ResendConfirmationEmailRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
}

func (r ResendConfirmationEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UsernameOrEmail, validation.Required, validation.Length(3, 100)),
	)
}
