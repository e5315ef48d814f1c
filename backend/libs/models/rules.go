package models

import (
	"errors"
	"regexp"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)
	namePattern     = regexp.MustCompile(`^[\p{L} '-]{1,50}$`)
)

var (
	errUsernames     = errors.New("usernames must be 3-20 letters or digits")
	errRoleNames     = errors.New("role names must be USER or ADMIN")
	errPasswordShape = errors.New("password must contain at least one letter and one digit")
	errPasswordMatch = errors.New("passwords do not match")
)

var usernameRule = validation.Match(usernamePattern).Error("must be 3-20 letters or digits")

// usernamesRule checks every element of a []string.
type usernamesRule struct{}

func (usernamesRule) Validate(value interface{}) error {
	usernames, _ := value.([]string)
	for _, username := range usernames {
		if !usernamePattern.MatchString(username) {
			return errUsernames
		}
	}
	return nil
}

type roleNamesRule struct{}

func (roleNamesRule) Validate(value interface{}) error {
	names, _ := value.([]RoleName)
	for _, name := range names {
		if name != RoleUser && name != RoleAdmin {
			return errRoleNames
		}
	}
	return nil
}

// passwordRule requires a letter and a digit; length is checked separately.
type passwordRule struct{}

func (passwordRule) Validate(value interface{}) error {
	password, _ := value.(string)
	if password == "" {
		return nil
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return errPasswordShape
	}
	return nil
}

type equalsRule struct {
	other string
}

func (r equalsRule) Validate(value interface{}) error {
	confirm, _ := value.(string)
	if confirm != r.other {
		return errPasswordMatch
	}
	return nil
}

func passwordRules() []validation.Rule {
	return []validation.Rule{validation.Required, validation.Length(8, 60), passwordRule{}}
}
