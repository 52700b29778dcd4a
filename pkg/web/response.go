// Package web defines common components for a web application.
package web

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken           string    `json:"access_token,omitempty"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at,omitempty"`
	RefreshToken          string    `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at,omitempty"`
	Data                  any       `json:"data,omitempty"`
	Error                 string    `json:"error,omitempty"`
}

// Error wraps a given err into json friendly response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a human readable message for the first failed
// binding field.
func GetErrorMsg(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]

	return fe.Field() + fieldErrorMsg(fe)
}

func fieldErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "min":
		return " must be greater or equal " + fe.Param()
	case "max":
		return " must be less or equal " + fe.Param()
	case "email":
		return " must be a valid email address"
	case "alphanum":
		return " must contain only letters and numbers"
	case "currency":
		return " must be a known ISO-4217 currency code"
	case "oneof":
		return " must be one of " + fe.Param()
	case "gt":
		return " must be greater than " + fe.Param()
	}

	return " is invalid"
}
