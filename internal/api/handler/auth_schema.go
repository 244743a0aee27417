package handler

import (
	"encoding/json"
	"errors"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// validationResponse carries the field-level failures of a rejected request.
type validationResponse struct {
	Errors []FieldError `json:"errors"`
}

// messageResponse is the acknowledgement-only success envelope.
type messageResponse struct {
	Message string `json:"message"`
}

// roleSelector normalizes the wire's "role" field, which may be omitted, a
// single name, or an array of names.
type roleSelector []string

func (r *roleSelector) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = roleSelector{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("role must be a string or an array of strings")
	}
	*r = many
	return nil
}

type registerRequest struct {
	Email     string       `json:"email"     validate:"required,email"`
	Role      roleSelector `json:"role"`
	FirstName string       `json:"firstName" validate:"required,min=3"`
	LastName  string       `json:"lastName"  validate:"required,min=3"`
	Username  string       `json:"username"  validate:"required,min=4"`
	Password  string       `json:"password"  validate:"required,min=6"`
}
