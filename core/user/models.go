package user

import "github.com/pkg/errors"

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	User struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Age   int    `json:"age"`
		Email string `json:"email"`
	}

	NewUser struct {
		Name  string `json:"name" validate:"required"`
		Age   int    `json:"age" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}

	// UpdateUser applies only its set fields; at least one must be provided.
	UpdateUser struct {
		Name  string `json:"name" validate:"required_without_all=Age Email"`
		Age   int    `json:"age" validate:"omitempty"`
		Email string `json:"email" validate:"omitempty,email"`
	}
)
