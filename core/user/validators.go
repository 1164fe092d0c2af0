package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	return validate.Struct(uu)
}
