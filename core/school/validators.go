package school

import "github.com/go-playground/validator/v10"

func (na *NewAllotment) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

func (ua *UpdateAllotment) Validate(validate *validator.Validate) error {
	return validate.Struct(ua)
}
