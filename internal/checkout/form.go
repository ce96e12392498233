package checkout

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
)

// Form carries the shipping details collected before checkout. The zip code
// is optional; everything else is required.
type Form struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	ZipCode  string `json:"zip_code"`
}

var formValidate = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Validate checks the form locally, before any network call.
func (f Form) Validate() error {
	trimmed := Form{
		FullName: strings.TrimSpace(f.FullName),
		Email:    strings.TrimSpace(f.Email),
		Address:  strings.TrimSpace(f.Address),
		City:     strings.TrimSpace(f.City),
		ZipCode:  strings.TrimSpace(f.ZipCode),
	}
	err := formValidate.Struct(trimmed)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			switch fieldErr.Tag() {
			case "required":
				details[fieldErr.Field()] = "is required"
			case "email":
				details[fieldErr.Field()] = "must be a valid email address"
			default:
				details[fieldErr.Field()] = "is invalid"
			}
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "complete the required checkout fields").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validate checkout form")
}
