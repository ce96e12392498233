package checkout

import (
	"testing"

	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
)

func validForm() Form {
	return Form{
		FullName: "Juan Perez",
		Email:    "juan@example.com",
		Address:  "Calle 123 #45-67",
		City:     "Bogota",
	}
}

func TestFormValidateAccepts(t *testing.T) {
	t.Parallel()

	if err := validForm().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// zip code stays optional
	form := validForm()
	form.ZipCode = "110111"
	if err := form.Validate(); err != nil {
		t.Fatalf("unexpected error with zip: %v", err)
	}
}

func TestFormValidateRequiredFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		tweak func(*Form)
		field string
	}{
		{"missing name", func(f *Form) { f.FullName = "" }, "full_name"},
		{"blank name", func(f *Form) { f.FullName = "   " }, "full_name"},
		{"missing email", func(f *Form) { f.Email = "" }, "email"},
		{"bad email", func(f *Form) { f.Email = "not-an-email" }, "email"},
		{"missing address", func(f *Form) { f.Address = "" }, "address"},
		{"missing city", func(f *Form) { f.City = "" }, "city"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.tweak(&form)

			err := form.Validate()
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			details, ok := typed.Details().(map[string]string)
			if !ok {
				t.Fatalf("expected details map, got %T", typed.Details())
			}
			if _, ok := details[tc.field]; !ok {
				t.Fatalf("expected detail for %s, got %v", tc.field, details)
			}
		})
	}
}
