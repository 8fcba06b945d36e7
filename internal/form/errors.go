package form

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to a message key.  Templates turn the
// key into text with the i18n T helper.
type FieldErrors map[string]string

// Has reports whether field failed.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// FromValidation converts validator errors into FieldErrors using names,
// which maps a struct namespace ("OrderRequest.Shipping.City") to the form
// field ("city").  It returns nil when err is not a validation error.
func FromValidation(err error, names map[string]string) FieldErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		ns := fe.StructNamespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		field, ok := names[ns]
		if !ok {
			field = strings.ToLower(fe.Field())
		}
		out[field] = "form.error." + fe.Tag()
	}
	return out
}
