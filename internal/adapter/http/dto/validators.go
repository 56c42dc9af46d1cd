package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// cardNumberRe matches issuer prefix 4 followed by 11 to 18 digits.
var cardNumberRe = regexp.MustCompile(`^4\d{11,18}$`)

func init() {
	// Amounts and balances go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("cardnumber", validateCardNumber)
	}
}

func validateCardNumber(fl validator.FieldLevel) bool {
	return cardNumberRe.MatchString(fl.Field().String())
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer. Never applied to PINs, which
// must reach the verifier verbatim.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(Sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(Sanitize(elem.String()))
			}
		}
	}
}

// Sanitize trims whitespace and HTML-escapes a single string value.
func Sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
