// Package inputval validates request input declared with struct tags:
//
//	type form struct {
//		Title string `validate:"required,max=200" label:"Title"`
//	}
//
// Tags follow go-playground/validator; label names the field in messages.
// Besides the stock rules, "httpurl" (absolute http/https URL), "subject"
// and "restype" (closed catalog enums) are registered.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dalemusser/kinderhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return f.Name
	})
	must(v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return urlutil.IsValidAbsHTTPURL(fl.Field().String())
	}))
	must(v.RegisterValidation("subject", func(fl validator.FieldLevel) bool {
		_, err := models.ParseSubject(fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("restype", func(fl validator.FieldLevel) bool {
		_, err := models.ParseResourceType(fl.Field().String())
		return err == nil
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Result collects per-field messages in declaration order.
type Result struct {
	Fields map[string]string `json:"fields"`
	order  []string
}

// HasErrors reports whether any field failed. A nil Result has none.
func (r *Result) HasErrors() bool { return r != nil && len(r.order) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Fields[r.order[0]]
}

// Add records msg for field unless the field already has a message.
func (r *Result) Add(field, msg string) {
	if r.Fields == nil {
		r.Fields = map[string]string{}
	}
	if _, dup := r.Fields[field]; dup {
		return
	}
	r.Fields[field] = msg
	r.order = append(r.order, field)
}

// Validate checks s against its validate tags. Field keys are the
// lower-cased Go field names.
func Validate(s any) *Result {
	res := &Result{}
	err := validate.Struct(s)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Add("_", err.Error())
		return res
	}
	for _, fe := range verrs {
		res.Add(strings.ToLower(fe.StructField()), message(fe))
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "httpurl":
		return label + " must be a valid absolute URL (e.g., https://example.com)."
	default:
		return label + " is invalid."
	}
}
