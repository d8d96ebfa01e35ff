package inputval

import (
	"strings"

	"github.com/dalemusser/kinderhub/internal/domain/models"
)

// ResourceForm is the raw add/edit form. Tags is the comma-separated
// string the user typed.
type ResourceForm struct {
	Title       string `validate:"required,max=200" label:"Title"`
	Subject     string `validate:"required,subject" label:"Subject"`
	Type        string `validate:"required,restype" label:"Type"`
	URL         string `validate:"required,httpurl" label:"URL"`
	Description string `validate:"required,max=2000" label:"Description"`
	Tags        string `validate:"max=500" label:"Tags"`
}

// Validate trims the form, fills the default subject and type, and converts
// it into a ResourceInput. The input is only meaningful when the Result has
// no errors.
func (f ResourceForm) Validate() (models.ResourceInput, *Result) {
	f.Title = strings.TrimSpace(f.Title)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Type = strings.TrimSpace(f.Type)
	f.URL = strings.TrimSpace(f.URL)
	f.Description = strings.TrimSpace(f.Description)

	if f.Subject == "" {
		f.Subject = string(models.SubjectSEL)
	}
	if f.Type == "" {
		f.Type = string(models.DefaultResourceType)
	}

	res := Validate(f)
	if res.HasErrors() {
		return models.ResourceInput{}, res
	}

	// Both parses are covered by the tags above.
	subject, _ := models.ParseSubject(f.Subject)
	typ, _ := models.ParseResourceType(f.Type)

	return models.ResourceInput{
		Title:       f.Title,
		Subject:     subject,
		Type:        typ,
		URL:         f.URL,
		Description: f.Description,
		Tags:        models.ParseTags(f.Tags),
	}, res
}
