package transfer

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var fieldLabels = map[string]string{
	"Title":              "Title",
	"OfferNote":          "Note",
	"NewPassword":        "New password",
	"NewPasswordConfirm": "Password confirmation",
	"BuyerName":          "Name",
	"BuyerCompany":       "Company",
	"BuyerEmail":         "Email",
	"BuyerPhone":         "Phone",
	"Message":            "Message",
}

// Validate checks a form against its validate tags and returns the first failure as a
// sentence fit to show next to the form.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return err
	}

	first := vErrs[0]
	label := fieldLabels[first.Field()]
	if label == "" {
		label = first.Field()
	}

	switch first.Tag() {
	case "required":
		return fmt.Errorf("%s is required.", label)
	case "email":
		return fmt.Errorf("%s must be a valid email address.", label)
	case "min":
		return fmt.Errorf("%s must be at least %s characters.", label, first.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters.", label, first.Param())
	case "eqfield":
		return errors.New("Password confirmation does not match.")
	}
	return fmt.Errorf("%s is invalid.", label)
}
