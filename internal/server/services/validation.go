package services

import (
	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/go-playground/validator/v10"
)

const invalidInputMessage = "Invalid input Data"

var validate = validator.New()

// checks collects every failed rule instead of stopping at the first one.
type checks struct {
	errs []common.ValidationError
}

// rule runs a validator tag (e.g. "email", "min=5") against value and
// records message for field when it fails.
func (c *checks) rule(field string, value any, tag string, message string) {
	if err := validate.Var(value, tag); err != nil {
		c.errs = append(c.errs, common.ValidationError{Message: message, Field: field})
	}
}

func (c *checks) add(field, message string) {
	c.errs = append(c.errs, common.ValidationError{Message: message, Field: field})
}

func (c *checks) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return common.NewValidation(invalidInputMessage, c.errs)
}
