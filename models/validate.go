package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/utils"
)

var validate = validator.New()

// validateInput runs struct-tag validation and converts failures into the
// package's ValidationError shape so callers see one error taxonomy.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	if _, ok := err.(validator.ValidationErrors); !ok {
		return err
	}
	fields := utils.ProcessValidationErrors(err)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%s)", name, fields[name]))
	}
	return utils.NewValidationError("", "invalid input: "+strings.Join(parts, ", "))
}
