package handler

import (
	"regexp"

	"outreach/pkg/validator"
)

var resourceNameRegex = regexp.MustCompile(`^[0-9a-zA-Z_\-.\s]+$`)

func ResourceNameValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		MinLen:   1,
		MaxLen:   60,
		Regex:    resourceNameRegex,
	}
}

func EmailValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		MinLen:   3,
		MaxLen:   254,
		Regex:    regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`),
	}
}
