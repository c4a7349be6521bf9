package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// Slot ids are derived from the start hour, always "HH:00".
var slotIDRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):00$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type SlotValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSlotValidator(log *logger.Logger) *SlotValidator {
	v := validator.New()

	if err := v.RegisterValidation("slot_id", validateSlotID); err != nil {
		log.Fatal("Failed to register 'slot_id' validator", "error", err)
	}

	log.Info("Slot validator initialized successfully")

	return &SlotValidator{
		validate: v,
		logger:   log,
	}
}

func validateSlotID(fl validator.FieldLevel) bool {
	return slotIDRegex.MatchString(fl.Field().String())
}

func (v *SlotValidator) ValidateSlotID(id string) error {
	if err := v.validate.Var(id, "required,slot_id"); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "SlotID",
				Message: fmt.Sprintf("slot id must be of the form HH:00, got: %q", id),
			},
		}
	}
	return nil
}

func (v *SlotValidator) ValidateActor(actor model.Actor) error {
	if err := v.validate.Struct(actor); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *SlotValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()
		switch err.Tag() {
		case "required":
			message = "is required"
		case "min":
			message = fmt.Sprintf("must be at least %s characters", err.Param())
		case "max":
			message = fmt.Sprintf("must be at most %s characters", err.Param())
		case "oneof":
			message = fmt.Sprintf("must be one of: %s", err.Param())
		}
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
