package orders

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/figpreorders/figorders/pkg/enums"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var (
	nonDigits  = regexp.MustCompile(`\D+`)
	onlyDigits = regexp.MustCompile(`^\d+$`)
	validate   = newValidator()
)

// Input is the editable part of an order, as submitted from the form.
type Input struct {
	CustomerName   string            `json:"customerName" validate:"required"`
	Phone          string            `json:"phone" validate:"required,digits"`
	City           string            `json:"city"`
	Address        string            `json:"address"`
	Notes          string            `json:"notes"`
	Status         enums.OrderStatus `json:"status" validate:"order_status"`
	DeliveryMethod string            `json:"deliveryMethod"`
	DepositDZD     float64           `json:"depositDZD" validate:"gte=0"`
	Items          []Item            `json:"items" validate:"min=1,dive"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return onlyDigits.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return enums.OrderStatus(fl.Field().String()).IsValid()
	})
	return v
}

// NormalizePhone strips everything but digits.
func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// Normalize trims free-text fields, strips the phone and defaults the status.
func (in Input) Normalize() Input {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Phone = NormalizePhone(strings.TrimSpace(in.Phone))
	in.City = strings.TrimSpace(in.City)
	in.Address = strings.TrimSpace(in.Address)
	in.Notes = strings.TrimSpace(in.Notes)
	in.DeliveryMethod = strings.TrimSpace(in.DeliveryMethod)
	if in.Status == "" {
		in.Status = enums.OrderStatusPending
	}
	return in
}

// Validate checks a normalized input and reports every failing field.
func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order validation failed")
	}
	details := map[string]string{}
	for _, fe := range errs {
		details[fieldPath(fe)] = reason(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "order validation failed").WithDetails(details)
}

// fieldPath drops the struct name prefix: "Input.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "digits":
		return "must contain digits only"
	case "order_status":
		return "must be a known status"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entry", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must not be less than %s", fe.Param())
	}
	return "is invalid"
}
