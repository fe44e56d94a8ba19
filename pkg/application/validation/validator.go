package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/domain/entities"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		// decimals compare as floats so numeric tags like gte=0 apply to them
		instance.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return instance
}

// Struct validates v by its `validate` tags. Failures wrap entities.ErrValidation.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", entities.ErrValidation, strings.Join(msgs, "; "))
}
