package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

type Validator interface {
	Validate(value interface{}) error
}

// Form validates the fields of a request struct. Fields are matched to
// validators by their json (or schema) tag name, falling back to the
// Go field name for untagged fields such as embedded structs.
type Form struct {
	validators map[string]Validator
}

func MustForm(validators map[string]Validator) *Form {
	for field, v := range validators {
		if v == nil {
			panic(fmt.Sprintf("nil validator for field %s", field))
		}
	}
	return &Form{validators: validators}
}

func (f *Form) Validate(value interface{}) error {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return errors.New("expect non-nil struct")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return errors.New("expect struct")
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := fieldName(t.Field(i))
		if name == "" {
			continue
		}

		fv, ok := f.validators[name]
		if !ok {
			continue
		}

		if err := fv.Validate(v.Field(i).Interface()); err != nil {
			return fmt.Errorf("%s: %v", name, err)
		}
	}

	return nil
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "schema"} {
		if v, ok := f.Tag.Lookup(tag); ok {
			name := strings.Split(v, ",")[0]
			if name != "" && name != "-" {
				return name
			}
			return ""
		}
	}
	return f.Name
}

type String struct {
	Optional bool
	MinLen   int
	MaxLen   int
	Regex    *regexp.Regexp
	In       []string
}

func (v *String) Validate(value interface{}) error {
	s, ok := value.(*string)
	if !ok {
		return errors.New("expect *string")
	}

	if s == nil {
		if v.Optional {
			return nil
		}
		return errors.New("is required")
	}

	if v.MinLen > 0 && len(*s) < v.MinLen {
		return fmt.Errorf("length must be at least %d", v.MinLen)
	}

	if v.MaxLen > 0 && len(*s) > v.MaxLen {
		return fmt.Errorf("length must be at most %d", v.MaxLen)
	}

	if v.Regex != nil && !v.Regex.MatchString(*s) {
		return errors.New("invalid format")
	}

	if len(v.In) > 0 {
		for _, in := range v.In {
			if *s == in {
				return nil
			}
		}
		return fmt.Errorf("must be one of %v", v.In)
	}

	return nil
}

type UInt64 struct {
	Optional bool
	Min      *uint64
	Max      *uint64
}

func (v *UInt64) Validate(value interface{}) error {
	ui, ok := value.(*uint64)
	if !ok {
		return errors.New("expect *uint64")
	}

	if ui == nil {
		if v.Optional {
			return nil
		}
		return errors.New("is required")
	}

	if v.Min != nil && *ui < *v.Min {
		return fmt.Errorf("must be at least %d", *v.Min)
	}

	if v.Max != nil && *ui > *v.Max {
		return fmt.Errorf("must be at most %d", *v.Max)
	}

	return nil
}

type Slice struct {
	Optional  bool
	MinLen    int
	MaxLen    int
	Validator Validator
}

func (v *Slice) Validate(value interface{}) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return errors.New("expect slice")
	}

	if rv.IsNil() || rv.Len() == 0 {
		if v.Optional {
			return nil
		}
		if v.MinLen > 0 {
			return errors.New("is required")
		}
	}

	if v.MinLen > 0 && rv.Len() < v.MinLen {
		return fmt.Errorf("length must be at least %d", v.MinLen)
	}

	if v.MaxLen > 0 && rv.Len() > v.MaxLen {
		return fmt.Errorf("length must be at most %d", v.MaxLen)
	}

	if v.Validator != nil {
		for i := 0; i < rv.Len(); i++ {
			if err := v.Validator.Validate(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("[%d]: %v", i, err)
			}
		}
	}

	return nil
}
