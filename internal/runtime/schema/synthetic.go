package schema

import (
	"fmt"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
)

// Canonical non-default values used for synthetic message generation.
const (
	syntheticInt    = int64(1)
	syntheticFloat  = 1.1
	syntheticString = "a short string"
)

// Defaults returns the zero-value field mapping for the topic.
func Defaults(td *TopicDescriptor) (FieldMapping, error) {
	data := make(FieldMapping)
	for _, fd := range td.AllFields() {
		switch fd.Kind {
		case KindInt64:
			data[fd.Name] = int64(0)
		case KindFloat64:
			data[fd.Name] = float64(0)
		case KindString:
			data[fd.Name] = ""
		case KindInt64Array:
			data[fd.Name] = make([]int64, fd.Count)
		case KindFloat64Array:
			data[fd.Name] = make([]float64, fd.Count)
		default:
			return nil, unsupportedField(td, fd)
		}
	}
	return data, nil
}

// SyntheticData derives one non-default field mapping from the topic's shape:
// integers become 1, floats 1.1, strings a fixed placeholder, and arrays get
// every element set accordingly. An unsupported field kind aborts before any
// network call is made.
func SyntheticData(td *TopicDescriptor) (FieldMapping, error) {
	data, err := Defaults(td)
	if err != nil {
		return nil, err
	}
	for _, fd := range td.AllFields() {
		switch fd.Kind {
		case KindInt64:
			data[fd.Name] = syntheticInt
		case KindFloat64:
			data[fd.Name] = syntheticFloat
		case KindString:
			data[fd.Name] = syntheticString
		case KindInt64Array:
			arr := make([]int64, fd.Count)
			for i := range arr {
				arr[i] = syntheticInt
			}
			data[fd.Name] = arr
		case KindFloat64Array:
			arr := make([]float64, fd.Count)
			for i := range arr {
				arr[i] = syntheticFloat
			}
			data[fd.Name] = arr
		}
	}
	return data, nil
}

// Validate applies custom field-level validation: every declared field must
// be present with the declared shape. It reports the first invalid field and
// never mutates the data.
func Validate(td *TopicDescriptor, data FieldMapping) error {
	for _, fd := range td.AllFields() {
		value, ok := data[fd.Name]
		if !ok {
			return errspkg.ValidationError{
				Topic: td.LogicalName,
				Field: fd.Name,
				Err:   fmt.Errorf("field is missing"),
			}
		}
		if err := checkFieldValue(fd, value); err != nil {
			return errspkg.ValidationError{Topic: td.LogicalName, Field: fd.Name, Err: err}
		}
	}
	return nil
}

func checkFieldValue(fd FieldDescriptor, value any) error {
	switch fd.Kind {
	case KindInt64:
		if _, ok := value.(int64); !ok {
			return fmt.Errorf("expected int64, got %T", value)
		}
	case KindFloat64:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("expected float64, got %T", value)
		}
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case KindInt64Array:
		arr, ok := value.([]int64)
		if !ok {
			return fmt.Errorf("expected []int64, got %T", value)
		}
		if len(arr) != fd.Count {
			return fmt.Errorf("expected %d elements, got %d", fd.Count, len(arr))
		}
	case KindFloat64Array:
		arr, ok := value.([]float64)
		if !ok {
			return fmt.Errorf("expected []float64, got %T", value)
		}
		if len(arr) != fd.Count {
			return fmt.Errorf("expected %d elements, got %d", fd.Count, len(arr))
		}
	default:
		return fmt.Errorf("%w: %s", errspkg.ErrUnsupportedFieldKind, fd.Kind)
	}
	return nil
}

func unsupportedField(td *TopicDescriptor, fd FieldDescriptor) error {
	return errspkg.ConfigurationError{
		Detail: fmt.Sprintf("field %q of topic %q", fd.Name, td.LogicalName),
		Err:    fmt.Errorf("%w: %s", errspkg.ErrUnsupportedFieldKind, fd.Kind),
	}
}
