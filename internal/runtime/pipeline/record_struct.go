package pipeline

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
	"github.com/telembus/kafkabench/internal/runtime/schema"
)

// structRecord is one of the two structured-record technologies: a native Go
// struct type built once per topic with reflect.StructOf. Constructing an
// instance type-checks every field; re-deriving a mapping from the instance
// doubles as a canonicalization pass.
type structRecord struct {
	typ    reflect.Type
	fields []schema.FieldDescriptor
	names  []string
}

func newStructRecord(td *schema.TopicDescriptor) (*structRecord, error) {
	fields := td.AllFields()
	structFields := make([]reflect.StructField, len(fields))
	names := make([]string, len(fields))

	for i, fd := range fields {
		goType, err := goTypeFor(fd.Kind)
		if err != nil {
			return nil, errspkg.ConfigurationError{
				Detail: fmt.Sprintf("field %q of topic %q", fd.Name, td.LogicalName),
				Err:    err,
			}
		}
		names[i] = exportedName(fd.Name)
		structFields[i] = reflect.StructField{
			Name: names[i],
			Type: goType,
			Tag:  reflect.StructTag(fmt.Sprintf(`json:%q`, fd.Name)),
		}
	}

	return &structRecord{
		typ:    reflect.StructOf(structFields),
		fields: fields,
		names:  names,
	}, nil
}

// Build constructs a struct instance from the mapping, rejecting the first
// field whose value does not match the declared shape.
func (r *structRecord) Build(topic string, data schema.FieldMapping) (reflect.Value, error) {
	instance := reflect.New(r.typ).Elem()
	for i, fd := range r.fields {
		value, ok := data[fd.Name]
		if !ok {
			return reflect.Value{}, errspkg.ValidationError{
				Topic: topic,
				Field: fd.Name,
				Err:   fmt.Errorf("field is missing"),
			}
		}
		rv := reflect.ValueOf(value)
		field := instance.Field(i)
		if rv.Type() != field.Type() {
			return reflect.Value{}, errspkg.ValidationError{
				Topic: topic,
				Field: fd.Name,
				Err:   fmt.Errorf("expected %s, got %T", field.Type(), value),
			}
		}
		if isArrayKind(fd.Kind) && rv.Len() != fd.Count {
			return reflect.Value{}, errspkg.ValidationError{
				Topic: topic,
				Field: fd.Name,
				Err:   fmt.Errorf("expected %d elements, got %d", fd.Count, rv.Len()),
			}
		}
		field.Set(rv)
	}
	return instance, nil
}

// Rederive converts a struct instance back into a field mapping.
func (r *structRecord) Rederive(instance reflect.Value) schema.FieldMapping {
	data := make(schema.FieldMapping, len(r.fields))
	for i, fd := range r.fields {
		data[fd.Name] = instance.Field(i).Interface()
	}
	return data
}

func goTypeFor(kind schema.FieldKind) (reflect.Type, error) {
	switch kind {
	case schema.KindInt64:
		return reflect.TypeOf(int64(0)), nil
	case schema.KindFloat64:
		return reflect.TypeOf(float64(0)), nil
	case schema.KindString:
		return reflect.TypeOf(""), nil
	case schema.KindInt64Array:
		return reflect.TypeOf([]int64(nil)), nil
	case schema.KindFloat64Array:
		return reflect.TypeOf([]float64(nil)), nil
	default:
		return nil, fmt.Errorf("%w: %s", errspkg.ErrUnsupportedFieldKind, kind)
	}
}

func isArrayKind(kind schema.FieldKind) bool {
	return kind == schema.KindInt64Array || kind == schema.KindFloat64Array
}

// exportedName upper-cases the first rune so reflect.StructOf accepts the
// field as settable.
func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
