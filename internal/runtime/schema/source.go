package schema

import (
	"fmt"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
)

// MetadataSource supplies component descriptors. Production deployments plug
// in a source backed by their component-definition files; the builtin static
// source covers benchmarking without one.
type MetadataSource interface {
	Component(name string) (*ComponentDescriptor, error)
}

// StaticSource serves a fixed set of components.
type StaticSource struct {
	components map[string]*ComponentDescriptor
}

// NewStaticSource builds a source from the given components.
func NewStaticSource(components ...*ComponentDescriptor) *StaticSource {
	m := make(map[string]*ComponentDescriptor, len(components))
	for _, c := range components {
		m[c.Name] = c
	}
	return &StaticSource{components: m}
}

func (s *StaticSource) Component(name string) (*ComponentDescriptor, error) {
	c, ok := s.components[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errspkg.ErrUnknownComponent, name)
	}
	return c, nil
}

// DefaultSource returns the builtin metadata source carrying the "Test"
// component used for benchmarking runs.
func DefaultSource() *StaticSource {
	return NewStaticSource(testComponent())
}

// WireTopicName derives the broker-facing channel identifier for a topic.
func WireTopicName(component, logicalName string) string {
	return fmt.Sprintf("bench.%s.%s", component, logicalName)
}

// SubjectName derives the registry subject for a wire topic name, following
// the registry's value-subject convention.
func SubjectName(wireName string) string {
	return wireName + "-value"
}

func testComponent() *ComponentDescriptor {
	const name = "Test"
	topics := map[string][]FieldDescriptor{
		"evt_scalars": {
			{Name: "int0", Kind: KindInt64},
			{Name: "float0", Kind: KindFloat64},
			{Name: "string0", Kind: KindString},
		},
		"evt_arrays": {
			{Name: "int_arr", Kind: KindInt64Array, Count: 5},
			{Name: "float_arr", Kind: KindFloat64Array, Count: 10},
		},
		"tel_mixed": {
			{Name: "timestamp", Kind: KindFloat64},
			{Name: "counter", Kind: KindInt64},
			{Name: "values", Kind: KindFloat64Array, Count: 8},
			{Name: "label", Kind: KindString},
		},
		"cmd_start": {
			{Name: "configurationOverride", Kind: KindString},
			{Name: "timeout", Kind: KindFloat64},
		},
	}

	component := &ComponentDescriptor{
		Name:    name,
		Indexed: true,
		Topics:  make(map[string]*TopicDescriptor, len(topics)),
	}
	for logical, fields := range topics {
		wire := WireTopicName(name, logical)
		component.Topics[logical] = &TopicDescriptor{
			LogicalName: logical,
			WireName:    wire,
			Subject:     SubjectName(wire),
			Indexed:     component.Indexed,
			Fields:      fields,
		}
	}
	return component
}
