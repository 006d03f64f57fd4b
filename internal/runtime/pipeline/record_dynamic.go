package pipeline

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
	"github.com/telembus/kafkabench/internal/runtime/schema"
)

// dynamicRecord is the alternative structured-record technology: a protobuf
// message type synthesised at startup from the topic's field descriptors and
// instantiated per message with dynamicpb.
type dynamicRecord struct {
	descriptor protoreflect.MessageDescriptor
	fields     []schema.FieldDescriptor
}

func newDynamicRecord(td *schema.TopicDescriptor) (*dynamicRecord, error) {
	fields := td.AllFields()
	protoFields := make([]*descriptorpb.FieldDescriptorProto, len(fields))
	for i, fd := range fields {
		fieldType, repeated, err := protoTypeFor(fd.Kind)
		if err != nil {
			return nil, errspkg.ConfigurationError{
				Detail: fmt.Sprintf("field %q of topic %q", fd.Name, td.LogicalName),
				Err:    err,
			}
		}
		label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		if repeated {
			label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
		}
		protoFields[i] = &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(fd.Name),
			Number: proto.Int32(int32(i + 1)),
			Type:   fieldType.Enum(),
			Label:  label.Enum(),
		}
	}

	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(recordProtoFile(td)),
		Package: proto.String("kafkabench.dynamic"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name:  proto.String("Record"),
			Field: protoFields,
		}},
	}
	fd, err := protodesc.NewFile(file, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build dynamic record type for %q: %w", td.LogicalName, err)
	}

	return &dynamicRecord{
		descriptor: fd.Messages().Get(0),
		fields:     fields,
	}, nil
}

// Build constructs a dynamic message from the mapping with full per-field
// type checking.
func (r *dynamicRecord) Build(topic string, data schema.FieldMapping) (*dynamicpb.Message, error) {
	message := dynamicpb.NewMessage(r.descriptor)
	protoFields := r.descriptor.Fields()

	for i, fd := range r.fields {
		value, ok := data[fd.Name]
		if !ok {
			return nil, errspkg.ValidationError{
				Topic: topic,
				Field: fd.Name,
				Err:   fmt.Errorf("field is missing"),
			}
		}
		pf := protoFields.Get(i)
		if err := setDynamicField(message, pf, fd, value); err != nil {
			return nil, errspkg.ValidationError{Topic: topic, Field: fd.Name, Err: err}
		}
	}
	return message, nil
}

// Rederive converts a dynamic message back into a field mapping.
func (r *dynamicRecord) Rederive(message *dynamicpb.Message) schema.FieldMapping {
	data := make(schema.FieldMapping, len(r.fields))
	protoFields := r.descriptor.Fields()

	for i, fd := range r.fields {
		pf := protoFields.Get(i)
		switch fd.Kind {
		case schema.KindInt64:
			data[fd.Name] = message.Get(pf).Int()
		case schema.KindFloat64:
			data[fd.Name] = message.Get(pf).Float()
		case schema.KindString:
			data[fd.Name] = message.Get(pf).String()
		case schema.KindInt64Array:
			list := message.Get(pf).List()
			arr := make([]int64, list.Len())
			for j := range arr {
				arr[j] = list.Get(j).Int()
			}
			data[fd.Name] = arr
		case schema.KindFloat64Array:
			list := message.Get(pf).List()
			arr := make([]float64, list.Len())
			for j := range arr {
				arr[j] = list.Get(j).Float()
			}
			data[fd.Name] = arr
		}
	}
	return data
}

func setDynamicField(message *dynamicpb.Message, pf protoreflect.FieldDescriptor, fd schema.FieldDescriptor, value any) error {
	switch fd.Kind {
	case schema.KindInt64:
		v, ok := value.(int64)
		if !ok {
			return fmt.Errorf("expected int64, got %T", value)
		}
		message.Set(pf, protoreflect.ValueOfInt64(v))
	case schema.KindFloat64:
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("expected float64, got %T", value)
		}
		message.Set(pf, protoreflect.ValueOfFloat64(v))
	case schema.KindString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		message.Set(pf, protoreflect.ValueOfString(v))
	case schema.KindInt64Array:
		v, ok := value.([]int64)
		if !ok {
			return fmt.Errorf("expected []int64, got %T", value)
		}
		if len(v) != fd.Count {
			return fmt.Errorf("expected %d elements, got %d", fd.Count, len(v))
		}
		list := message.Mutable(pf).List()
		for _, e := range v {
			list.Append(protoreflect.ValueOfInt64(e))
		}
	case schema.KindFloat64Array:
		v, ok := value.([]float64)
		if !ok {
			return fmt.Errorf("expected []float64, got %T", value)
		}
		if len(v) != fd.Count {
			return fmt.Errorf("expected %d elements, got %d", fd.Count, len(v))
		}
		list := message.Mutable(pf).List()
		for _, e := range v {
			list.Append(protoreflect.ValueOfFloat64(e))
		}
	default:
		return fmt.Errorf("%w: %s", errspkg.ErrUnsupportedFieldKind, fd.Kind)
	}
	return nil
}

func protoTypeFor(kind schema.FieldKind) (descriptorpb.FieldDescriptorProto_Type, bool, error) {
	switch kind {
	case schema.KindInt64:
		return descriptorpb.FieldDescriptorProto_TYPE_INT64, false, nil
	case schema.KindFloat64:
		return descriptorpb.FieldDescriptorProto_TYPE_DOUBLE, false, nil
	case schema.KindString:
		return descriptorpb.FieldDescriptorProto_TYPE_STRING, false, nil
	case schema.KindInt64Array:
		return descriptorpb.FieldDescriptorProto_TYPE_INT64, true, nil
	case schema.KindFloat64Array:
		return descriptorpb.FieldDescriptorProto_TYPE_DOUBLE, true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s", errspkg.ErrUnsupportedFieldKind, kind)
	}
}

func recordProtoFile(td *schema.TopicDescriptor) string {
	return fmt.Sprintf("kafkabench/dynamic/%s.proto", td.LogicalName)
}
