package pipeline

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
	"github.com/telembus/kafkabench/internal/runtime/jsoncodec"
	"github.com/telembus/kafkabench/internal/runtime/schema"
)

// Validation selects how the producer gates each outgoing payload. The
// strategy only gates or canonicalizes the payload, never the message count
// or ordering.
type Validation int

const (
	// ValidationNone sends the mapping as-is.
	ValidationNone Validation = iota
	// ValidationCustom runs per-field validation, rejecting on the first
	// invalid field without mutating the data.
	ValidationCustom
	// ValidationStruct constructs a native struct record and discards it.
	ValidationStruct
	// ValidationStructDecode constructs a struct record and re-derives the
	// outgoing mapping from it.
	ValidationStructDecode
	// ValidationDynamic constructs a dynamic protobuf record and discards it.
	ValidationDynamic
	// ValidationDynamicDecode constructs a dynamic protobuf record and
	// re-derives the outgoing mapping from it.
	ValidationDynamicDecode
)

var validationNames = map[string]Validation{
	"none":           ValidationNone,
	"custom":         ValidationCustom,
	"struct":         ValidationStruct,
	"struct_decode":  ValidationStructDecode,
	"dynamic":        ValidationDynamic,
	"dynamic_decode": ValidationDynamicDecode,
}

// ValidationNames lists the accepted strategy names.
func ValidationNames() []string {
	return []string{"none", "custom", "struct", "struct_decode", "dynamic", "dynamic_decode"}
}

// ParseValidation resolves a strategy name, failing before any I/O on an
// unknown one.
func ParseValidation(name string) (Validation, error) {
	v, ok := validationNames[name]
	if !ok {
		return 0, errspkg.ConfigurationError{
			Detail: fmt.Sprintf("validation %q", name),
			Err:    errspkg.ErrUnsupportedValidation,
		}
	}
	return v, nil
}

// PostProcess selects the representation the consumer builds from each
// decoded message. The strategy affects CPU cost per message, never the
// message content.
type PostProcess int

const (
	// PostProcessNone keeps the raw mapping.
	PostProcessNone PostProcess = iota
	// PostProcessStruct constructs a native struct record and discards it.
	PostProcessStruct
	// PostProcessModel constructs a fully type-checked dynamic protobuf
	// record and discards it.
	PostProcessModel
	// PostProcessBag builds a dynamically-typed attribute bag.
	PostProcessBag
)

var postProcessNames = map[string]PostProcess{
	"none":   PostProcessNone,
	"struct": PostProcessStruct,
	"model":  PostProcessModel,
	"bag":    PostProcessBag,
}

// PostProcessNames lists the accepted strategy names.
func PostProcessNames() []string {
	return []string{"none", "struct", "model", "bag"}
}

// ParsePostProcess resolves a strategy name, failing before any I/O on an
// unknown one.
func ParsePostProcess(name string) (PostProcess, error) {
	p, ok := postProcessNames[name]
	if !ok {
		return 0, errspkg.ConfigurationError{
			Detail: fmt.Sprintf("postprocess %q", name),
			Err:    errspkg.ErrUnsupportedPostProcess,
		}
	}
	return p, nil
}

// validator applies the selected validation strategy to one topic's
// payloads. The variant is resolved once at startup, not per message.
type validator struct {
	mode    Validation
	td      *schema.TopicDescriptor
	structs *structRecord
	dynamic *dynamicRecord
}

func newValidator(td *schema.TopicDescriptor, mode Validation) (*validator, error) {
	v := &validator{mode: mode, td: td}
	var err error
	switch mode {
	case ValidationStruct, ValidationStructDecode:
		if v.structs, err = newStructRecord(td); err != nil {
			return nil, err
		}
	case ValidationDynamic, ValidationDynamicDecode:
		if v.dynamic, err = newDynamicRecord(td); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Apply gates the payload and returns the mapping to send. For the decode
// variants the result is re-derived from the constructed record.
func (v *validator) Apply(data schema.FieldMapping) (schema.FieldMapping, error) {
	switch v.mode {
	case ValidationNone:
		return data, nil
	case ValidationCustom:
		if err := schema.Validate(v.td, data); err != nil {
			return nil, err
		}
		return data, nil
	case ValidationStruct:
		if _, err := v.structs.Build(v.td.LogicalName, data); err != nil {
			return nil, err
		}
		return data, nil
	case ValidationStructDecode:
		instance, err := v.structs.Build(v.td.LogicalName, data)
		if err != nil {
			return nil, err
		}
		return v.structs.Rederive(instance), nil
	case ValidationDynamic:
		if _, err := v.dynamic.Build(v.td.LogicalName, data); err != nil {
			return nil, err
		}
		return data, nil
	case ValidationDynamicDecode:
		message, err := v.dynamic.Build(v.td.LogicalName, data)
		if err != nil {
			return nil, err
		}
		return v.dynamic.Rederive(message), nil
	default:
		return nil, errspkg.ConfigurationError{
			Detail: fmt.Sprintf("validation %d", v.mode),
			Err:    errspkg.ErrUnsupportedValidation,
		}
	}
}

// postProcessor builds the selected per-message representation for one
// topic's decoded messages.
type postProcessor struct {
	mode    PostProcess
	td      *schema.TopicDescriptor
	structs *structRecord
	dynamic *dynamicRecord
}

func newPostProcessor(td *schema.TopicDescriptor, mode PostProcess) (*postProcessor, error) {
	p := &postProcessor{mode: mode, td: td}
	var err error
	switch mode {
	case PostProcessStruct:
		if p.structs, err = newStructRecord(td); err != nil {
			return nil, err
		}
	case PostProcessModel:
		if p.dynamic, err = newDynamicRecord(td); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Apply builds the derived representation. The input mapping is never
// modified.
func (p *postProcessor) Apply(data schema.FieldMapping) (any, error) {
	switch p.mode {
	case PostProcessNone:
		return data, nil
	case PostProcessStruct:
		instance, err := p.structs.Build(p.td.LogicalName, data)
		if err != nil {
			return nil, err
		}
		return instance.Interface(), nil
	case PostProcessModel:
		return p.dynamic.Build(p.td.LogicalName, data)
	case PostProcessBag:
		return buildBag(data)
	default:
		return nil, errspkg.ConfigurationError{
			Detail: fmt.Sprintf("postprocess %d", p.mode),
			Err:    errspkg.ErrUnsupportedPostProcess,
		}
	}
}

// buildBag materialises the mapping as a dynamically-typed attribute bag
// backed by a sonic AST node.
func buildBag(data schema.FieldMapping) (ast.Node, error) {
	raw, err := jsoncodec.Marshal(data)
	if err != nil {
		return ast.Node{}, err
	}
	node, err := sonic.Get(raw)
	if err != nil {
		return ast.Node{}, err
	}
	if err := node.LoadAll(); err != nil {
		return ast.Node{}, err
	}
	return node, nil
}
