package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/aretw0/trestle/pkg/domain"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Type defines the contract for parameter values.
type Type interface {
	// Name returns the type name as written in definitions (e.g., "text", "[integer]").
	Name() string
	// Validate checks if an already coerced value conforms to this type.
	Validate(value any) error
	// Coerce converts a raw value into the canonical representation of this type.
	Coerce(value any) (any, error)
}

// --- Built-in Type Implementations ---

// TextType holds string values.
type TextType struct{}

func (t *TextType) Name() string { return string(domain.ParamText) }

func (t *TextType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected text, got %T", value)
	}
	return nil
}

func (t *TextType) Coerce(value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	v, err := convertScalar(value, cty.String)
	if err != nil {
		return nil, err
	}
	return v.AsString(), nil
}

// NumberType holds float64 values.
type NumberType struct{}

func (t *NumberType) Name() string { return string(domain.ParamNumber) }

func (t *NumberType) Validate(value any) error {
	if _, ok := value.(float64); !ok {
		return fmt.Errorf("expected number, got %T", value)
	}
	return nil
}

func (t *NumberType) Coerce(value any) (any, error) {
	v, err := convertScalar(value, cty.Number)
	if err != nil {
		return nil, err
	}
	var f float64
	if err := gocty.FromCtyValue(v, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// IntegerType holds int values.
type IntegerType struct{}

func (t *IntegerType) Name() string { return string(domain.ParamInteger) }

func (t *IntegerType) Validate(value any) error {
	if _, ok := value.(int); !ok {
		return fmt.Errorf("expected integer, got %T", value)
	}
	return nil
}

func (t *IntegerType) Coerce(value any) (any, error) {
	v, err := convertScalar(value, cty.Number)
	if err != nil {
		return nil, err
	}
	bf := v.AsBigFloat()
	if !bf.IsInt() {
		return nil, fmt.Errorf("expected integer, got fractional number %s", bf.Text('g', -1))
	}
	i, acc := bf.Int64()
	if acc != big.Exact || i > math.MaxInt || i < math.MinInt {
		return nil, fmt.Errorf("integer %s out of range", bf.Text('g', -1))
	}
	return int(i), nil
}

// BooleanType holds bool values.
type BooleanType struct{}

func (t *BooleanType) Name() string { return string(domain.ParamBoolean) }

func (t *BooleanType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected boolean, got %T", value)
	}
	return nil
}

func (t *BooleanType) Coerce(value any) (any, error) {
	if s, ok := value.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "on", "1", "y":
			value = "true"
		case "no", "off", "0", "n":
			value = "false"
		default:
			value = strings.ToLower(strings.TrimSpace(s))
		}
	}
	v, err := convertScalar(value, cty.Bool)
	if err != nil {
		return nil, err
	}
	return v.True(), nil
}

// ListType holds []any values whose elements share one type.
type ListType struct {
	elemType Type
}

func (t *ListType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *ListType) Validate(value any) error {
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("expected list, got %T", value)
	}
	for i, elem := range items {
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Coerce accepts slices and arrays of any element type, or a comma-separated string.
func (t *ListType) Coerce(value any) (any, error) {
	var raw []any
	switch v := value.(type) {
	case nil:
		return nil, errors.New("value is null")
	case string:
		if strings.TrimSpace(v) == "" {
			return []any{}, nil
		}
		for _, part := range strings.Split(v, ",") {
			raw = append(raw, strings.TrimSpace(part))
		}
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("expected list, got %T", value)
		}
		for i := 0; i < rv.Len(); i++ {
			raw = append(raw, rv.Index(i).Interface())
		}
	}

	out := make([]any, 0, len(raw))
	for i, elem := range raw {
		c, err := t.elemType.Coerce(elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// --- Factory Functions ---

// Text creates a text type.
func Text() Type { return &TextType{} }

// Number creates a number type.
func Number() Type { return &NumberType{} }

// Integer creates an integer type.
func Integer() Type { return &IntegerType{} }

// Boolean creates a boolean type.
func Boolean() Type { return &BooleanType{} }

// List creates a list type for elements of the given type.
func List(elemType Type) Type {
	return &ListType{elemType: elemType}
}

// ParseType converts a type name to a Type.
// Supports "text", "number", "integer", "boolean", "list" and bracketed lists such as
// "[integer]" or "[[text]]". The aliases "string", "int", "float" and "bool" are accepted too.
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return List(elemType), nil
	}

	switch domain.ParamType(typeStr) {
	case domain.ParamText, "string":
		return Text(), nil
	case domain.ParamNumber, "float":
		return Number(), nil
	case domain.ParamInteger, "int":
		return Integer(), nil
	case domain.ParamBoolean, "bool":
		return Boolean(), nil
	case domain.ParamList:
		return List(Text()), nil
	default:
		return nil, fmt.Errorf("unsupported type: %q", typeStr)
	}
}

// convertScalar turns a Go scalar into a cty value of the wanted type.
func convertScalar(value any, want cty.Type) (cty.Value, error) {
	val, err := toCty(value)
	if err != nil {
		return cty.NilVal, err
	}
	out, err := convert.Convert(val, want)
	if err != nil {
		return cty.NilVal, err
	}
	if out.IsNull() {
		return cty.NilVal, errors.New("value is null")
	}
	return out, nil
}

func toCty(value any) (cty.Value, error) {
	switch v := value.(type) {
	case nil:
		return cty.NilVal, errors.New("value is null")
	case string:
		return cty.StringVal(strings.TrimSpace(v)), nil
	case bool:
		return cty.BoolVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int8:
		return cty.NumberIntVal(int64(v)), nil
	case int16:
		return cty.NumberIntVal(int64(v)), nil
	case int32:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case uint:
		return cty.NumberUIntVal(uint64(v)), nil
	case uint8:
		return cty.NumberUIntVal(uint64(v)), nil
	case uint16:
		return cty.NumberUIntVal(uint64(v)), nil
	case uint32:
		return cty.NumberUIntVal(uint64(v)), nil
	case uint64:
		return cty.NumberUIntVal(v), nil
	case float32:
		return floatVal(float64(v))
	case float64:
		return floatVal(v)
	case json.Number:
		return cty.ParseNumberVal(string(v))
	default:
		return cty.NilVal, fmt.Errorf("unsupported value of type %T", value)
	}
}

func floatVal(f float64) (cty.Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return cty.NilVal, fmt.Errorf("%v is not a finite number", f)
	}
	return cty.NumberFloatVal(f), nil
}
