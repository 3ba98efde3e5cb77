// Package coerce converts field values between the typed application domain
// and the DynamoDB attribute-value wire representation.
package coerce

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lattice/internal/epoch"
)

// Type identifies the declared type of a field.
type Type string

const (
	String     Type = "string"
	Integer    Type = "integer"
	Number     Type = "number"
	Boolean    Type = "boolean"
	DateTime   Type = "datetime"
	Date       Type = "date"
	Serialized Type = "serialized"
	Raw        Type = "raw"

	// Float is a deprecated alias for Number. Declaring a field with it
	// behaves identically to Number and logs a one-time warning.
	Float Type = "float"
)

const dateLayout = "2006-01-02"

var floatWarning sync.Once

// Known reports whether t is a declarable field type.
func Known(t Type) bool {
	switch t {
	case String, Integer, Number, Boolean, DateTime, Date, Serialized, Raw, Float:
		return true
	}
	return false
}

// Resolve canonicalizes a declared type, collapsing the deprecated Float
// alias into Number. The first Float resolution in a process logs a
// deprecation warning.
func Resolve(t Type) Type {
	if t == Float {
		floatWarning.Do(func() {
			slog.Warn(`lattice: field type "float" is deprecated, use "number"`)
		})
		return Number
	}
	return t
}

// Cast converts an arbitrary input value into the canonical domain value
// for t, e.g. the string "101" into int64(101) for Integer. nil passes
// through for every type. Serialized and Raw values are not cast.
func Cast(t Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch Resolve(t) {
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Integer:
		return castInteger(v)
	case Number:
		return castNumber(v)
	case Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case DateTime:
		switch tv := v.(type) {
		case time.Time:
			return tv.UTC(), nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, tv)
			if err != nil {
				break
			}
			return parsed.UTC(), nil
		}
	case Date:
		switch tv := v.(type) {
		case time.Time:
			y, m, d := tv.UTC().Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		case string:
			parsed, err := time.Parse(dateLayout, tv)
			if err != nil {
				break
			}
			return parsed, nil
		}
	case Serialized, Raw:
		return v, nil
	}
	return nil, &CastError{Type: t, Value: v}
}

func castInteger(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float32:
		return integralFloat(float64(n), v)
	case float64:
		return integralFloat(n, v)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil, &CastError{Type: Integer, Value: v}
		}
		return parsed, nil
	}
	return nil, &CastError{Type: Integer, Value: v}
}

func integralFloat(f float64, orig any) (any, error) {
	n := int64(f)
	if float64(n) != f {
		return nil, &CastError{Type: Integer, Value: orig}
	}
	return n, nil
}

func castNumber(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil, &CastError{Type: Number, Value: v}
		}
		return parsed, nil
	}
	return nil, &CastError{Type: Number, Value: v}
}

// Dump converts a domain value into its DynamoDB attribute value. nil maps
// to a nil attribute for every type, which callers omit from the item.
// Serialized fields use the built-in JSON codec; a per-field Marshaler
// override is applied by the model layer before Dump is reached.
func Dump(t Type, v any) (types.AttributeValue, error) {
	if v == nil {
		return nil, nil
	}
	cast, err := Cast(t, v)
	if err != nil {
		return nil, err
	}
	switch Resolve(t) {
	case String:
		return &types.AttributeValueMemberS{Value: cast.(string)}, nil
	case Integer:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(cast.(int64), 10)}, nil
	case Number:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(cast.(float64), 'g', -1, 64)}, nil
	case Boolean:
		return &types.AttributeValueMemberBOOL{Value: cast.(bool)}, nil
	case DateTime:
		return &types.AttributeValueMemberN{Value: epoch.Encode(cast.(time.Time))}, nil
	case Date:
		return &types.AttributeValueMemberS{Value: cast.(time.Time).Format(dateLayout)}, nil
	case Serialized:
		s, err := JSON{}.Dump(v)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberS{Value: s}, nil
	case Raw:
		return attributevalue.Marshal(v)
	}
	return nil, &CastError{Type: t, Value: v}
}

// Load converts a DynamoDB attribute value back into its domain value.
// It is total over anything the store can return for the declared type;
// nil and NULL attributes load as nil.
func Load(t Type, av types.AttributeValue) (any, error) {
	if av == nil {
		return nil, nil
	}
	if _, ok := av.(*types.AttributeValueMemberNULL); ok {
		return nil, nil
	}
	switch Resolve(t) {
	case String:
		if s, ok := av.(*types.AttributeValueMemberS); ok {
			return s.Value, nil
		}
	case Integer:
		if s, ok := numericText(av); ok {
			parsed, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, &CastError{Type: t, Value: s}
			}
			return parsed, nil
		}
	case Number:
		if s, ok := numericText(av); ok {
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &CastError{Type: t, Value: s}
			}
			return parsed, nil
		}
	case Boolean:
		if b, ok := av.(*types.AttributeValueMemberBOOL); ok {
			return b.Value, nil
		}
	case DateTime:
		switch member := av.(type) {
		case *types.AttributeValueMemberN:
			parsed, err := epoch.Decode(member.Value)
			if err != nil {
				return nil, &CastError{Type: t, Value: member.Value}
			}
			return parsed, nil
		case *types.AttributeValueMemberS:
			parsed, err := time.Parse(time.RFC3339Nano, member.Value)
			if err != nil {
				return nil, &CastError{Type: t, Value: member.Value}
			}
			return parsed.UTC(), nil
		}
	case Date:
		switch member := av.(type) {
		case *types.AttributeValueMemberS:
			parsed, err := time.Parse(dateLayout, member.Value)
			if err != nil {
				return nil, &CastError{Type: t, Value: member.Value}
			}
			return parsed, nil
		case *types.AttributeValueMemberN:
			parsed, err := epoch.Decode(member.Value)
			if err != nil {
				return nil, &CastError{Type: t, Value: member.Value}
			}
			y, m, d := parsed.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	case Serialized:
		if s, ok := av.(*types.AttributeValueMemberS); ok {
			return JSON{}.Load(s.Value)
		}
	case Raw:
		var v any
		if err := attributevalue.Unmarshal(av, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, &CastError{Type: t, Value: av}
}

// numericText extracts the text of a number-bearing attribute. Integers
// written by other tools sometimes arrive as strings, so S is accepted.
func numericText(av types.AttributeValue) (string, bool) {
	switch member := av.(type) {
	case *types.AttributeValueMemberN:
		return member.Value, true
	case *types.AttributeValueMemberS:
		return member.Value, true
	}
	return "", false
}

// CastError reports a value that cannot be interpreted as the declared
// field type. Field is filled in by the model layer when the offending
// attribute is known.
type CastError struct {
	Field string
	Type  Type
	Value any
}

func (e *CastError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("lattice: cannot cast %v (%T) to %s", e.Value, e.Value, e.Type)
	}
	return fmt.Sprintf("lattice: cannot cast %v (%T) to %s for field %q", e.Value, e.Value, e.Type, e.Field)
}
