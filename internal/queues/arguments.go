package queues

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

const (
	unsupportedArgumentValueTemplateConstant = "unsupported argument value for %q: %s"
)

// ArgumentKind enumerates the value shapes a queue argument may carry.
type ArgumentKind int

// Recognized argument value kinds.
const (
	ArgumentKindString ArgumentKind = iota
	ArgumentKindNumber
	ArgumentKindBoolean
)

// ArgumentValue is a closed variant over the JSON scalar types RabbitMQ
// accepts for queue arguments: string, number, or boolean.
type ArgumentValue struct {
	kind         ArgumentKind
	stringValue  string
	numberValue  float64
	booleanValue bool
}

// StringArgument wraps a string argument value.
func StringArgument(value string) ArgumentValue {
	return ArgumentValue{kind: ArgumentKindString, stringValue: value}
}

// NumberArgument wraps a numeric argument value.
func NumberArgument(value float64) ArgumentValue {
	return ArgumentValue{kind: ArgumentKindNumber, numberValue: value}
}

// BooleanArgument wraps a boolean argument value.
func BooleanArgument(value bool) ArgumentValue {
	return ArgumentValue{kind: ArgumentKindBoolean, booleanValue: value}
}

// Kind reports the variant the value carries.
func (value ArgumentValue) Kind() ArgumentKind {
	return value.kind
}

// Equal reports whether both values carry the same kind and payload.
func (value ArgumentValue) Equal(other ArgumentValue) bool {
	return value == other
}

// String renders the payload the way it appears on the wire.
func (value ArgumentValue) String() string {
	switch value.kind {
	case ArgumentKindNumber:
		return strconv.FormatFloat(value.numberValue, 'f', -1, 64)
	case ArgumentKindBoolean:
		return strconv.FormatBool(value.booleanValue)
	default:
		return value.stringValue
	}
}

// MarshalJSON encodes the variant as its underlying JSON scalar.
func (value ArgumentValue) MarshalJSON() ([]byte, error) {
	switch value.kind {
	case ArgumentKindNumber:
		return json.Marshal(value.numberValue)
	case ArgumentKindBoolean:
		return json.Marshal(value.booleanValue)
	default:
		return json.Marshal(value.stringValue)
	}
}

// UnmarshalJSON decodes a JSON scalar into the matching variant.
func (value *ArgumentValue) UnmarshalJSON(data []byte) error {
	var decoded any
	if decodeError := json.Unmarshal(data, &decoded); decodeError != nil {
		return decodeError
	}

	switch typedValue := decoded.(type) {
	case string:
		*value = StringArgument(typedValue)
		return nil
	case float64:
		*value = NumberArgument(typedValue)
		return nil
	case bool:
		*value = BooleanArgument(typedValue)
		return nil
	default:
		return fmt.Errorf(unsupportedArgumentValueTemplateConstant, string(data), "expected string, number, or boolean")
	}
}

// Arguments maps queue argument keys to their scalar values.
type Arguments map[string]ArgumentValue

// Clone returns an independent copy of the argument map.
func (arguments Arguments) Clone() Arguments {
	if arguments == nil {
		return nil
	}

	duplicated := make(Arguments, len(arguments))
	for argumentKey, argumentValue := range arguments {
		duplicated[argumentKey] = argumentValue
	}
	return duplicated
}

// SortedKeys returns the argument keys in lexical order for deterministic output.
func (arguments Arguments) SortedKeys() []string {
	sortedKeys := make([]string, 0, len(arguments))
	for argumentKey := range arguments {
		sortedKeys = append(sortedKeys, argumentKey)
	}
	sort.Strings(sortedKeys)
	return sortedKeys
}
