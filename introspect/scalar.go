package introspect

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
	jsonType = reflect.TypeOf(json.RawMessage(nil))
)

// IsScalar reports whether t is a viable mapped scalar type: a primitive,
// time.Time, uuid.UUID, []byte or json.RawMessage, optionally behind a
// single pointer (a nullable scalar).
func IsScalar(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	case reflect.Struct:
		return t == timeType || t == uuidType
	case reflect.Array:
		return t == uuidType
	default:
		return t == jsonType
	}
}

// IsNavigable reports whether t is a viable navigation member type:
// a struct pointer, or a slice of structs or struct pointers.
func IsNavigable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return navigationTarget(t) != nil
}

// navigationTarget unwraps t to a navigable struct type, or nil.
// Scalar struct types (time.Time, uuid.UUID) are not navigation targets.
func navigationTarget(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	if t == timeType || t == uuidType {
		return nil
	}
	return t
}
