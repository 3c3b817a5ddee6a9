package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator delimits cache key segments: {namespace}::{operation}::{args}.
const KeySeparator = "::"

// maxArgSegment bounds the literal argument portion of a key. Longer (or
// otherwise unsafe) argument strings are collapsed into an xxhash
// fingerprint so keys stay valid for substrates like memcached, which reject
// keys over 250 bytes or containing whitespace.
const maxArgSegment = 64

// KeySerializer builds a deterministic cache key from an operation name and
// its arguments. Structurally equal arguments must always yield the same key;
// an operation with no arguments maps to a fixed sentinel key (the operation
// name itself).
type KeySerializer interface {
	SerializeKey(operation string, args ...any) string
}

// defaultKeySerializer derives keys via reflection. Pointers are
// dereferenced, slices and maps are walked deterministically, and anything
// else falls back to JSON. The final argument tuple is fingerprinted when it
// would produce a hostile key.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds the `{operation}` or `{operation}::{fingerprint}` part
// of a cache key. Namespacing is the caller's concern.
func (s *defaultKeySerializer) SerializeKey(operation string, args ...any) string {
	if len(args) == 0 {
		return operation
	}

	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	return operation + KeySeparator + fingerprint(strings.Join(parts, KeySeparator))
}

// fingerprint returns the segment unchanged when it is short and key-safe,
// and an xxhash digest otherwise.
func fingerprint(segment string) string {
	if len(segment) <= maxArgSegment && isKeySafe(segment) {
		return segment
	}
	return fmt.Sprintf("x%016x", xxhash.Sum64String(segment))
}

func isKeySafe(s string) bool {
	for _, r := range s {
		if r <= ' ' || r == 0x7f {
			return false
		}
	}
	return true
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	switch rt.Kind() {
	case reflect.Func:
		return fmt.Sprintf("func:%p", v)

	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return s.serializeList("slice", rv)

	case reflect.Array:
		return s.serializeList("array", rv)

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.serializeMap(rv)

	case reflect.Struct:
		return s.serializeStruct(rv, rt)

	case reflect.Chan:
		return fmt.Sprintf("chan:%p", v)

	case reflect.Interface:
		if rv.IsNil() {
			return "interface:nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	}

	if isBasicKind(rt.Kind()) {
		return fmt.Sprintf("%v", v)
	}

	return s.jsonFallback(v)
}

func (s *defaultKeySerializer) serializeList(label string, rv reflect.Value) string {
	length := rv.Len()
	parts := make([]string, length)
	for i := 0; i < length; i++ {
		parts[i] = s.serializeValue(rv.Index(i).Interface())
	}
	return fmt.Sprintf("%s[%d]:{%s}", label, length, strings.Join(parts, ","))
}

// serializeMap emits entries in sorted key order so map iteration order never
// leaks into the cache key.
func (s *defaultKeySerializer) serializeMap(rv reflect.Value) string {
	keys := rv.MapKeys()

	type entry struct {
		key   string
		value string
	}
	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, entry{
			key:   s.serializeValue(k.Interface()),
			value: s.serializeValue(rv.MapIndex(k).Interface()),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	pairs := make([]string, len(entries))
	for i, e := range entries {
		pairs[i] = fmt.Sprintf("%s=%s", e.key, e.value)
	}
	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

func (s *defaultKeySerializer) serializeStruct(rv reflect.Value, rt reflect.Type) string {
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fieldValue := rv.Field(i)
		if !fieldValue.CanInterface() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", field.Name, s.serializeValue(fieldValue.Interface())))
	}
	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

func isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

func (s *defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%s", reflect.TypeOf(v).String())
	}
	return fmt.Sprintf("json:%s", string(data))
}
