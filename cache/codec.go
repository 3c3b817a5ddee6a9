package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts values to and from the byte form stored in the cache.
// Writers and readers of a cache namespace must agree on the codec; a decode
// failure means the entry is unusable and should be evicted.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// SerializationError reports a cache entry that could not be encoded or
// decoded. The offending entry must be treated as invalid and evicted rather
// than returned corrupted.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cache: serialization failed for key %q: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// msgpackCodec is the default Codec. msgpack keeps entries compact and
// round-trips the catalog types without schema registration.
type msgpackCodec struct{}

// NewMsgpackCodec returns the default msgpack-backed codec.
func NewMsgpackCodec() Codec {
	return msgpackCodec{}
}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// Encode marshals v for storage under key, wrapping failures as
// *SerializationError.
func Encode(codec Codec, key string, v any) ([]byte, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return nil, &SerializationError{Key: key, Err: err}
	}
	return data, nil
}

// Decode unmarshals data stored under key into a value of type T, wrapping
// failures as *SerializationError.
func Decode[T any](codec Codec, key string, data []byte) (T, error) {
	var out T
	if err := codec.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, &SerializationError{Key: key, Err: err}
	}
	return out, nil
}
