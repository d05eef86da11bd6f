package table

// Field binds a key to a typed accessor on the row type.
type Field[T any] struct {
	Key  string
	Kind Kind
	Get  func(T) Value
}

// Fields is the set of fields declared for a row type.
type Fields[T any] []Field[T]

// Lookup returns the field with the given key.
func (fs Fields[T]) Lookup(key string) (Field[T], bool) {
	for _, f := range fs {
		if f.Key == key {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Keys returns the declared keys in order.
func (fs Fields[T]) Keys() []string {
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.Key
	}
	return keys
}

// StringField declares a string field.
func StringField[T any](key string, get func(T) string) Field[T] {
	return Field[T]{Key: key, Kind: KindString, Get: func(row T) Value { return String(get(row)) }}
}

// IntField declares an integer field.
func IntField[T any, N ~int | ~int64](key string, get func(T) N) Field[T] {
	return Field[T]{Key: key, Kind: KindInt, Get: func(row T) Value { return Int(int64(get(row))) }}
}

// FloatField declares a floating point field.
func FloatField[T any](key string, get func(T) float64) Field[T] {
	return Field[T]{Key: key, Kind: KindFloat, Get: func(row T) Value { return Float(get(row)) }}
}

// BoolField declares a boolean field.
func BoolField[T any](key string, get func(T) bool) Field[T] {
	return Field[T]{Key: key, Kind: KindBool, Get: func(row T) Value { return Bool(get(row)) }}
}
