package acquiring

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

// Params holds request fields. Values may be scalars, slices or maps;
// nested values are flattened as key[0], key[sub].
type Params map[string]any

func (p Params) clone() Params {
	out := make(Params, len(p)+4)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// hasAny reports whether p carries a non-empty value for one of keys.
func (p Params) hasAny(keys ...string) bool {
	for _, k := range keys {
		v, ok := p[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return true
	}
	return false
}

func encodeParams(p Params) url.Values {
	values := url.Values{}
	for k, v := range p {
		encodeValue(values, k, v)
	}
	return values
}

func encodeValue(values url.Values, key string, v any) {
	switch val := v.(type) {
	case nil:
		return
	case string:
		values.Add(key, val)
	case bool:
		if val {
			values.Add(key, "1")
		} else {
			values.Add(key, "0")
		}
	case json.Number:
		values.Add(key, val.String())
	case fmt.Stringer:
		values.Add(key, val.String())
	case []byte:
		values.Add(key, string(val))
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				encodeValue(values, key+"["+strconv.Itoa(i)+"]", rv.Index(i).Interface())
			}
		case reflect.Map:
			iter := rv.MapRange()
			for iter.Next() {
				sub := fmt.Sprint(iter.Key().Interface())
				encodeValue(values, key+"["+sub+"]", iter.Value().Interface())
			}
		case reflect.Pointer:
			if !rv.IsNil() {
				encodeValue(values, key, rv.Elem().Interface())
			}
		default:
			values.Add(key, fmt.Sprint(v))
		}
	}
}

// jsonField replaces a map or slice value under key with its JSON encoding.
// Strings pass through untouched.
func jsonField(p Params, key string, requireObject bool) error {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	if _, isStr := v.(string); isStr && !requireObject {
		return nil
	}

	kind := reflect.ValueOf(v).Kind()
	switch {
	case kind == reflect.Map:
	case !requireObject && (kind == reflect.Slice || kind == reflect.Array):
	default:
		if requireObject {
			return invalidArgument("%s must be a map, got %T", key, v)
		}
		return invalidArgument("%s must be a map, slice or JSON string, got %T", key, v)
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return invalidArgument("%s cannot be JSON encoded: %v", key, err)
	}
	p[key] = string(encoded)
	return nil
}
