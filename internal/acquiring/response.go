package acquiring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	successCode    = 0
	unknownMessage = "Unknown error"
)

// Result is the gateway payload with every status field removed.
type Result map[string]any

// String returns the value under key as text, "" when absent.
func (r Result) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the numeric value under key.
func (r Result) Int(key string) (int, bool) {
	return toInt(r[key])
}

// ParseResponse turns a raw gateway body into its payload, or an
// *OperationError when the gateway reports a non-zero error code.
// A nil body stands for a missing transport result.
func ParseResponse(body []byte) (Result, error) {
	if body == nil {
		return nil, &JSONError{}
	}

	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, &JSONError{Raw: string(body), Err: err}
	}
	if payload == nil {
		return nil, &JSONError{Raw: string(body), Err: errors.New("response is not an object")}
	}
	if dec.More() {
		return nil, &JSONError{Raw: string(body), Err: errors.New("trailing data after response object")}
	}

	nested, _ := payload["error"].(map[string]any)

	code := successCode
	if v, ok := payload["errorCode"]; ok && v != nil {
		code = codeValue(v)
	} else if v, ok := nested["code"]; ok && v != nil {
		code = codeValue(v)
	}

	message := unknownMessage
	if v, ok := payload["errorMessage"]; ok && v != nil {
		message = fmt.Sprint(v)
	} else if v, ok := nested["message"]; ok && v != nil {
		message = fmt.Sprint(v)
	}

	delete(payload, "errorCode")
	delete(payload, "errorMessage")
	delete(payload, "error")
	delete(payload, "success")

	if code != successCode {
		return nil, &OperationError{Code: code, Message: message}
	}

	return Result(payload), nil
}

// codeValue reads an error code the way the gateway emits it: a number or a
// numeric string. Anything else counts as the success code.
func codeValue(v any) int {
	n, ok := toInt(v)
	if !ok {
		return successCode
	}
	return n
}

func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n), true
		}
		if f, err := val.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n, true
		}
	case float64:
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
