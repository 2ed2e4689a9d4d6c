package acquiring

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	t.Run("Success_StripsStatusFields", func(t *testing.T) {
		res, err := ParseResponse([]byte(`{"errorCode":0,"orderId":"X","formUrl":"Y"}`))
		require.NoError(t, err)
		assert.Equal(t, Result{"orderId": "X", "formUrl": "Y"}, res)
	})

	t.Run("Success_NoErrorFields", func(t *testing.T) {
		res, err := ParseResponse([]byte(`{"orderId":"X"}`))
		require.NoError(t, err)
		assert.Equal(t, Result{"orderId": "X"}, res)
	})

	t.Run("Success_StringZeroCode", func(t *testing.T) {
		res, err := ParseResponse([]byte(`{"errorCode":"0","errorMessage":"Success","success":true,"orderStatus":2}`))
		require.NoError(t, err)
		assert.Equal(t, Result{"orderStatus": json.Number("2")}, res)
	})

	t.Run("Success_NestedZeroCode", func(t *testing.T) {
		res, err := ParseResponse([]byte(`{"error":{"code":0,"message":"ok"},"bindings":[]}`))
		require.NoError(t, err)
		assert.Equal(t, Result{"bindings": []any{}}, res)
	})

	t.Run("FlatError", func(t *testing.T) {
		_, err := ParseResponse([]byte(`{"errorCode":5,"errorMessage":"Access denied"}`))

		var opErr *OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, 5, opErr.Code)
		assert.Equal(t, "Access denied", opErr.Message)
	})

	t.Run("NestedError", func(t *testing.T) {
		_, err := ParseResponse([]byte(`{"error":{"code":10,"message":"Error"}}`))

		var opErr *OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, 10, opErr.Code)
		assert.Equal(t, "Error", opErr.Message)
	})

	t.Run("FlatCodeWinsOverNested", func(t *testing.T) {
		_, err := ParseResponse([]byte(`{"errorCode":"7","error":{"code":10,"message":"nested"}}`))

		var opErr *OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, 7, opErr.Code)
		assert.Equal(t, "nested", opErr.Message)
	})

	t.Run("UnknownMessage", func(t *testing.T) {
		_, err := ParseResponse([]byte(`{"errorCode":2}`))

		var opErr *OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "Unknown error", opErr.Message)
	})

	t.Run("NullErrorCodeFallsThrough", func(t *testing.T) {
		_, err := ParseResponse([]byte(`{"errorCode":null,"error":{"code":3,"message":"nested"}}`))

		var opErr *OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, 3, opErr.Code)
	})

	t.Run("StringErrorFieldIsIgnored", func(t *testing.T) {
		res, err := ParseResponse([]byte(`{"error":"something","orderId":"X"}`))
		require.NoError(t, err)
		assert.Equal(t, Result{"orderId": "X"}, res)
	})

	t.Run("NilBody", func(t *testing.T) {
		_, err := ParseResponse(nil)

		var jsonErr *JSONError
		assert.ErrorAs(t, err, &jsonErr)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		for _, body := range []string{"", "{invalid-json", "null", "[1,2]", `"text"`, `{"a":1}{"b":2}`} {
			_, err := ParseResponse([]byte(body))

			var jsonErr *JSONError
			require.ErrorAs(t, err, &jsonErr, "body %q", body)
			assert.Equal(t, body, jsonErr.Raw)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		body := []byte(`{"errorCode":0,"orderId":"X"}`)
		first, err1 := ParseResponse(body)
		second, err2 := ParseResponse(body)
		assert.NoError(t, err1)
		assert.NoError(t, err2)
		assert.Equal(t, first, second)

		failing := []byte(`{"error":{"code":10,"message":"Error"}}`)
		_, e1 := ParseResponse(failing)
		_, e2 := ParseResponse(failing)
		assert.Equal(t, e1, e2)
	})
}

func TestResult_Accessors(t *testing.T) {
	res, err := ParseResponse([]byte(`{"orderStatus":2,"orderNumber":"A-1","amount":"1500","flag":true}`))
	require.NoError(t, err)

	status, ok := res.Int("orderStatus")
	assert.True(t, ok)
	assert.Equal(t, 2, status)

	amount, ok := res.Int("amount")
	assert.True(t, ok)
	assert.Equal(t, 1500, amount)

	_, ok = res.Int("orderNumber")
	assert.False(t, ok)

	assert.Equal(t, "A-1", res.String("orderNumber"))
	assert.Equal(t, "2", res.String("orderStatus"))
	assert.Equal(t, "", res.String("missing"))
}

func TestErrorMessages(t *testing.T) {
	netErr := &NetworkError{Code: 111, Err: errors.New("connection refused")}
	assert.Contains(t, netErr.Error(), "connection refused")
	assert.Contains(t, netErr.Error(), "111")

	httpErr := &HTTPError{Method: "POST", StatusCode: 502}
	assert.Equal(t, "POST request failed with HTTP status 502", httpErr.Error())

	assert.Contains(t, (&JSONError{}).Error(), "empty result")
	assert.Equal(t, "gateway error 10: Error", (&OperationError{Code: 10, Message: "Error"}).Error())
}
