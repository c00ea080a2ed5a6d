package solana

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccountData(t *testing.T) {
	t.Run("should decode base64 account data", func(t *testing.T) {
		payload := []byte{0x04, 0xde, 0xad, 0xbe, 0xef}
		encoded := base64.StdEncoding.EncodeToString(payload)
		stub := &jsonrpcStub{result: json.RawMessage(fmt.Sprintf(`{
			"context": {"slot": 123},
			"value": {"data": [%q, "base64"]}
		}`, encoded))}

		raw, err := NewClient(stub).GetAccountData(t.Context(), "some-address")
		require.NoError(t, err)
		assert.Equal(t, payload, raw)

		assert.Equal(t, "getAccountInfo", stub.method)
		require.Len(t, stub.params, 2)
		assert.Equal(t, "some-address", stub.params[0])
		assert.Equal(t, map[string]any{
			"encoding":   "base64",
			"commitment": "confirmed",
		}, stub.params[1])
	})

	t.Run("should return nil for a missing account", func(t *testing.T) {
		stub := &jsonrpcStub{result: json.RawMessage(`{"context": {"slot": 123}, "value": null}`)}

		raw, err := NewClient(stub).GetAccountData(t.Context(), "missing")
		require.NoError(t, err)
		assert.Nil(t, raw)
	})

	t.Run("should fail on invalid base64", func(t *testing.T) {
		stub := &jsonrpcStub{result: json.RawMessage(`{"value": {"data": ["%%%not-base64%%%", "base64"]}}`)}

		_, err := NewClient(stub).GetAccountData(t.Context(), "broken")
		assert.Error(t, err)
	})
}
