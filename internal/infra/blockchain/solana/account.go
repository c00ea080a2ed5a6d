package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

type (
	// AccountInfoValue is the account object of a getAccountInfo response.
	// Data comes as a ["<payload>", "<encoding>"] tuple.
	AccountInfoValue struct {
		Data []string `json:"data"`
	}

	// AccountInfoResponse is the context-wrapped getAccountInfo result. Value
	// is null when the account does not exist.
	AccountInfoResponse struct {
		Value *AccountInfoValue `json:"value"`
	}
)

// GetAccountData implements tokenmeta.AccountStore. It fetches the raw bytes
// stored at the given address with base64 encoding; a missing account yields
// a nil slice and no error.
func (c *client) GetAccountData(ctx context.Context, address string) ([]byte, error) {
	data, err := c.fetch(ctx, "getAccountInfo", address, map[string]any{
		"encoding":   "base64",
		"commitment": commitmentConfirmed,
	})
	if err != nil {
		return nil, err
	}

	if isNullResult(data) {
		return nil, nil
	}

	var accountInfo AccountInfoResponse
	if err := json.Unmarshal(data, &accountInfo); err != nil {
		return nil, err
	}

	if accountInfo.Value == nil || len(accountInfo.Value.Data) == 0 {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(accountInfo.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("decoding account data for %s: %w", address, err)
	}

	return raw, nil
}
