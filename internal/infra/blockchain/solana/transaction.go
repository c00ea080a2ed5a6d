package solana

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/solwatch/solwatch/internal/txreport"

	"github.com/shopspring/decimal"
)

// maxSupportedTransactionVersion makes getTransaction tolerate versioned
// transactions instead of erroring on anything newer than legacy.
const maxSupportedTransactionVersion = 0

type (
	// UITokenAmountResponse is the token amount object of a balance entry.
	UITokenAmountResponse struct {
		Amount         string `json:"amount"`
		Decimals       uint8  `json:"decimals"`
		UIAmountString string `json:"uiAmountString"`
	}

	// TokenBalanceResponse is one pre/post token balance entry of a
	// transaction's meta section.
	TokenBalanceResponse struct {
		AccountIndex  int                   `json:"accountIndex"`
		Mint          string                `json:"mint"`
		Owner         string                `json:"owner"`
		UITokenAmount UITokenAmountResponse `json:"uiTokenAmount"`
	}

	// TransactionMetaResponse is the balance-change section of a confirmed
	// transaction.
	TransactionMetaResponse struct {
		PreBalances       []uint64               `json:"preBalances"`
		PostBalances      []uint64               `json:"postBalances"`
		PreTokenBalances  []TokenBalanceResponse `json:"preTokenBalances"`
		PostTokenBalances []TokenBalanceResponse `json:"postTokenBalances"`
	}

	// TransactionMessageResponse carries the account list of the transaction.
	TransactionMessageResponse struct {
		AccountKeys []string `json:"accountKeys"`
	}

	// TransactionResponse is the full structure returned by getTransaction
	// with json encoding, reduced to the fields this service reads.
	TransactionResponse struct {
		Meta        *TransactionMetaResponse `json:"meta"`
		Transaction struct {
			Signatures []string                   `json:"signatures"`
			Message    TransactionMessageResponse `json:"message"`
		} `json:"transaction"`
	}
)

// toDisplayAmount converts the RPC token amount to a decimal in display
// units. The node usually sends uiAmountString; when it is empty the raw
// amount is shifted by the mint's decimals instead.
func (a UITokenAmountResponse) toDisplayAmount() decimal.Decimal {
	if a.UIAmountString != "" {
		if amount, err := decimal.NewFromString(a.UIAmountString); err == nil {
			return amount
		}
	}

	raw, err := decimal.NewFromString(a.Amount)
	if err != nil {
		return decimal.Zero
	}
	return raw.Shift(-int32(a.Decimals))
}

func (b TokenBalanceResponse) toTokenBalance() txreport.TokenBalance {
	return txreport.TokenBalance{
		AccountIndex: b.AccountIndex,
		Owner:        b.Owner,
		Mint:         b.Mint,
		Amount:       b.UITokenAmount.toDisplayAmount(),
		Decimals:     b.UITokenAmount.Decimals,
	}
}

// toTransaction converts the RPC shape to the domain transaction.
func (t TransactionResponse) toTransaction(signature string) txreport.Transaction {
	tx := txreport.Transaction{
		Signature:   signature,
		AccountKeys: t.Transaction.Message.AccountKeys,
	}

	if len(t.Transaction.Signatures) > 0 {
		tx.Signature = t.Transaction.Signatures[0]
	}

	if t.Meta == nil {
		return tx
	}

	tx.HasMeta = true
	tx.PreBalances = t.Meta.PreBalances
	tx.PostBalances = t.Meta.PostBalances

	tx.PreTokenBalances = make([]txreport.TokenBalance, len(t.Meta.PreTokenBalances))
	for i, b := range t.Meta.PreTokenBalances {
		tx.PreTokenBalances[i] = b.toTokenBalance()
	}

	tx.PostTokenBalances = make([]txreport.TokenBalance, len(t.Meta.PostTokenBalances))
	for i, b := range t.Meta.PostTokenBalances {
		tx.PostTokenBalances[i] = b.toTokenBalance()
	}

	return tx
}

// isNullResult reports whether the node answered with a JSON null, which is
// how getTransaction signals an unknown signature.
func isNullResult(data json.RawMessage) bool {
	return len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// GetTransaction implements txreport.TransactionFetcher. It queries at
// confirmed commitment and tolerates versioned transactions.
func (c *client) GetTransaction(ctx context.Context, signature string) (txreport.Transaction, bool, error) {
	data, err := c.fetch(ctx, "getTransaction", signature, map[string]any{
		"encoding":                       "json",
		"commitment":                     commitmentConfirmed,
		"maxSupportedTransactionVersion": maxSupportedTransactionVersion,
	})
	if err != nil {
		return txreport.Transaction{}, false, err
	}

	if isNullResult(data) {
		return txreport.Transaction{}, false, nil
	}

	var txResponse TransactionResponse
	if err := json.Unmarshal(data, &txResponse); err != nil {
		return txreport.Transaction{}, false, err
	}

	return txResponse.toTransaction(signature), true, nil
}

// fetch issues one JSON-RPC call, applying the retry policy when configured.
func (c *client) fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if c.retry == nil {
		return c.conn.Fetch(ctx, method, params...)
	}

	var data json.RawMessage
	err := c.retry.Execute(ctx, func() error {
		var fetchErr error
		data, fetchErr = c.conn.Fetch(ctx, method, params...)
		return fetchErr
	})
	return data, err
}
