package txreport

import (
	"errors"
	"slices"

	"github.com/shopspring/decimal"
)

// lamportsExponent converts lamports, the chain's smallest native unit, into
// display SOL (1 SOL = 10^9 lamports).
const lamportsExponent = -9

// ErrWalletNotInTransaction indicates the watched wallet does not appear in
// the transaction's account list, so no native delta can be attributed to it.
var ErrWalletNotInTransaction = errors.New("watched wallet not present in transaction account keys")

// BalanceDelta is one net change of the watched wallet's holdings caused by a
// transaction. A positive Change means the holding increased, negative that it
// decreased. Zero deltas are never produced.
type BalanceDelta struct {
	// Mint identifies the asset. Empty for the native asset (SOL).
	Mint string

	// Change is the net movement in display units.
	Change decimal.Decimal
}

// Native reports whether the delta concerns the chain's native asset.
func (d BalanceDelta) Native() bool {
	return d.Mint == ""
}

// ComputeDeltas derives the watched wallet's per-asset balance changes from a
// transaction's pre/post snapshots.
//
// The native delta comes from the lamport balance at the wallet's own position
// in the account list; the wallet is located explicitly rather than assumed to
// be the fee payer at index 0, and its absence is an error.
//
// Token deltas pair post entries owned by the wallet with their pre entries by
// account index (a missing pre entry counts as zero). Changes for the same
// mint spread across several token accounts are summed, so the result is the
// wallet's net position change per mint. Entries owned by other wallets are
// ignored entirely. Deltas are returned native first, then mints in the order
// they first appeared in the post snapshot; zero deltas are dropped.
func ComputeDeltas(tx Transaction, wallet string) ([]BalanceDelta, error) {
	walletIndex := slices.Index(tx.AccountKeys, wallet)
	if walletIndex < 0 {
		return nil, ErrWalletNotInTransaction
	}

	deltas := make([]BalanceDelta, 0, 1+len(tx.PostTokenBalances))

	if change := nativeChange(tx, walletIndex); !change.IsZero() {
		deltas = append(deltas, BalanceDelta{Change: change})
	}

	var (
		mintOrder   = make([]string, 0, len(tx.PostTokenBalances))
		changeByMint = make(map[string]decimal.Decimal, len(tx.PostTokenBalances))
		preByIndex   = make(map[int]decimal.Decimal, len(tx.PreTokenBalances))
	)

	for _, pre := range tx.PreTokenBalances {
		preByIndex[pre.AccountIndex] = pre.Amount
	}

	for _, post := range tx.PostTokenBalances {
		if post.Owner != wallet {
			continue
		}

		change := post.Amount.Sub(preByIndex[post.AccountIndex])
		if change.IsZero() {
			continue
		}

		if existing, seen := changeByMint[post.Mint]; seen {
			changeByMint[post.Mint] = existing.Add(change)
		} else {
			mintOrder = append(mintOrder, post.Mint)
			changeByMint[post.Mint] = change
		}
	}

	for _, mint := range mintOrder {
		// Changes across accounts can cancel out; only net movements count.
		if change := changeByMint[mint]; !change.IsZero() {
			deltas = append(deltas, BalanceDelta{Mint: mint, Change: change})
		}
	}

	return deltas, nil
}

// nativeChange returns the wallet's lamport movement converted to SOL. Indexes
// beyond the snapshot arrays count as zero balance.
func nativeChange(tx Transaction, walletIndex int) decimal.Decimal {
	lamportChange := int64(lamportsAt(tx.PostBalances, walletIndex)) - int64(lamportsAt(tx.PreBalances, walletIndex))
	if lamportChange == 0 {
		return decimal.Zero
	}

	return decimal.New(lamportChange, lamportsExponent)
}

func lamportsAt(balances []uint64, index int) uint64 {
	if index >= len(balances) {
		return 0
	}
	return balances[index]
}
