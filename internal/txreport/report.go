package txreport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/solwatch/solwatch/internal/tokenmeta"

	"github.com/shopspring/decimal"
)

// nativeSymbol is how the chain's native asset is rendered in reports.
const nativeSymbol = "SOL"

// nativeDecimals is the display precision of the native asset.
const nativeDecimals = 9

// Direction states which way an asset moved relative to the watched wallet.
type Direction string

const (
	DirectionBought Direction = "Bought"
	DirectionSold   Direction = "Sold"
)

// Movement is one formatted-ready asset flow of a processed transaction.
type Movement struct {
	// Mint is empty for the native asset.
	Mint      string
	Name      string
	Symbol    string
	Direction Direction

	// Amount is the absolute size of the movement in display units.
	Amount decimal.Decimal

	// Decimals is the precision Amount is rendered with.
	Decimals uint8
}

// newNativeMovement builds the Movement for a native (SOL) delta.
func newNativeMovement(change decimal.Decimal) Movement {
	return Movement{
		Name:      nativeSymbol,
		Symbol:    nativeSymbol,
		Direction: directionOf(change),
		Amount:    change.Abs(),
		Decimals:  nativeDecimals,
	}
}

// newTokenMovement builds the Movement for a token delta using its resolved
// metadata.
func newTokenMovement(delta BalanceDelta, metadata tokenmeta.Metadata) Movement {
	return Movement{
		Mint:      delta.Mint,
		Name:      metadata.Name,
		Symbol:    metadata.Symbol,
		Direction: directionOf(delta.Change),
		Amount:    delta.Change.Abs(),
		Decimals:  metadata.Decimals,
	}
}

func directionOf(change decimal.Decimal) Direction {
	if change.IsPositive() {
		return DirectionBought
	}
	return DirectionSold
}

// String renders the movement as a single report line, e.g.
//
//	Token: SOL, Sold: 0.500000000 SOL
//	Token: USD Coin (EPjF...Dt1v), Bought: 4.25 USDC
func (m Movement) String() string {
	amount := m.Amount.StringFixed(int32(m.Decimals))

	if m.Mint == "" {
		return fmt.Sprintf("Token: %s, %s: %s %s", nativeSymbol, m.Direction, amount, nativeSymbol)
	}

	return fmt.Sprintf("Token: %s (%s), %s: %s %s", m.Name, m.Mint, m.Direction, amount, m.Symbol)
}

// ActivityReport bundles every asset movement one transaction caused for the
// watched wallet.
type ActivityReport struct {
	Wallet    string
	Signature string
	Movements []Movement
}

// ActivityNotifier receives the finished report of a processed transaction.
// Implementations may print it, publish it, or persist it.
type ActivityNotifier interface {
	NotifyActivity(ctx context.Context, report ActivityReport) error
}

// writerNotifier prints one line per movement to an io.Writer. It is the
// default sink for the CLI.
type writerNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

var _ ActivityNotifier = (*writerNotifier)(nil)

// NewWriterNotifier creates an ActivityNotifier that writes report lines to
// the given writer.
func NewWriterNotifier(out io.Writer) *writerNotifier {
	return &writerNotifier{out: out}
}

func (n *writerNotifier) NotifyActivity(_ context.Context, report ActivityReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, movement := range report.Movements {
		if _, err := fmt.Fprintln(n.out, movement.String()); err != nil {
			return err
		}
	}

	return nil
}
