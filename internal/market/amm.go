package market

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log"
	"math"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-copy-trader/internal/solana"
)

// RaydiumAMMV4 is the Raydium AMM v4 program.
const RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"

const defaultBaseDecimals = 9

// accountFetcher is the slice of the RPC surface the resolver needs.
type accountFetcher interface {
	GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error)
}

// AMMResolver resolves pools on a single AMM program by deriving the
// pool address from the pair's mints and confirming the account exists
// on chain.
type AMMResolver struct {
	rpc       accountFetcher
	programID string
	logger    *log.Logger
}

var _ Resolver = (*AMMResolver)(nil)

// AMMResolverOptions configures an AMMResolver.
type AMMResolverOptions struct {
	RPC       accountFetcher
	ProgramID string // defaults to RaydiumAMMV4
	Logger    *log.Logger
}

// NewAMMResolver creates a resolver against one AMM program.
func NewAMMResolver(opts AMMResolverOptions) (*AMMResolver, error) {
	if opts.RPC == nil {
		return nil, fmt.Errorf("rpc client is required")
	}
	if opts.ProgramID == "" {
		opts.ProgramID = RaydiumAMMV4
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[market] ", log.LstdFlags)
	}
	return &AMMResolver{
		rpc:       opts.RPC,
		programID: opts.ProgramID,
		logger:    opts.Logger,
	}, nil
}

// Resolve derives the pool address for the pair and verifies it is owned
// by the AMM program. Mint order does not matter: seeds are built from
// the lexicographically sorted pair.
func (r *AMMResolver) Resolve(ctx context.Context, tokenA, tokenB string) (*Market, error) {
	key := newPairKey(tokenA, tokenB)

	loBytes, err := base58.Decode(key.lo)
	if err != nil {
		return nil, fmt.Errorf("invalid mint %s: %w", key.lo, err)
	}
	hiBytes, err := base58.Decode(key.hi)
	if err != nil {
		return nil, fmt.Errorf("invalid mint %s: %w", key.hi, err)
	}
	programBytes, err := base58.Decode(r.programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id %s: %w", r.programID, err)
	}

	seeds := [][]byte{
		programBytes,
		loBytes,
		hiBytes,
		[]byte("amm_associated_seed"),
	}
	pool := derivePDA(seeds, programBytes)
	if pool == "" {
		return nil, fmt.Errorf("no valid pool address for pair %s/%s", key.lo, key.hi)
	}

	info, err := r.rpc.GetAccountInfo(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("fetch pool %s: %w", pool, err)
	}
	if info == nil {
		return nil, fmt.Errorf("pair %s/%s: %w", key.lo, key.hi, ErrMarketNotFound)
	}
	if info.Owner != r.programID {
		return nil, fmt.Errorf("pool %s owned by %s, not %s: %w", pool, info.Owner, r.programID, ErrMarketNotFound)
	}

	r.logger.Printf("Resolved market %s for pair %s/%s", pool, key.lo, key.hi)

	return &Market{
		Address:      pool,
		ProgramID:    r.programID,
		BaseMint:     key.lo,
		QuoteMint:    key.hi,
		BaseDecimals: defaultBaseDecimals,
	}, nil
}

// derivePDA derives a Program Derived Address using the Solana algorithm:
// concatenate seeds with a bump byte, append the program ID and the
// "ProgramDerivedAddress" marker, SHA256, and take the first bump that
// yields an off-curve point.
func derivePDA(seeds [][]byte, programID []byte) string {
	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}
	return ""
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// swapInstructionTag identifies the swap-base-in instruction on the AMM
// program.
const swapInstructionTag = 9

// BuildSwapInstruction encodes swap instruction data for this market:
// tag byte, raw input amount, and the minimum acceptable output implied
// by the slippage bound in percent. The venue rejects the swap when the
// realized output would fall below the minimum.
func (m *Market) BuildSwapInstruction(amountIn, slippagePct float64) ([]byte, error) {
	if amountIn <= 0 {
		return nil, fmt.Errorf("amount in must be positive, got %f", amountIn)
	}
	if slippagePct < 0 || slippagePct >= 100 {
		return nil, fmt.Errorf("slippage must be in [0, 100), got %f", slippagePct)
	}

	scale := math.Pow10(m.BaseDecimals)
	rawIn := uint64(math.Round(amountIn * scale))
	minOut := uint64(math.Round(amountIn * scale * (1 - slippagePct/100)))

	data := make([]byte, 17)
	data[0] = swapInstructionTag
	binary.LittleEndian.PutUint64(data[1:9], rawIn)
	binary.LittleEndian.PutUint64(data[9:17], minOut)
	return data, nil
}
