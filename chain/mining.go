package chain

import (
	"context"
	"strings"

	"github.com/midpay/midpay/crypto"
	"github.com/midpay/midpay/errors"
)

// cancellation is checked once per this many nonce attempts
const miningCancelCheckInterval = 1024

// hashForNonce is the pure proof-of-work function: the block hash for the
// given nonce, without touching the block itself.
func hashForNonce(b *Block, nonce uint64) (string, error) {
	fields := b.headerFields()
	fields["nonce"] = nonce
	data, err := crypto.CanonicalMarshal(fields)
	if err != nil {
		return "", err
	}
	return crypto.Sha256Hex(data), nil
}

// MineBlock searches for a nonce whose hash starts with difficulty zero hex
// digits and commits it to the block. The search is bounded by maxAttempts
// (exhaustion returns ErrMiningExhausted, which is retryable) and aborts on
// ctx cancellation. The block is left untouched unless the search succeeds.
func MineBlock(ctx context.Context, b *Block, difficulty uint32, maxAttempts uint64) error {
	target := strings.Repeat("0", int(difficulty))

	for nonce := uint64(0); nonce < maxAttempts; nonce++ {
		if nonce%miningCancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		hash, err := hashForNonce(b, nonce)
		if err != nil {
			return err
		}
		if strings.HasPrefix(hash, target) {
			b.Nonce = nonce
			b.Hash = hash
			return nil
		}
	}

	return errors.NewCodeErr(errors.ErrMiningExhausted)
}

// MeetsDifficulty reports whether a hash satisfies the leading-zero target.
func MeetsDifficulty(hash string, difficulty uint32) bool {
	if int(difficulty) > len(hash) {
		return false
	}
	for i := uint32(0); i < difficulty; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}
