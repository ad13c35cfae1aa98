// Package address validates wallet address shape per chain family. Only the
// string format is checked; checksums and on-chain existence are out of scope.
package address

import (
	"fmt"
	"regexp"
	"strings"

	"amlscreen/internal/domain"
	"amlscreen/pkg/errors"
)

var (
	evmPattern  = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	btcPattern  = regexp.MustCompile(`^(1|3|bc1)[a-zA-HJ-NP-Z0-9]{25,62}$`)
	tronPattern = regexp.MustCompile(`^T[a-zA-HJ-NP-Z0-9]{33}$`)
)

// Validate checks the raw address against the claimed chain's pattern. An
// unsupported chain is a distinct failure from a malformed address.
func Validate(chain domain.Chain, raw string) error {
	addr := strings.TrimSpace(raw)

	switch {
	case chain.IsEVM():
		if !evmPattern.MatchString(addr) {
			return fmt.Errorf("%w: expected 0x followed by 40 hex characters for %s", errors.ErrInvalidAddress, chain)
		}
	case chain == domain.ChainBitcoin:
		if !btcPattern.MatchString(addr) {
			return fmt.Errorf("%w: not a recognized Bitcoin legacy or bech32 address", errors.ErrInvalidAddress)
		}
	case chain == domain.ChainTron:
		if !tronPattern.MatchString(addr) {
			return fmt.Errorf("%w: expected T followed by 33 base58 characters", errors.ErrInvalidAddress)
		}
	default:
		return fmt.Errorf("%w: '%s' (use: ethereum, bsc, polygon, bitcoin, tron)", errors.ErrChainNotSupported, chain)
	}

	return nil
}

// ParseChain normalizes and checks a chain identifier.
func ParseChain(raw string) (domain.Chain, error) {
	chain := domain.Chain(strings.ToLower(strings.TrimSpace(raw)))
	for _, c := range domain.SupportedChains {
		if chain == c {
			return chain, nil
		}
	}
	return "", fmt.Errorf("%w: '%s' (use: ethereum, bsc, polygon, bitcoin, tron)", errors.ErrChainNotSupported, raw)
}
