package address

import (
	"testing"

	"amlscreen/internal/domain"
	"amlscreen/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEVM(t *testing.T) {
	valid := "0x7F367cC41522cE07553e823bf3be79A889DEbe1B"

	for _, chain := range []domain.Chain{domain.ChainEthereum, domain.ChainBSC, domain.ChainPolygon} {
		assert.NoError(t, Validate(chain, valid), string(chain))
	}

	cases := []string{
		"7F367cC41522cE07553e823bf3be79A889DEbe1B",     // missing 0x
		"0x7F367cC41522cE07553e823bf3be79A889DEbe1",    // 39 hex chars
		"0x7F367cC41522cE07553e823bf3be79A889DEbe1Bff", // 42 hex chars
		"0xZZ367cC41522cE07553e823bf3be79A889DEbe1B",   // non-hex
		"",
	}
	for _, addr := range cases {
		err := Validate(domain.ChainEthereum, addr)
		require.Error(t, err, addr)
		assert.ErrorIs(t, err, errors.ErrInvalidAddress)
	}
}

func TestValidateBitcoin(t *testing.T) {
	valid := []string{
		"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",         // legacy P2PKH
		"3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy",         // P2SH
		"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", // bech32
		"bc1qmfu34w2jsz867kv3nef8algrds5xhukgpvlk3q", // bech32
	}
	for _, addr := range valid {
		assert.NoError(t, Validate(domain.ChainBitcoin, addr), addr)
	}

	invalid := []string{
		"0x7F367cC41522cE07553e823bf3be79A889DEbe1B", // EVM shape
		"1A1zP1eP5QGefi2DMPTfTL5SLmv7",               // too short
		"xc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", // bad prefix
	}
	for _, addr := range invalid {
		assert.ErrorIs(t, Validate(domain.ChainBitcoin, addr), errors.ErrInvalidAddress, addr)
	}
}

func TestValidateTron(t *testing.T) {
	assert.NoError(t, Validate(domain.ChainTron, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"))

	invalid := []string{
		"R7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",  // missing T
		"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6",  // one char short
		"TI7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", // I is not base58
	}
	for _, addr := range invalid {
		assert.ErrorIs(t, Validate(domain.ChainTron, addr), errors.ErrInvalidAddress, addr)
	}
}

func TestValidateTrimsWhitespace(t *testing.T) {
	assert.NoError(t, Validate(domain.ChainEthereum, "  0x7F367cC41522cE07553e823bf3be79A889DEbe1B  "))
}

func TestValidateUnsupportedChain(t *testing.T) {
	err := Validate(domain.Chain("solana"), "whatever")
	assert.ErrorIs(t, err, errors.ErrChainNotSupported)
}

func TestParseChain(t *testing.T) {
	chain, err := ParseChain("  Ethereum ")
	require.NoError(t, err)
	assert.Equal(t, domain.ChainEthereum, chain)

	for _, raw := range []string{"ethereum", "bsc", "polygon", "bitcoin", "tron"} {
		_, err := ParseChain(raw)
		assert.NoError(t, err, raw)
	}

	_, err = ParseChain("dogecoin")
	assert.ErrorIs(t, err, errors.ErrChainNotSupported)
}
