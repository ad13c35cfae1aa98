package sanctions

import (
	"os"
	"path/filepath"
	"testing"

	"amlscreen/internal/domain"
	"amlscreen/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFallbackList(t *testing.T) {
	s := NewService("", logger.NewNop())

	// Tornado Cash router, case does not matter.
	match := s.Check(domain.AddressInput{
		Chain:   domain.ChainEthereum,
		Address: "0x8589427373D6D84E98730D7795D8f6f8731FDA16",
	})
	assert.True(t, match.Hit)
	assert.Contains(t, match.Detail, "OFAC/SDN")

	clean := s.Check(domain.AddressInput{
		Chain:   domain.ChainEthereum,
		Address: "0x7f367cc41522ce07553e823bf3be79a889debe1b",
	})
	assert.False(t, clean.Hit)
	assert.Empty(t, clean.Detail)
}

func TestCheckLoadsListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdn_list.json")
	extra := "0x1111111111111111111111111111111111111111"
	require.NoError(t, os.WriteFile(path, []byte(`["`+extra+`"]`), 0o644))

	s := NewService(path, logger.NewNop())

	assert.True(t, s.Check(domain.AddressInput{Chain: domain.ChainEthereum, Address: extra}).Hit)
	// Fallback entries stay merged in.
	assert.True(t, s.Check(domain.AddressInput{
		Chain:   domain.ChainBitcoin,
		Address: "bc1qmfu34w2jsz867kv3nef8algrds5xhukgpvlk3q",
	}).Hit)
	assert.Equal(t, len(knownSanctioned)+1, s.Size())
}

func TestCheckMalformedListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdn_list.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	s := NewService(path, logger.NewNop())

	// Degrades to fallback only.
	assert.Equal(t, len(knownSanctioned), s.Size())
}

func TestCheckMissingListFile(t *testing.T) {
	s := NewService("/nonexistent/sdn_list.json", logger.NewNop())
	assert.Equal(t, len(knownSanctioned), s.Size())
}
