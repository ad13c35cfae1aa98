package defi

import (
	"strings"

	"amlscreen/internal/domain"
)

// Protocol is one registry entry. RiskTier is only meaningful for mixers;
// bridges and DEXs carry no tier of their own.
type Protocol struct {
	Name     string
	RiskTier domain.Severity
}

// Registry holds the protocol address books the classifier matches sampled
// transactions against. Keys are lowercase addresses. The registry is built
// once at startup and injected; it is never mutated afterwards.
type Registry struct {
	mixers      map[string]Protocol
	bridges     map[string]Protocol
	dexs        map[string]Protocol
	knownTokens map[string]struct{}
}

// NewRegistry builds a registry from explicit address books, lowercasing
// every key.
func NewRegistry(mixers, bridges, dexs map[string]Protocol, knownTokens []string) *Registry {
	r := &Registry{
		mixers:      make(map[string]Protocol, len(mixers)),
		bridges:     make(map[string]Protocol, len(bridges)),
		dexs:        make(map[string]Protocol, len(dexs)),
		knownTokens: make(map[string]struct{}, len(knownTokens)),
	}
	for addr, p := range mixers {
		r.mixers[strings.ToLower(addr)] = p
	}
	for addr, p := range bridges {
		r.bridges[strings.ToLower(addr)] = p
	}
	for addr, p := range dexs {
		r.dexs[strings.ToLower(addr)] = p
	}
	for _, addr := range knownTokens {
		r.knownTokens[strings.ToLower(addr)] = struct{}{}
	}
	return r
}

// DefaultRegistry returns the built-in address books covering the major
// EVM mixers, bridges and DEX routers plus the mainstream token contracts
// whose transfers must not count as opaque hops.
func DefaultRegistry() *Registry {
	mixers := map[string]Protocol{
		"0x8589427373d6d84e98730d7795d8f6f8731fda16": {Name: "Tornado Cash", RiskTier: domain.SeverityCritical},
		"0x722122df12d4e14e13ac3b6895a86e84145b6967": {Name: "Tornado Cash Router", RiskTier: domain.SeverityCritical},
		"0xd90e2f925da726b50c4ed8d0fb90ad053324f31b": {Name: "Tornado Cash 1 ETH", RiskTier: domain.SeverityCritical},
		"0xd96f2b1cf787cf7db4f5946fa12b187a39064b15": {Name: "Tornado Cash 10 ETH", RiskTier: domain.SeverityCritical},
		"0x4736dcf1b7a3d580672cce6e7c65cd5cc9cfbfa9": {Name: "Tornado Cash 0.1 ETH", RiskTier: domain.SeverityCritical},
		"0x910cbd523d972eb0a6f4cae4618ad62622b39dbf": {Name: "Tornado Cash 100 ETH", RiskTier: domain.SeverityCritical},
		"0xd4b88df4d29f5cedd6857912842cff3b20c8cfa3": {Name: "Tornado Cash 100 ETH", RiskTier: domain.SeverityCritical},
		"0x58e8dcc13be9780fc42e8723d8ead4cf46943df2": {Name: "Tornado Cash 100 DAI", RiskTier: domain.SeverityCritical},
		"0xfa7093cdd9ee6932b4eb2c9e1cce4ce7a7abfee1": {Name: "Railgun", RiskTier: domain.SeverityHigh},
		"0xff1f2b4adb9df6fc8eafecdcbf96a2b351680455": {Name: "Aztec Protocol", RiskTier: domain.SeverityHigh},
	}
	bridges := map[string]Protocol{
		"0x3ee18b2214aff97000d974cf647e7c347e8fa585": {Name: "Wormhole"},
		"0x40ec5b33f54e0e8a33a975908c5ba1c14e5bbbdf": {Name: "Polygon Bridge"},
		"0x99c9fc46f92e8a1c0dec1b1747d010903e884be1": {Name: "Optimism Gateway"},
		"0x4dbd4fc535ac27206064b68ffcf827b0a60bab3f": {Name: "Arbitrum Inbox"},
		"0x5427fefa711eff984124bfbb1ab6fbf5e3da1820": {Name: "Synapse Bridge"},
		"0x1231deb6f5749ef6ce6943a275a1d3e7486f4eae": {Name: "LiFi Diamond"},
		"0x2796317b0ff8538f253012862c06787adfb8ceb6": {Name: "Across Bridge"},
		"0x88ad09518695c6c3712ac10a214be5109a655671": {Name: "Stargate Router"},
		"0xd9d74a29307cc6fc8bf424ee4217f1a587fbc8dc": {Name: "THORChain Router"},
	}
	dexs := map[string]Protocol{
		"0x7a250d5630b4cf539739df2c5dacb4c659f2488d": {Name: "Uniswap V2"},
		"0xe592427a0aece92de3edee1f18e0157c05861564": {Name: "Uniswap V3"},
		"0x68b3465833fb72a70ecdf485e0e4c7bd8665fc45": {Name: "Uniswap V3 R2"},
		"0x3fc91a3afd70395cd496c647d5a6cc9d4b2b7fad": {Name: "Uniswap Universal"},
		"0xd9e1ce17f2641f24ae83637ab66a2cca9c378b9f": {Name: "SushiSwap"},
		"0x10ed43c718714eb63d5aa57b78b54704e256024e": {Name: "PancakeSwap V2"},
		"0x1111111254eeb25477b68fb85ed929f73a960582": {Name: "1inch V5"},
		"0xdef1c0ded9bec7f1a1670819833240f027b25eff": {Name: "0x Exchange"},
	}
	knownTokens := []string{
		"0xdac17f958d2ee523a2206206994597c13d831ec7", // USDT (Ethereum)
		"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", // USDC (Ethereum)
		"0x6b175474e89094c44da98b954eedeac495271d0f", // DAI
		"0x4fabb145d64652a948d72533023f6e7a623c7c53", // BUSD
		"0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", // WBTC
		"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", // WETH
		"0x55d398326f99059ff775485246999027b3197955", // USDT (BSC)
		"0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d", // USDC (BSC)
		"0xe9e7cea3dedca5984780bafc599bd69add087d56", // BUSD (BSC)
		"0xc2132d05d31c914a87c6611c10748aeb04b58e8f", // USDT (Polygon)
		"0x2791bca1f2de4661ed88a30c99a7a9449aa84174", // USDC (Polygon)
		"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", // USDT TRC-20
		"TEkxiTehnzSME2XQRBj4w32RUN966rdz8",  // USDC TRC-20
		"TMwFHYXLJaRoK54fi9RDNj6ys7AeWn5cH9", // USDD
		"TNUoPNXU4gfzCWQRWGw9BELUQNTiYHM7h6", // WIN
		"TFczxzPCHNThTeHn2Y83n64uxCxN2fSLtJ", // SUN
		"TKvjMRMHwBhbSyXLbEoRLBqyj3vQ2zZGyN", // JST
	}

	return NewRegistry(mixers, bridges, dexs, knownTokens)
}

func (r *Registry) mixer(addr string) (Protocol, bool) {
	p, ok := r.mixers[strings.ToLower(addr)]
	return p, ok
}

func (r *Registry) bridge(addr string) (Protocol, bool) {
	p, ok := r.bridges[strings.ToLower(addr)]
	return p, ok
}

func (r *Registry) dex(addr string) (Protocol, bool) {
	p, ok := r.dexs[strings.ToLower(addr)]
	return p, ok
}

func (r *Registry) knownToken(addr string) bool {
	_, ok := r.knownTokens[strings.ToLower(addr)]
	return ok
}
