package flashtoken

import "strings"

// OfficialContract describes a verified stablecoin deployment.
type OfficialContract struct {
	Symbol string
	Chain  string
	Issuer string
}

// officialContracts maps lowercase contract addresses to their verified
// issuers. Anything imitating a stablecoin from an address outside this
// table is treated as a fake.
var officialContracts = map[string]OfficialContract{
	// TRON
	"tr7nhqjekqxgtci8q8zy4pl8otszgjlj6t": {Symbol: "USDT", Chain: "tron", Issuer: "Tether (official)"},
	"tekxitehnzsmse2xqrbj4w32run966rdz8": {Symbol: "USDC", Chain: "tron", Issuer: "Circle (official)"},
	"tmwfhyxljarok54fi9rdnj6ys7aewn5ch9": {Symbol: "USDD", Chain: "tron", Issuer: "TRON DAO (official)"},
	"tupmherzl2fhh4svnulabnkloks4gjc1f4": {Symbol: "TUSD", Chain: "tron", Issuer: "TrueUSD (official)"},

	// Ethereum
	"0xdac17f958d2ee523a2206206994597c13d831ec7": {Symbol: "USDT", Chain: "ethereum", Issuer: "Tether (official)"},
	"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": {Symbol: "USDC", Chain: "ethereum", Issuer: "Circle (official)"},
	"0x6b175474e89094c44da98b954eedeac495271d0f": {Symbol: "DAI", Chain: "ethereum", Issuer: "MakerDAO (official)"},
	"0x4fabb145d64652a948d72533023f6e7a623c7c53": {Symbol: "BUSD", Chain: "ethereum", Issuer: "Paxos (official)"},

	// BSC
	"0x55d398326f99059ff775485246999027b3197955": {Symbol: "USDT", Chain: "bsc", Issuer: "Tether (official BSC)"},
	"0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d": {Symbol: "USDC", Chain: "bsc", Issuer: "Circle (official BSC)"},
	"0xe9e7cea3dedca5984780bafc599bd69add087d56": {Symbol: "BUSD", Chain: "bsc", Issuer: "Paxos (official BSC)"},

	// Polygon
	"0xc2132d05d31c914a87c6611c10748aeb04b58e8f": {Symbol: "USDT", Chain: "polygon", Issuer: "Tether (official Polygon)"},
	"0x2791bca1f2de4661ed88a30c99a7a9449aa84174": {Symbol: "USDC", Chain: "polygon", Issuer: "Circle (official Polygon)"},
	"0x3c499c542cef5e3811e1192ce70d8cc03d5c3359": {Symbol: "USDC", Chain: "polygon", Issuer: "Circle USDC Native"},
}

// lookupOfficial resolves a contract address against the verified table.
func lookupOfficial(contract string) (OfficialContract, bool) {
	c, ok := officialContracts[strings.ToLower(contract)]
	return c, ok
}

// looksLikeStablecoin reports whether a token's name or symbol imitates a
// mainstream stablecoin. Scammers reuse these strings to make fake tokens
// pass a casual glance.
func looksLikeStablecoin(name, symbol string) bool {
	if name == "" && symbol == "" {
		return false
	}
	n := strings.ToLower(name)
	s := strings.ToLower(symbol)

	switch s {
	case "usdt", "usdc", "busd", "dai", "tusd":
		return true
	}
	return strings.Contains(s, "usdt") || strings.Contains(s, "tether") ||
		strings.Contains(n, "usdt") || strings.Contains(n, "tether") ||
		strings.Contains(n, "usd coin") || strings.Contains(n, "tethertoken")
}
