package flashtoken

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var tronscanBase = "https://apilist.tronscanapi.com"

// blockscoutBases maps EVM chain names to public Blockscout instances,
// which list address token holdings without an API key.
var blockscoutBases = map[string]string{
	"ethereum": "https://eth.blockscout.com",
	"bsc":      "https://bsc.blockscout.com",
	"polygon":  "https://polygon.blockscout.com",
}

// listedToken is one wallet holding reported by a listing API, normalized
// to display units.
type listedToken struct {
	Name     string
	Symbol   string
	Contract string
	Balance  decimal.Decimal
	Holders  *int
}

// contractInfo is the Tronscan per-contract verification record.
type contractInfo struct {
	Name    string
	Symbol  string
	Holders int
	IsVIP   bool
	Issuer  string
}

type tronTokenList struct {
	Data []struct {
		TokenName    string      `json:"tokenName"`
		TokenAbbr    string      `json:"tokenAbbr"`
		TokenID      string      `json:"tokenId"`
		TokenType    string      `json:"tokenType"`
		Balance      json.Number `json:"balance"`
		TokenDecimal int32       `json:"tokenDecimal"`
	} `json:"data"`
}

type blockscoutTokenList struct {
	Items []struct {
		Value string `json:"value"`
		Token struct {
			Name     string `json:"name"`
			Symbol   string `json:"symbol"`
			Address  string `json:"address"`
			Decimals string `json:"decimals"`
			Holders  string `json:"holders"`
		} `json:"token"`
	} `json:"items"`
}

type tronContractList struct {
	TRC20Tokens []struct {
		Name         string `json:"name"`
		Symbol       string `json:"symbol"`
		HoldersCount int    `json:"holders_count"`
		VIP          bool   `json:"vip"`
		IssuerAddr   string `json:"issuer_addr"`
	} `json:"trc20_tokens"`
}

// fetchTronTokens lists every TRC-20 holding of the address via Tronscan.
func (s *Service) fetchTronTokens(ctx context.Context, address string) ([]listedToken, bool) {
	var list tronTokenList
	u := fmt.Sprintf("%s/api/account/tokens?address=%s&start=0&limit=50", tronscanBase, url.QueryEscape(address))
	if !s.getJSON(ctx, u, &list) || list.Data == nil {
		return nil, false
	}

	var tokens []listedToken
	for _, t := range list.Data {
		if t.TokenType != "trc20" && !strings.HasPrefix(t.TokenID, "T") {
			continue
		}
		dec := t.TokenDecimal
		if dec == 0 {
			dec = 6
		}
		raw, err := decimal.NewFromString(t.Balance.String())
		if err != nil {
			raw = decimal.Zero
		}
		tokens = append(tokens, listedToken{
			Name:     t.TokenName,
			Symbol:   t.TokenAbbr,
			Contract: t.TokenID,
			Balance:  raw.Shift(-dec),
		})
	}
	return tokens, true
}

// fetchBlockscoutTokens lists an EVM address's token holdings.
func (s *Service) fetchBlockscoutTokens(ctx context.Context, chain, address string) ([]listedToken, bool) {
	base, ok := blockscoutBases[chain]
	if !ok {
		return nil, false
	}
	var list blockscoutTokenList
	u := fmt.Sprintf("%s/api/v2/addresses/%s/tokens", base, url.PathEscape(address))
	if !s.getJSON(ctx, u, &list) || list.Items == nil {
		return nil, false
	}

	var tokens []listedToken
	for _, item := range list.Items {
		dec, err := strconv.ParseInt(item.Token.Decimals, 10, 32)
		if err != nil || dec == 0 {
			dec = 18
		}
		raw, err := decimal.NewFromString(item.Value)
		if err != nil {
			raw = decimal.Zero
		}
		tok := listedToken{
			Name:     item.Token.Name,
			Symbol:   item.Token.Symbol,
			Contract: item.Token.Address,
			Balance:  raw.Shift(int32(-dec)),
		}
		if h, err := strconv.Atoi(item.Token.Holders); err == nil && h > 0 {
			tok.Holders = &h
		}
		tokens = append(tokens, tok)
	}
	return tokens, true
}

// verifyTronContract fetches holder count and VIP status for one TRC-20
// contract.
func (s *Service) verifyTronContract(ctx context.Context, contract string) (*contractInfo, bool) {
	var list tronContractList
	u := fmt.Sprintf("%s/api/token_trc20?contract=%s", tronscanBase, url.QueryEscape(contract))
	if !s.getJSON(ctx, u, &list) || len(list.TRC20Tokens) == 0 {
		return nil, false
	}
	info := list.TRC20Tokens[0]
	return &contractInfo{
		Name:    info.Name,
		Symbol:  info.Symbol,
		Holders: info.HoldersCount,
		IsVIP:   info.VIP,
		Issuer:  info.IssuerAddr,
	}, true
}

// getJSON fetches a URL and decodes the body. Any transport error or
// non-2xx status reports false; listing failures degrade to the passive
// fallback rather than failing the screening.
func (s *Service) getJSON(ctx context.Context, rawURL string, dst interface{}) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	return json.NewDecoder(resp.Body).Decode(dst) == nil
}
