package explorer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"amlscreen/internal/domain"

	"github.com/shopspring/decimal"
)

// Etherscan-family endpoints per EVM chain.
var evmExplorers = map[domain.Chain]struct {
	name string
	url  string
}{
	domain.ChainEthereum: {name: "Etherscan", url: "https://api.etherscan.io/api"},
	domain.ChainBSC:      {name: "BscScan", url: "https://api.bscscan.com/api"},
	domain.ChainPolygon:  {name: "PolygonScan", url: "https://api.polygonscan.com/api"},
}

var evmStablecoins = map[string]bool{
	"USDT": true,
	"USDC": true,
	"DAI":  true,
	"BUSD": true,
}

var weiPerEther = decimal.New(1, 18)

// Canonical DTOs for the Etherscan-family API. Field-name guessing stays
// inside this translation boundary.
type evmEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

type evmTxList struct {
	Status string  `json:"status"`
	Result []evmTx `json:"result"`
}

type evmTx struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	Input     string `json:"input"`
	TimeStamp string `json:"timeStamp"`
}

type evmTokenTxList struct {
	Status string       `json:"status"`
	Result []evmTokenTx `json:"result"`
}

type evmTokenTx struct {
	TokenSymbol     string `json:"tokenSymbol"`
	TokenName       string `json:"tokenName"`
	ContractAddress string `json:"contractAddress"`
	TimeStamp       string `json:"timeStamp"`
}

func (s *Service) apiKeyFor(chain domain.Chain) string {
	switch chain {
	case domain.ChainBSC:
		return s.cfg.BscscanAPIKey
	case domain.ChainPolygon:
		return s.cfg.PolygonscanAPIKey
	default:
		return s.cfg.EtherscanAPIKey
	}
}

func (s *Service) fetchEVM(ctx context.Context, chain domain.Chain, addr string) (*domain.OnChainSnapshot, error) {
	cfg := evmExplorers[chain]
	params := "&address=" + addr
	if key := s.apiKeyFor(chain); key != "" {
		params += "&apikey=" + key
	}

	var (
		balResp   evmEnvelope
		txResp    evmTxList
		tokenResp evmTokenTxList
		balOK     bool
		txOK      bool
		tokenOK   bool
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		balOK = s.getJSON(ctx, cfg.url+"?module=account&action=balance"+params, &balResp)
	}()
	go func() {
		defer wg.Done()
		txOK = s.getJSON(ctx, cfg.url+"?module=account&action=txlist"+params+
			"&startblock=0&endblock=99999999&page=1&offset=50&sort=desc", &txResp)
	}()
	go func() {
		defer wg.Done()
		tokenOK = s.getJSON(ctx, cfg.url+"?module=account&action=tokentx"+params+
			"&page=1&offset=50&sort=desc", &tokenResp)
	}()
	wg.Wait()

	snap := &domain.OnChainSnapshot{
		Provider: cfg.name,
		Chain:    chain,
		Balance:  "N/A",
	}

	if balOK && balResp.Result != "" {
		if wei, err := decimal.NewFromString(balResp.Result); err == nil {
			native := wei.Div(weiPerEther)
			snap.BalanceRaw = &native
			snap.Balance = fmt.Sprintf("%s %s", native.StringFixed(6), chain.NativeUnit())
		}
	}

	var txs []evmTx
	if txOK {
		txs = txResp.Result
	}
	var tokenTxs []evmTokenTx
	if tokenOK {
		tokenTxs = tokenResp.Result
	}

	snap.TxCount = len(txs)
	snap.TokenTxCount = len(tokenTxs)
	for _, t := range tokenTxs {
		if evmStablecoins[strings.ToUpper(t.TokenSymbol)] {
			snap.StablecoinTxCount++
		}
	}

	// List is sorted newest first: the oldest transaction sits at the end.
	if len(txs) > 0 {
		snap.FirstTransaction = parseUnixSeconds(txs[len(txs)-1].TimeStamp)
		snap.LastTransaction = parseUnixSeconds(txs[0].TimeStamp)
	}

	self := strings.ToLower(addr)
	counterparties := make(map[string]struct{})
	for _, tx := range txs {
		if from := strings.ToLower(tx.From); from != "" && from != self {
			counterparties[from] = struct{}{}
		}
		if to := strings.ToLower(tx.To); to != "" && to != self {
			counterparties[to] = struct{}{}
		}
		if tx.To != "" && hasCallData(tx.Input) {
			snap.ContractInteractions++
		}
	}
	n := len(counterparties)
	snap.UniqueCounterparties = &n

	sample := txs
	if len(sample) > s.sampleSize {
		sample = sample[:s.sampleSize]
	}
	for _, tx := range sample {
		entry := domain.SampledTx{
			Hash:        tx.Hash,
			From:        tx.From,
			To:          tx.To,
			Timestamp:   parseUnixSeconds(tx.TimeStamp),
			HasCallData: hasCallData(tx.Input),
		}
		if v, err := decimal.NewFromString(tx.Value); err == nil {
			entry.Value = v.Div(weiPerEther).StringFixed(6)
		}
		snap.RecentTxSample = append(snap.RecentTxSample, entry)
	}

	// Distinct token contracts double as the fallback input for flash-token
	// detection when the live listing API is unreachable.
	seen := make(map[string]struct{})
	for _, t := range tokenTxs {
		contract := strings.ToLower(t.ContractAddress)
		if contract == "" {
			continue
		}
		if _, dup := seen[contract]; dup {
			continue
		}
		seen[contract] = struct{}{}
		snap.TokenBalances = append(snap.TokenBalances, domain.TokenBalance{
			Symbol:   t.TokenSymbol,
			Name:     t.TokenName,
			Contract: t.ContractAddress,
		})
	}

	return snap, nil
}

func hasCallData(input string) bool {
	return input != "" && input != "0x" && len(input) > 10
}

func parseUnixSeconds(raw string) *time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return nil
	}
	t := time.Unix(secs, 0).UTC()
	return &t
}
