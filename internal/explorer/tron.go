package explorer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"amlscreen/internal/domain"
	"amlscreen/pkg/errors"

	"github.com/shopspring/decimal"
)

const tronscanBase = "https://apilist.tronscanapi.com/api"

// Official USDT TRC-20 contract, used to count stablecoin transfers.
const tronUSDTContract = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"

var sunPerTRX = decimal.New(1, 6)

// Canonical DTOs for the Tronscan API.
type tronAccount struct {
	Balance               int64 `json:"balance"`
	TotalTransactionCount int   `json:"totalTransactionCount"`
	DateCreated           int64 `json:"date_created"`
	WithPriceTokens       []struct {
		TokenName    string `json:"tokenName"`
		TokenAbbr    string `json:"tokenAbbr"`
		TokenID      string `json:"tokenId"`
		TokenType    string `json:"tokenType"`
		Balance      string `json:"balance"`
		TokenDecimal int    `json:"tokenDecimal"`
	} `json:"withPriceTokens"`
}

type tronTxList struct {
	Data []tronTx `json:"data"`
}

type tronTx struct {
	Hash         string `json:"hash"`
	OwnerAddress string `json:"ownerAddress"`
	ToAddress    string `json:"toAddress"`
	Amount       int64  `json:"amount"`
	Timestamp    int64  `json:"timestamp"`
	TriggerInfo  *struct {
		ContractAddress string `json:"contract_address"`
		Data            string `json:"data"`
	} `json:"trigger_info"`
}

func (s *Service) fetchTron(ctx context.Context, addr string) (*domain.OnChainSnapshot, error) {
	var (
		acct   tronAccount
		txResp tronTxList
		acctOK bool
		txOK   bool
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		acctOK = s.getJSON(ctx, fmt.Sprintf("%s/accountv2?address=%s", tronscanBase, addr), &acct)
	}()
	go func() {
		defer wg.Done()
		txOK = s.getJSON(ctx, fmt.Sprintf("%s/transaction?sort=-timestamp&count=true&limit=50&start=0&address=%s", tronscanBase, addr), &txResp)
	}()
	wg.Wait()

	if !acctOK {
		return nil, errors.New("tronscan: account lookup failed")
	}

	balance := decimal.NewFromInt(acct.Balance).Div(sunPerTRX)
	snap := &domain.OnChainSnapshot{
		Provider:   "Tronscan",
		Chain:      domain.ChainTron,
		Balance:    balance.StringFixed(6) + " TRX",
		BalanceRaw: &balance,
		TxCount:    acct.TotalTransactionCount,
	}

	if acct.DateCreated > 0 {
		t := time.UnixMilli(acct.DateCreated).UTC()
		snap.FirstTransaction = &t
	}

	var txs []tronTx
	if txOK {
		txs = txResp.Data
	}
	snap.TokenTxCount = len(txs)

	self := strings.ToLower(addr)
	counterparties := make(map[string]struct{})
	for _, tx := range txs {
		if tx.TriggerInfo != nil {
			if tx.TriggerInfo.ContractAddress == tronUSDTContract {
				snap.StablecoinTxCount++
			}
			snap.ContractInteractions++
		}
		if from := strings.ToLower(tx.OwnerAddress); from != "" && from != self {
			counterparties[from] = struct{}{}
		}
		if to := strings.ToLower(tx.ToAddress); to != "" && to != self {
			counterparties[to] = struct{}{}
		}
	}
	if len(txs) > 0 {
		n := len(counterparties)
		snap.UniqueCounterparties = &n
		if txs[0].Timestamp > 0 {
			t := time.UnixMilli(txs[0].Timestamp).UTC()
			snap.LastTransaction = &t
		}
	}

	limit := s.sampleSize
	if limit > len(txs) {
		limit = len(txs)
	}
	for _, tx := range txs[:limit] {
		entry := domain.SampledTx{
			Hash: tx.Hash,
			From: tx.OwnerAddress,
			To:   tx.ToAddress,
		}
		if tx.Amount > 0 {
			entry.Value = decimal.NewFromInt(tx.Amount).Div(sunPerTRX).StringFixed(6)
		}
		if tx.Timestamp > 0 {
			t := time.UnixMilli(tx.Timestamp).UTC()
			entry.Timestamp = &t
		}
		if tx.TriggerInfo != nil && tx.TriggerInfo.Data != "" {
			entry.HasCallData = true
		}
		snap.RecentTxSample = append(snap.RecentTxSample, entry)
	}

	for _, tok := range acct.WithPriceTokens {
		if tok.TokenType != "trc20" {
			continue
		}
		bal := decimal.Zero
		if v, err := decimal.NewFromString(tok.Balance); err == nil {
			bal = v.Div(decimal.New(1, int32(tok.TokenDecimal)))
		}
		snap.TokenBalances = append(snap.TokenBalances, domain.TokenBalance{
			Symbol:   tok.TokenAbbr,
			Name:     tok.TokenName,
			Contract: tok.TokenID,
			Balance:  bal,
		})
	}

	return snap, nil
}
