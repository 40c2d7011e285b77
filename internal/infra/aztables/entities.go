package aztables

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/ledger"
	"github.com/shopspring/decimal"
)

// transactionEntity is a row of the transactions table. Amount may be stored
// as a string or a double; Tags holds a JSON array.
type transactionEntity struct {
	PartitionKey     string              `json:"PartitionKey"`
	RowKey           string              `json:"RowKey"`
	Date             string              `json:"Date"`
	Description      string              `json:"Description"`
	Amount           decimal.NullDecimal `json:"Amount"`
	Category         string              `json:"Category"`
	Account          string              `json:"Account"`
	Type             string              `json:"Type"`
	Tags             string              `json:"Tags"`
	MerchantName     string              `json:"MerchantName"`
	MerchantLocation string              `json:"MerchantLocation"`
	Notes            string              `json:"Notes"`
}

type categoryEntity struct {
	RowKey string `json:"RowKey"`
	Name   string `json:"Name"`
	Type   string `json:"Type"`
	Parent string `json:"Parent"`
	Icon   string `json:"Icon"`
	Color  string `json:"Color"`
}

type budgetEntity struct {
	PartitionKey string              `json:"PartitionKey"`
	RowKey       string              `json:"RowKey"`
	Category     string              `json:"Category"`
	MonthlyLimit decimal.NullDecimal `json:"MonthlyLimit"`
	Spent        decimal.NullDecimal `json:"Spent"`
	Remaining    decimal.NullDecimal `json:"Remaining"`
}

func toLedger(txEntities, categoryEntities, budgetEntities [][]byte) (*domain.Ledger, error) {
	l := &domain.Ledger{
		Transactions: make([]domain.Transaction, 0, len(txEntities)),
		Categories:   make([]domain.Category, 0, len(categoryEntities)),
		Budgets:      make([]domain.Budget, 0, len(budgetEntities)),
	}

	for _, raw := range txEntities {
		tx, err := decodeTransaction(raw)
		if err != nil {
			return nil, err
		}
		l.Transactions = append(l.Transactions, tx)
	}
	// Partitions come back in key order; restore date order across them.
	sort.SliceStable(l.Transactions, func(i, j int) bool {
		return l.Transactions[i].Date.Before(l.Transactions[j].Date)
	})

	for _, raw := range categoryEntities {
		var e categoryEntity
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("toLedger: category entity: %w", err)
		}
		c := domain.Category{
			ID:    e.RowKey,
			Name:  e.Name,
			Type:  e.Type,
			Icon:  e.Icon,
			Color: e.Color,
		}
		if e.Parent != "" {
			parent := e.Parent
			c.Parent = &parent
		}
		l.Categories = append(l.Categories, c)
	}

	for _, raw := range budgetEntities {
		b, err := decodeBudget(raw)
		if err != nil {
			return nil, err
		}
		l.Budgets = append(l.Budgets, b)
	}
	return l, nil
}

func decodeTransaction(raw []byte) (domain.Transaction, error) {
	var e transactionEntity
	if err := json.Unmarshal(raw, &e); err != nil {
		return domain.Transaction{}, fmt.Errorf("decodeTransaction: %w", err)
	}
	if !e.Amount.Valid {
		return domain.Transaction{}, fmt.Errorf("decodeTransaction: %s: missing amount: %w", e.RowKey, ledger.ErrInvalidTransaction)
	}
	date, err := ledger.ParseDate(e.Date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("decodeTransaction: %s: %w", e.RowKey, err)
	}

	tx := domain.Transaction{
		ID:          e.RowKey,
		Date:        date,
		Description: e.Description,
		Amount:      e.Amount.Decimal,
		Category:    e.Category,
		Account:     e.Account,
		Type:        e.Type,
		Notes:       e.Notes,
	}
	if e.Tags != "" {
		if err := json.Unmarshal([]byte(e.Tags), &tx.Tags); err != nil {
			return domain.Transaction{}, fmt.Errorf("decodeTransaction: %s: tags: %w", e.RowKey, err)
		}
	}
	if e.MerchantName != "" {
		tx.Merchant = &domain.Merchant{Name: e.MerchantName, Location: e.MerchantLocation}
	}
	return tx, nil
}

// decodeBudget reads a budget entity partitioned by period (YYYY-MM).
func decodeBudget(raw []byte) (domain.Budget, error) {
	var e budgetEntity
	if err := json.Unmarshal(raw, &e); err != nil {
		return domain.Budget{}, fmt.Errorf("decodeBudget: %w", err)
	}
	if !e.MonthlyLimit.Valid {
		return domain.Budget{}, fmt.Errorf("decodeBudget: %s: missing MonthlyLimit", e.RowKey)
	}
	return domain.Budget{
		ID:           e.RowKey,
		Category:     e.Category,
		MonthlyLimit: e.MonthlyLimit.Decimal,
		Spent:        e.Spent.Decimal,
		Remaining:    e.Remaining.Decimal,
		Period:       e.PartitionKey,
	}, nil
}
