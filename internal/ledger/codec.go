package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidTransaction is returned when a ledger record cannot be parsed.
var ErrInvalidTransaction = errors.New("invalid transaction")

const dateFormat = "2006-01-02"

// document is the JSON shape of a ledger file. Extra top-level sections
// (accounts, goals, recurring transactions) are ignored.
type document struct {
	Transactions []transactionRecord `json:"transactions"`
	Categories   []categoryRecord    `json:"categories"`
	Budgets      []budgetRecord      `json:"budgets"`
}

type transactionRecord struct {
	ID          string           `json:"id"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    string           `json:"category"`
	Account     string           `json:"account"`
	Type        string           `json:"type"`
	Tags        []string         `json:"tags,omitempty"`
	Merchant    *merchantRecord  `json:"merchant,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

type merchantRecord struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type categoryRecord struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Parent *string `json:"parent,omitempty"`
	Icon   string  `json:"icon"`
	Color  string  `json:"color"`
}

type budgetRecord struct {
	ID           string          `json:"id"`
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	Period       string          `json:"period"`
}

// Decode reads a JSON ledger. Malformed dates or missing amounts fail the
// whole load; a partially parsed ledger is never returned.
func Decode(r io.Reader) (*domain.Ledger, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("Decode: parsing JSON: %w", err)
	}

	l := &domain.Ledger{
		Transactions: make([]domain.Transaction, 0, len(doc.Transactions)),
		Categories:   make([]domain.Category, 0, len(doc.Categories)),
		Budgets:      make([]domain.Budget, 0, len(doc.Budgets)),
	}

	for i, rec := range doc.Transactions {
		tx, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("Decode: transaction %d (%s): %w", i, rec.ID, err)
		}
		l.Transactions = append(l.Transactions, tx)
	}
	for _, rec := range doc.Categories {
		l.Categories = append(l.Categories, domain.Category{
			ID:     rec.ID,
			Name:   rec.Name,
			Type:   rec.Type,
			Parent: rec.Parent,
			Icon:   rec.Icon,
			Color:  rec.Color,
		})
	}
	for _, rec := range doc.Budgets {
		l.Budgets = append(l.Budgets, domain.Budget{
			ID:           rec.ID,
			Category:     rec.Category,
			MonthlyLimit: rec.MonthlyLimit,
			Spent:        rec.Spent,
			Remaining:    rec.Remaining,
			Period:       rec.Period,
		})
	}

	return l, nil
}

func (rec transactionRecord) toDomain() (domain.Transaction, error) {
	date, err := ParseDate(rec.Date)
	if err != nil {
		return domain.Transaction{}, err
	}
	if rec.Amount == nil {
		return domain.Transaction{}, fmt.Errorf("%w: missing amount", ErrInvalidTransaction)
	}

	tx := domain.Transaction{
		ID:          rec.ID,
		Date:        date,
		Description: rec.Description,
		Amount:      *rec.Amount,
		Category:    rec.Category,
		Account:     rec.Account,
		Type:        rec.Type,
		Tags:        rec.Tags,
		Notes:       rec.Notes,
	}
	if rec.Merchant != nil {
		tx.Merchant = &domain.Merchant{Name: rec.Merchant.Name, Location: rec.Merchant.Location}
	}
	return tx, nil
}

// ParseDate parses a YYYY-MM-DD date (a longer ISO timestamp is truncated to
// its date part) into 00:00 UTC of that day.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(dateFormat) {
		s = s[:len(dateFormat)]
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrInvalidTransaction, s)
	}
	return t, nil
}

// Encode writes l in the format read by Decode.
func Encode(w io.Writer, l *domain.Ledger) error {
	doc := document{
		Transactions: make([]transactionRecord, 0, len(l.Transactions)),
		Categories:   make([]categoryRecord, 0, len(l.Categories)),
		Budgets:      make([]budgetRecord, 0, len(l.Budgets)),
	}
	for _, tx := range l.Transactions {
		amount := tx.Amount
		rec := transactionRecord{
			ID:          tx.ID,
			Date:        tx.Date.Format(dateFormat),
			Description: tx.Description,
			Amount:      &amount,
			Category:    tx.Category,
			Account:     tx.Account,
			Type:        tx.Type,
			Tags:        tx.Tags,
			Notes:       tx.Notes,
		}
		if tx.Merchant != nil {
			rec.Merchant = &merchantRecord{Name: tx.Merchant.Name, Location: tx.Merchant.Location}
		}
		doc.Transactions = append(doc.Transactions, rec)
	}
	for _, c := range l.Categories {
		doc.Categories = append(doc.Categories, categoryRecord(c))
	}
	for _, b := range l.Budgets {
		doc.Budgets = append(doc.Budgets, budgetRecord(b))
	}

	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("Encode: writing JSON: %w", err)
	}
	return nil
}
