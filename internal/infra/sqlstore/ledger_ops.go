package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/ledger"
)

var _ ledger.Loader = (*Store)(nil)

// Load implements ledger.Loader. Transactions come back in date order.
func (s *Store) Load(ctx context.Context) (*domain.Ledger, error) {
	txs, err := s.listTransactions(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.listCategories(ctx)
	if err != nil {
		return nil, err
	}
	budgets, err := s.listBudgets(ctx)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("source", string(s.dialect)).
		Int("transactions", len(txs)).
		Msg("Ledger loaded from database")

	return &domain.Ledger{
		Transactions: txs,
		Categories:   categories,
		Budgets:      budgets,
	}, nil
}

func (s *Store) listTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount, category_id, account_id, type,
			merchant_name, merchant_location, notes, tags
		FROM transactions
		ORDER BY date, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listTransactions: query: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		var (
			tx                             domain.Transaction
			date                           any
			category, account              sql.NullString
			merchantName, merchantLocation sql.NullString
			notes, tags                    sql.NullString
		)
		if err := rows.Scan(&tx.ID, &date, &tx.Description, &tx.Amount, &category, &account, &tx.Type,
			&merchantName, &merchantLocation, &notes, &tags); err != nil {
			return nil, fmt.Errorf("listTransactions: scan: %w", err)
		}

		if tx.Date, err = scanDate(date); err != nil {
			return nil, fmt.Errorf("listTransactions: transaction %s: %w", tx.ID, err)
		}
		tx.Category = category.String
		tx.Account = account.String
		tx.Notes = notes.String
		if merchantName.Valid {
			tx.Merchant = &domain.Merchant{Name: merchantName.String, Location: merchantLocation.String}
		}
		if tags.Valid && tags.String != "" {
			if err := json.Unmarshal([]byte(tags.String), &tx.Tags); err != nil {
				return nil, fmt.Errorf("listTransactions: transaction %s: tags: %w", tx.ID, err)
			}
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listTransactions: rows: %w", err)
	}
	return txs, nil
}

func (s *Store) listCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, parent_id, icon, color
		FROM categories
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listCategories: query: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var (
			c                   domain.Category
			parent, icon, color sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &parent, &icon, &color); err != nil {
			return nil, fmt.Errorf("listCategories: scan: %w", err)
		}
		if parent.Valid {
			p := parent.String
			c.Parent = &p
		}
		c.Icon = icon.String
		c.Color = color.String
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listCategories: rows: %w", err)
	}
	return categories, nil
}

func (s *Store) listBudgets(ctx context.Context) ([]domain.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, period, monthly_limit, spent, remaining
		FROM budgets
		ORDER BY period, category_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listBudgets: query: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		var b domain.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.Period, &b.MonthlyLimit, &b.Spent, &b.Remaining); err != nil {
			return nil, fmt.Errorf("listBudgets: scan: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listBudgets: rows: %w", err)
	}
	return budgets, nil
}

// Import upserts every record of l in a single transaction.
func (s *Store) Import(ctx context.Context, l *domain.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Import: begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range l.Categories {
		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO categories (id, name, type, parent_id, icon, color)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name, type = excluded.type, parent_id = excluded.parent_id,
				icon = excluded.icon, color = excluded.color
		`), c.ID, c.Name, c.Type, nullPtr(c.Parent), nullString(c.Icon), nullString(c.Color)); err != nil {
			return fmt.Errorf("Import: category %s: %w", c.ID, err)
		}
	}

	for _, t := range l.Transactions {
		var merchantName, merchantLocation sql.NullString
		if t.Merchant != nil {
			merchantName = sql.NullString{String: t.Merchant.Name, Valid: true}
			merchantLocation = nullString(t.Merchant.Location)
		}
		tags, err := encodeTags(t.Tags)
		if err != nil {
			return fmt.Errorf("Import: transaction %s: %w", t.ID, err)
		}

		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO transactions (id, date, description, amount, category_id, account_id, type,
				merchant_name, merchant_location, notes, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				date = excluded.date, description = excluded.description, amount = excluded.amount,
				category_id = excluded.category_id, account_id = excluded.account_id, type = excluded.type,
				merchant_name = excluded.merchant_name, merchant_location = excluded.merchant_location,
				notes = excluded.notes, tags = excluded.tags
		`), t.ID, t.Date.Format(time.DateOnly), t.Description, t.Amount.String(),
			nullString(t.Category), nullString(t.Account), t.Type,
			merchantName, merchantLocation, nullString(t.Notes), tags); err != nil {
			return fmt.Errorf("Import: transaction %s: %w", t.ID, err)
		}
	}

	for _, b := range l.Budgets {
		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO budgets (id, category_id, period, monthly_limit, spent, remaining)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				category_id = excluded.category_id, period = excluded.period,
				monthly_limit = excluded.monthly_limit, spent = excluded.spent, remaining = excluded.remaining
		`), b.ID, b.Category, b.Period, b.MonthlyLimit.String(), b.Spent.String(), b.Remaining.String()); err != nil {
			return fmt.Errorf("Import: budget %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Import: commit: %w", err)
	}

	s.log.Info().
		Int("transactions", len(l.Transactions)).
		Int("categories", len(l.Categories)).
		Int("budgets", len(l.Budgets)).
		Msg("Ledger imported")
	return nil
}

// scanDate accepts the driver's rendering of a date column: time.Time from
// Postgres DATE, text from SQLite.
func scanDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		y, m, day := d.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
	case string:
		return ledger.ParseDate(d)
	case []byte:
		return ledger.ParseDate(string(d))
	default:
		return time.Time{}, fmt.Errorf("%w: unexpected date value %T", ledger.ErrInvalidTransaction, v)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func encodeTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
