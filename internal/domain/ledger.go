package domain

import "time"

// Ledger is one consistent snapshot of the financial data. It is read-only for
// the lifetime of a query.
type Ledger struct {
	Transactions []Transaction
	Categories   []Category
	Budgets      []Budget
}

// LatestDate returns the most recent transaction date, or the zero time for an
// empty ledger.
func (l *Ledger) LatestDate() time.Time {
	var latest time.Time
	for _, tx := range l.Transactions {
		if tx.Date.After(latest) {
			latest = tx.Date
		}
	}
	return latest
}

// CategoryName resolves a category id to its display name. It never fails:
// ids missing from the registry resolve to UnknownCategoryName.
func (l *Ledger) CategoryName(id string) string {
	for _, c := range l.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return UnknownCategoryName
}

// CategoryIDs returns the registry ids in registry order.
func (l *Ledger) CategoryIDs() []string {
	ids := make([]string, 0, len(l.Categories))
	for _, c := range l.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
