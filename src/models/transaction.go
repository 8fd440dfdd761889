package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TransactionPatch carries the fields of a partial update. A nil field, and
// a zero value (empty string, zero amount, zero time), leaves the stored
// value unchanged.
type TransactionPatch struct {
	Type        *string
	Category    *string
	Amount      *decimal.Decimal
	Date        *time.Time
	Description *string
}

// Apply merges p into t in place.
func (t *Transaction) Apply(p TransactionPatch) {
	if p.Type != nil && *p.Type != "" {
		t.Type = *p.Type
	}
	if p.Category != nil && *p.Category != "" {
		t.Category = *p.Category
	}
	if p.Amount != nil && !p.Amount.IsZero() {
		t.Amount = *p.Amount
	}
	if p.Date != nil && !p.Date.IsZero() {
		t.Date = *p.Date
	}
	if p.Description != nil && *p.Description != "" {
		t.Description = *p.Description
	}
}

func ValidType(s string) bool {
	return s == TypeIncome || s == TypeExpense
}

// SortByDateDesc orders transactions most recent first. Equal dates keep
// their relative order.
func SortByDateDesc(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.After(txns[j].Date)
	})
}
