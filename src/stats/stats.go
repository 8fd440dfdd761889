// Package stats derives dashboard figures from a set of transactions.
// Every function here is pure: callers recompute after each change instead
// of patching a previous result.
package stats

import (
	"fingenius-server/src/models"

	"github.com/shopspring/decimal"
)

// Compute sums income and expense amounts. Transactions whose type is
// neither income nor expense count toward neither total.
func Compute(txns []models.Transaction) models.Stats {
	income := decimal.Zero
	expense := decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case models.TypeIncome:
			income = income.Add(t.Amount)
		case models.TypeExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return models.Stats{
		Balance: income.Sub(expense),
		Income:  income,
		Expense: expense,
	}
}

// ByCategory totals expenses per category, in the order each category is
// first seen.
func ByCategory(txns []models.Transaction) []models.CategoryTotal {
	index := make(map[string]int)
	var totals []models.CategoryTotal
	for _, t := range txns {
		if t.Type != models.TypeExpense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i
			totals = append(totals, models.CategoryTotal{Category: t.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(t.Amount)
	}
	return totals
}

// TopCategory returns the expense category with the largest total. Ties go
// to the category seen first. ok is false when there are no expenses.
func TopCategory(txns []models.Transaction) (top models.CategoryTotal, ok bool) {
	for _, ct := range ByCategory(txns) {
		if !ok || ct.Total.GreaterThan(top.Total) {
			top, ok = ct, true
		}
	}
	return top, ok
}
