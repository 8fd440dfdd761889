// Package notify derives short observations about a user's recent spending.
// Nothing here is stored; every call queries the transaction store afresh.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fingenius-server/src/db"
	"fingenius-server/src/models"
	"fingenius-server/src/stats"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	welcomeID      = 0
	welcomeMessage = "Welcome to FinGenius! Add more transactions to start receiving helpful notifications."
	topWindowDays  = 30
)

type Deriver struct {
	store    db.TransactionStore
	printer  *message.Printer
	currency string
	now      func() time.Time
}

func NewDeriver(store db.TransactionStore, currency, locale string) *Deriver {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Deriver{
		store:    store,
		printer:  message.NewPrinter(tag),
		currency: currency,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (d *Deriver) WithClock(now func() time.Time) *Deriver {
	d.now = now
	return d
}

// PreviousWeek returns the Monday-start calendar week before the one
// containing now, as the half-open range [from, to).
func PreviousWeek(now time.Time) (from, to time.Time) {
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	sinceMonday := (int(today.Weekday()) + 6) % 7
	thisMonday := today.AddDate(0, 0, -sinceMonday)
	return thisMonday.AddDate(0, 0, -7), thisMonday
}

// Notifications returns the weekly summary, then the top category, or a
// single welcome note when neither applies. IDs count up from 1; the welcome
// note is 0.
func (d *Deriver) Notifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	now := d.now()
	var out []models.Notification
	push := func(msg string) {
		out = append(out, models.Notification{ID: len(out) + 1, Message: msg, Date: now})
	}

	from, to := PreviousWeek(now)
	lastWeek, err := d.store.ListTransactionsBetween(ctx, userID, models.TypeExpense, from, to)
	if err != nil {
		return nil, fmt.Errorf("query last week: %w", err)
	}
	if len(lastWeek) > 0 {
		push(fmt.Sprintf("Last week, you spent a total of %s.", d.money(stats.Compute(lastWeek).Expense)))
	}

	// No upper bound: a date entered as today in a zone ahead of the server
	// can still lie in the server's future.
	recent, err := d.store.ListTransactionsSince(ctx, userID, models.TypeExpense, now.AddDate(0, 0, -topWindowDays))
	if err != nil {
		return nil, fmt.Errorf("query last %d days: %w", topWindowDays, err)
	}
	if top, ok := stats.TopCategory(recent); ok {
		push(fmt.Sprintf("Your highest spending category in the last %d days was %q with %s.",
			topWindowDays, top.Category, d.money(top.Total)))
	}

	if len(out) == 0 {
		out = append(out, models.Notification{ID: welcomeID, Message: welcomeMessage, Date: now})
	}
	return out, nil
}

// money formats amount rounded to two places. The integer part is printed
// from an int64 so large totals keep every digit; only the fraction, which is
// below one, goes through float64.
func (d *Deriver) money(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	amount = amount.Round(2)
	whole := amount.Truncate(0)

	var out string
	if whole.BigInt().IsInt64() {
		out = d.printer.Sprint(number.Decimal(whole.IntPart()))
	} else {
		out = whole.String()
	}

	if frac := amount.Sub(whole); !frac.IsZero() {
		// Prints as "0.5" with the locale's separator; drop the leading zero.
		f := d.printer.Sprint(number.Decimal(frac.InexactFloat64(), number.MaxFractionDigits(2)))
		out += strings.TrimPrefix(f, "0")
	}
	return d.currency + sign + out
}
