package ledger

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start civil.Date
	End   civil.Date
}

// Days returns the number of days covered, counting both ends.
func (r DateRange) Days() int { return r.End.DaysSince(r.Start) + 1 }

// DayTotal is the closing balance of one calendar day.
type DayTotal struct {
	Date    civil.Date
	Balance decimal.Decimal
}

// GetDateRange returns the span from the earliest to the latest transaction
// date, or today to today when the model holds no transactions.
func (m *Model) GetDateRange() DateRange {
	txs := SortByDate(m.Transactions())
	if len(txs) == 0 {
		today := m.Today()
		return DateRange{Start: today, End: today}
	}
	return DateRange{Start: txs[0].date, End: txs[len(txs)-1].date}
}

// GetXTotals returns one closing balance per day, gap free, for account or
// for the whole model when account is nil. Without a range the series runs
// from the first transaction to the later of the last transaction and today.
// With a range the first entry starts from the balance accumulated before
// r.Start. It returns nil when there are no transactions.
func (m *Model) GetXTotals(account *Account, r *DateRange) []DayTotal {
	var txs []*Transaction
	if account == nil {
		txs = m.Transactions()
	} else {
		txs = account.Transactions()
	}
	txs = SortByDate(txs)
	if len(txs) == 0 {
		return nil
	}

	var start, end civil.Date
	balance := decimal.Zero
	if r != nil {
		start, end = r.Start, r.End
		inRange := txs[:0:0]
		for _, t := range txs {
			switch {
			case t.date.Before(start):
				balance = balance.Add(t.amount)
			case !t.date.After(end):
				inRange = append(inRange, t)
			}
		}
		txs = inRange
	} else {
		start, end = txs[0].date, txs[len(txs)-1].date
		if today := m.Today(); today.After(end) {
			end = today
		}
	}
	if end.Before(start) {
		return nil
	}

	totals := make([]DayTotal, 0, end.DaysSince(start)+1)
	i := 0
	for day := start; !day.After(end); day = day.AddDays(1) {
		for i < len(txs) && !txs[i].date.After(day) {
			balance = balance.Add(txs[i].amount)
			i++
		}
		totals = append(totals, DayTotal{Date: day, Balance: balance})
	}
	return totals
}
