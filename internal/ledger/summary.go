package ledger

import "github.com/shopspring/decimal"

// Summary is a read-only projection of a ledger plus an optional externally
// supplied annual income figure. NetIncome and ExpenseRatio are nil when no
// positive income is known; absent income data is not the same as zero income.
type Summary struct {
	TotalExpense decimal.Decimal
	NetIncome    *decimal.Decimal
	ExpenseRatio *decimal.Decimal
}

// Summarize derives the aggregate figures for one ledger. ExpenseRatio is a
// fraction; the presentation layer multiplies by 100 for display.
func Summarize(l Ledger, externalIncome *decimal.Decimal) Summary {
	s := Summary{TotalExpense: l.Total()}
	if externalIncome == nil || !externalIncome.IsPositive() {
		return s
	}
	net := externalIncome.Sub(s.TotalExpense)
	ratio := s.TotalExpense.Div(*externalIncome)
	s.NetIncome = &net
	s.ExpenseRatio = &ratio
	return s
}
