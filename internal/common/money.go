package common

import (
	money "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with its currency symbol for logs and the
// run summary banner. Display only; artifacts carry plain numbers.
func FormatMoney(amount decimal.Decimal, code string) string {
	if money.GetCurrency(code) == nil {
		code = money.INR
	}
	minor := amount.RoundBank(2).Mul(decimal.NewFromInt(100)).IntPart()
	return money.New(minor, code).Display()
}
