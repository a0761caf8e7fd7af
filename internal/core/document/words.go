package document

import (
	"strings"

	"github.com/shopspring/decimal"
)

var unitWords = [...]string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = [...]string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

const (
	crore    = 10_000_000
	lakh     = 100_000
	thousand = 1_000
)

// NumberToWords spells an integer using the Indian grouping
// (crore, lakh, thousand, hundred).
func NumberToWords(n int64) string {
	if n == 0 {
		return "Zero"
	}
	if n < 0 {
		return "Minus " + NumberToWords(-n)
	}
	return strings.TrimSpace(spell(n))
}

func spell(n int64) string {
	switch {
	case n >= crore:
		return join(spell(n/crore)+" Crore", spell(n%crore))
	case n >= lakh:
		return join(spell(n/lakh)+" Lakh", spell(n%lakh))
	case n >= thousand:
		return join(spell(n/thousand)+" Thousand", spell(n%thousand))
	case n >= 100:
		return join(unitWords[n/100]+" Hundred", spell(n%100))
	case n >= 20:
		if n%10 == 0 {
			return tensWords[n/10]
		}
		return tensWords[n/10] + "-" + unitWords[n%10]
	default:
		return unitWords[n]
	}
}

func join(head, tail string) string {
	if tail == "" {
		return head
	}
	return head + " " + tail
}

// AmountInWords spells the rupee part of an amount, appending paise when
// the rounded amount has a fractional part.
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	negative := amount.IsNegative()
	amount = amount.Abs()

	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).Mul(hundred).IntPart()

	words := NumberToWords(rupees)
	if paise > 0 {
		words += " and " + NumberToWords(paise) + " Paise"
	}
	if negative {
		words = "Minus " + words
	}
	return words
}

// RupeesInWords is the phrase printed under the grand total.
func RupeesInWords(amount decimal.Decimal) string {
	return "Rupees " + AmountInWords(amount) + " Only"
}
