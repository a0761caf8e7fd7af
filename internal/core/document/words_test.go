package document

import (
	"testing"
	"time"
)

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{19, "Nineteen"},
		{20, "Twenty"},
		{41, "Forty-One"},
		{100, "One Hundred"},
		{105, "One Hundred Five"},
		{1241, "One Thousand Two Hundred Forty-One"},
		{100000, "One Lakh"},
		{250075, "Two Lakh Fifty Thousand Seventy-Five"},
		{10000000, "One Crore"},
		{123456789, "Twelve Crore Thirty-Four Lakh Fifty-Six Thousand Seven Hundred Eighty-Nine"},
		{-15, "Minus Fifteen"},
	}

	for _, tt := range tests {
		if got := NumberToWords(tt.in); got != tt.want {
			t.Errorf("NumberToWords(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAmountInWords_Paise(t *testing.T) {
	if got := AmountInWords(dec("1241.64")); got != "One Thousand Two Hundred Forty-One and Sixty-Four Paise" {
		t.Errorf("unexpected words %q", got)
	}
	if got := AmountInWords(dec("500.00")); got != "Five Hundred" {
		t.Errorf("unexpected words %q", got)
	}
	if got := RupeesInWords(dec("100000")); got != "Rupees One Lakh Only" {
		t.Errorf("unexpected words %q", got)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}
