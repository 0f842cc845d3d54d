package utils

import (
	"testing"

	"github.com/shopspring/decimal"

	"trading-bot/internal/model"
)

func TestFormatter_SideToByBit(t *testing.T) {
	f := &Formatter{}
	cases := map[model.Side]string{model.SideBuy: "Buy", model.SideSell: "Sell"}
	for in, want := range cases {
		got, err := f.SideToByBit(in)
		if err != nil || got != want {
			t.Errorf("SideToByBit(%s): expected %s; actual %s (%v)", in, want, got, err)
		}
	}
	if _, err := f.SideToByBit("HOLD"); err == nil {
		t.Error("expected error for unsupported side")
	}
}

func TestFormatter_TypeToByBit(t *testing.T) {
	f := &Formatter{}
	if got, _ := f.TypeToByBit(model.OrderTypeMarket); got != "Market" {
		t.Errorf("expected Market; actual %s", got)
	}
	if got, _ := f.TypeToByBit(model.OrderTypeLimit); got != "Limit" {
		t.Errorf("expected Limit; actual %s", got)
	}
	if _, err := f.TypeToByBit("STOP"); err == nil {
		t.Error("expected error for unsupported type")
	}
	if got := f.TimeInForceToByBit(model.GoodTillCanceled); got != "GTC" {
		t.Errorf("expected GTC; actual %s", got)
	}
}

func TestFormatter_FormatDecimal(t *testing.T) {
	f := &Formatter{}
	tests := map[string]string{
		"0.0100":   "0.01",
		"10":       "10",
		"1e-3":     "0.001",
		"65000.50": "65000.5",
	}
	for in, want := range tests {
		if got := f.FormatDecimal(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatDecimal(%s): expected %s; actual %s", in, want, got)
		}
	}
}

func TestFormatter_FormatValue(t *testing.T) {
	f := &Formatter{}
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Filled", "Filled"},
		{float64(1700000000000), "1700000000000"},
		{0.5, "0.5"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := f.FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v): expected %q; actual %q", tt.in, tt.want, got)
		}
	}
	if got := f.NormalizeSymbol(" btcusdt "); got != "BTCUSDT" {
		t.Errorf("NormalizeSymbol: actual %q", got)
	}
}
