package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"trading-bot/internal/model"
)

// Formatter переводит доменные значения в строки, которые ждёт Bybit v5.
type Formatter struct {
}

func (m *Formatter) SideToByBit(side model.Side) (string, error) {
	switch side {
	case model.SideBuy:
		return "Buy", nil
	case model.SideSell:
		return "Sell", nil
	default:
		return "", fmt.Errorf("side %q is not supported by SideToByBit", side)
	}
}

func (m *Formatter) TypeToByBit(orderType model.OrderType) (string, error) {
	switch orderType {
	case model.OrderTypeMarket:
		return "Market", nil
	case model.OrderTypeLimit:
		return "Limit", nil
	default:
		return "", fmt.Errorf("order type %q is not supported by TypeToByBit", orderType)
	}
}

func (m *Formatter) TimeInForceToByBit(tif model.TimeInForce) string {
	switch tif {
	case model.GoodTillCanceled:
		return "GTC"
	default:
		return ""
	}
}

// FormatDecimal без экспоненты и лишних нулей: 0.0100 -> "0.01".
func (m *Formatter) FormatDecimal(d decimal.Decimal) string {
	return d.String()
}

// NormalizeSymbol приводит тикер к виду BTCUSDT.
func (m *Formatter) NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// FormatValue строковое представление значения из ответа биржи для таблицы.
func (m *Formatter) FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return decimal.NewFromFloat(val).String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
