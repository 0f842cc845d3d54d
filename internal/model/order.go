package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidSide = errors.New("invalid side")

// Side направление ордера.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide принимает buy/sell в любом регистре.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

type TimeInForce string

const GoodTillCanceled TimeInForce = "GOOD_TILL_CANCELED"

// OrderRequest собирается заново для каждой команды и не хранится после вызова.
type OrderRequest struct {
	Symbol      string
	Side        Side
	Type        OrderType
	Quantity    decimal.Decimal
	Price       decimal.Decimal // только для LIMIT
	TimeInForce TimeInForce     // только для LIMIT
}

func NewMarketOrder(symbol string, side Side, quantity decimal.Decimal) OrderRequest {
	return OrderRequest{
		Symbol:   symbol,
		Side:     side,
		Type:     OrderTypeMarket,
		Quantity: quantity,
	}
}

func NewLimitOrder(symbol string, side Side, quantity, price decimal.Decimal) OrderRequest {
	return OrderRequest{
		Symbol:      symbol,
		Side:        side,
		Type:        OrderTypeLimit,
		Quantity:    quantity,
		Price:       price,
		TimeInForce: GoodTillCanceled,
	}
}

func (r OrderRequest) IsLimit() bool {
	return r.Type == OrderTypeLimit
}

// Order запись журнала ордеров (таблица orders).
type Order struct {
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	OrderType string    `json:"order_type"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOrderFromRequest готовит запись журнала по принятому биржей ордеру.
func NewOrderFromRequest(orderID, status string, req OrderRequest) *Order {
	return &Order{
		OrderID:   orderID,
		Symbol:    req.Symbol,
		Side:      string(req.Side),
		OrderType: string(req.Type),
		Price:     req.Price.InexactFloat64(),
		Quantity:  req.Quantity.InexactFloat64(),
		Status:    status,
	}
}
