package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thrasher-corp/gocryptotrader/currency"
	exchanges "github.com/thrasher-corp/gocryptotrader/exchanges"
	"github.com/thrasher-corp/gocryptotrader/exchanges/bybit"

	"trading-bot/internal/model"
	"trading-bot/internal/utils"
)

// ByBit обёртка над клиентом Bybit из GoCryptoTrader.
// Поле client хранит указатель на клиента библиотеки, уже настроенного
// на нужные конечные точки и ключи.
type ByBit struct {
	client    *bybit.Bybit
	category  string
	formatter *utils.Formatter
}

func NewByBit(apiKey, apiSecret, baseURL, category string, log *slog.Logger) (*ByBit, error) {
	client := &bybit.Bybit{}
	client.SetDefaults()

	client.API.Endpoints = client.NewEndpoints()
	err := client.API.Endpoints.SetDefaultEndpoints(map[exchanges.URL]string{
		exchanges.RestFutures:      baseURL,
		exchanges.RestUSDTMargined: baseURL,
		exchanges.RestSpot:         baseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("set bybit endpoints: %w", err)
	}

	client.SetCredentials(apiKey, apiSecret, "", "", "", "")
	log.Debug("Bybit клиент GoCryptoTrader инициализирован", "base_url", baseURL, "category", category)

	return &ByBit{
		client:    client,
		category:  category,
		formatter: &utils.Formatter{},
	}, nil
}

func (b *ByBit) QueryExchangeInfo(ctx context.Context) error {
	if _, err := b.client.GetInstrumentInfo(ctx, b.category, "", "", "", "", 1); err != nil {
		return fmt.Errorf("exchange info: %w", AsAPIError(err))
	}
	return nil
}

// CreateOrder размещает ордер через PlaceOrder (v5 /order/create).
func (b *ByBit) CreateOrder(ctx context.Context, req model.OrderRequest) (model.OrderRecord, error) {
	pair, err := pairFromSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	side, err := b.formatter.SideToByBit(req.Side)
	if err != nil {
		return nil, err
	}
	orderType, err := b.formatter.TypeToByBit(req.Type)
	if err != nil {
		return nil, err
	}

	arg := &bybit.PlaceOrderParams{
		Category:      b.category,
		Symbol:        pair,
		Side:          side,
		OrderType:     orderType,
		OrderQuantity: req.Quantity.InexactFloat64(),
	}
	if req.IsLimit() {
		arg.Price = req.Price.InexactFloat64()
		arg.TimeInForce = b.formatter.TimeInForceToByBit(req.TimeInForce)
	}

	response, err := b.client.PlaceOrder(ctx, arg)
	if err != nil {
		return nil, AsAPIError(err)
	}
	return model.RecordFrom(response)
}

// GetOrder ищет один ордер по id; realtime у Bybit отдаёт и недавно закрытые.
func (b *ByBit) GetOrder(ctx context.Context, symbol, orderID string) (model.OrderRecord, error) {
	orders, err := b.client.GetOpenOrders(ctx, b.category, symbol, "", "", orderID, "", "", "", 0, 1)
	if err != nil {
		return nil, AsAPIError(err)
	}
	if orders == nil || len(orders.List) == 0 {
		return nil, &APIError{Message: fmt.Sprintf("%s: %s %s", ErrOrderNotFound, symbol, orderID)}
	}
	return model.RecordFrom(orders.List[0])
}

func pairFromSymbol(symbol string) (currency.Pair, error) {
	pair, err := currency.NewPairFromString(symbol)
	if err != nil {
		return currency.EMPTYPAIR, fmt.Errorf("currency pair from symbol %s: %w", symbol, err)
	}
	return pair, nil
}
