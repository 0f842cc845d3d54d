package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"
	bybit_connector "github.com/wuhewuhe/bybit.go.api"

	"trading-bot/internal/model"
	"trading-bot/internal/utils"
)

// Connector клиент биржи поверх официального bybit.go.api.
// Подпись запросов и HTTP целиком на стороне библиотеки.
type Connector struct {
	client    *bybit_connector.Client
	category  string
	formatter *utils.Formatter
}

func NewConnector(apiKey, apiSecret, baseURL, category string, log *slog.Logger) *Connector {
	client := bybit_connector.NewBybitHttpClient(apiKey, apiSecret, bybit_connector.WithBaseURL(baseURL))
	log.Debug("Bybit connector инициализирован", "base_url", baseURL, "category", category)
	return &Connector{
		client:    client,
		category:  category,
		formatter: &utils.Formatter{},
	}
}

// QueryExchangeInfo проверка доступности биржи: запрос списка инструментов категории.
func (c *Connector) QueryExchangeInfo(ctx context.Context) error {
	params := map[string]interface{}{"category": c.category, "limit": 1}
	resp, err := c.client.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
	if _, err := unwrap(resp, err); err != nil {
		return fmt.Errorf("exchange info: %w", err)
	}
	return nil
}

func (c *Connector) CreateOrder(ctx context.Context, req model.OrderRequest) (model.OrderRecord, error) {
	side, err := c.formatter.SideToByBit(req.Side)
	if err != nil {
		return nil, err
	}
	orderType, err := c.formatter.TypeToByBit(req.Type)
	if err != nil {
		return nil, err
	}

	params := map[string]interface{}{
		"category":  c.category,
		"symbol":    req.Symbol,
		"side":      side,
		"orderType": orderType,
		"qty":       c.formatter.FormatDecimal(req.Quantity),
	}
	if req.IsLimit() {
		params["price"] = c.formatter.FormatDecimal(req.Price)
		params["timeInForce"] = c.formatter.TimeInForceToByBit(req.TimeInForce)
	}

	resp, err := c.client.NewUtaBybitServiceWithParams(params).PlaceOrder(ctx)
	result, err := unwrap(resp, err)
	if err != nil {
		return nil, err
	}
	return toRecord(result)
}

// GetOrder ищет ордер среди активных, затем в истории (закрытые ордера уходят из realtime).
func (c *Connector) GetOrder(ctx context.Context, symbol, orderID string) (model.OrderRecord, error) {
	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
		"orderId":  orderID,
	}

	resp, err := c.client.NewUtaBybitServiceWithParams(params).GetOpenOrders(ctx)
	result, err := unwrap(resp, err)
	if err != nil {
		return nil, err
	}
	if rec, ok, err := firstOrder(result); err != nil || ok {
		return rec, err
	}

	resp, err = c.client.NewUtaBybitServiceWithParams(params).GetOrderHistory(ctx)
	result, err = unwrap(resp, err)
	if err != nil {
		return nil, err
	}
	rec, ok, err := firstOrder(result)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &APIError{Message: fmt.Sprintf("%s: %s %s", ErrOrderNotFound, symbol, orderID)}
	}
	return rec, nil
}

// unwrap превращает retCode != 0 в *APIError.
func unwrap(resp *bybit_connector.ServerResponse, err error) (interface{}, error) {
	if err != nil {
		return nil, AsAPIError(err)
	}
	if resp == nil {
		return nil, &APIError{Message: "empty response"}
	}
	if resp.RetCode != 0 {
		return nil, &APIError{Code: resp.RetCode, Message: resp.RetMsg}
	}
	return resp.Result, nil
}

func toRecord(result interface{}) (model.OrderRecord, error) {
	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	return model.OrderRecord(m), nil
}

type orderList struct {
	List []map[string]interface{} `mapstructure:"list"`
}

func firstOrder(result interface{}) (model.OrderRecord, bool, error) {
	var page orderList
	if err := mapstructure.Decode(result, &page); err != nil {
		return nil, false, fmt.Errorf("decode order list: %w", err)
	}
	if len(page.List) == 0 {
		return nil, false, nil
	}
	return model.OrderRecord(page.List[0]), true, nil
}
