package trading

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"trading-bot/internal/client"
	"trading-bot/internal/model"
	"trading-bot/internal/repository"
	"trading-bot/internal/utils"
)

// TickerSource одноразовый снимок тикера.
type TickerSource interface {
	Fetch(ctx context.Context, symbol string) (model.Record, error)
}

// Session выполняет по одной торговой команде за раз.
// Journal и Ticker необязательны.
type Session struct {
	Exchange  client.Exchange
	Journal   repository.OrderRepository
	Ticker    TickerSource
	Console   *Console
	Log       *slog.Logger
	formatter *utils.Formatter
}

func NewSession(exchange client.Exchange, console *Console, log *slog.Logger) *Session {
	return &Session{
		Exchange:  exchange,
		Console:   console,
		Log:       log,
		formatter: &utils.Formatter{},
	}
}

func (s *Session) ValidateQuantity(q decimal.Decimal) bool {
	return q.IsPositive()
}

func (s *Session) ValidatePrice(p decimal.Decimal) bool {
	return p.IsPositive()
}

// ValidateSymbol проверяет только то, что биржа отвечает; наличие символа не проверяется.
func (s *Session) ValidateSymbol(ctx context.Context, symbol string) bool {
	if err := s.Exchange.QueryExchangeInfo(ctx); err != nil {
		if s.interrupted(ctx, err) {
			return false
		}
		s.Log.Error("Invalid symbol "+symbol, "error", client.AsAPIError(err).Error())
		return false
	}
	return true
}

// PlaceMarketOrder возвращает nil, если биржа вернула ошибку.
func (s *Session) PlaceMarketOrder(ctx context.Context, symbol string, side model.Side, quantity decimal.Decimal) model.OrderRecord {
	req := model.NewMarketOrder(s.formatter.NormalizeSymbol(symbol), side, quantity)
	return s.placeOrder(ctx, req, "market")
}

func (s *Session) PlaceLimitOrder(ctx context.Context, symbol string, side model.Side, quantity, price decimal.Decimal) model.OrderRecord {
	req := model.NewLimitOrder(s.formatter.NormalizeSymbol(symbol), side, quantity, price)
	return s.placeOrder(ctx, req, "limit")
}

func (s *Session) placeOrder(ctx context.Context, req model.OrderRequest, kind string) model.OrderRecord {
	if !s.ValidateQuantity(req.Quantity) || (req.IsLimit() && !s.ValidatePrice(req.Price)) {
		s.Log.Warn("Отклонён ордер с неположительным количеством или ценой",
			"symbol", req.Symbol, "quantity", req.Quantity.String(), "price", req.Price.String())
		return nil
	}

	order, err := s.Exchange.CreateOrder(ctx, req)
	if err != nil {
		if s.interrupted(ctx, err) {
			return nil
		}
		s.Log.Error("Error placing "+kind+" order", "symbol", req.Symbol, "error", client.AsAPIError(err).Error())
		return nil
	}
	s.Log.Info("Order placed", "type", kind, "order", order)

	s.journalInsert(req, order)
	return order
}

func (s *Session) GetOrderStatus(ctx context.Context, symbol, orderID string) model.OrderRecord {
	symbol = s.formatter.NormalizeSymbol(symbol)
	order, err := s.Exchange.GetOrder(ctx, symbol, orderID)
	if err != nil {
		if s.interrupted(ctx, err) {
			return nil
		}
		s.Log.Error("Error getting order status", "symbol", symbol, "order_id", orderID, "error", client.AsAPIError(err).Error())
		return nil
	}
	s.Log.Info("Order status", "order", order)

	s.journalUpdate(order)
	return order
}

// GetTicker снимок публичного тикера; nil, если канал недоступен.
func (s *Session) GetTicker(ctx context.Context, symbol string) model.Record {
	if s.Ticker == nil {
		s.Console.Error("Ticker stream is not configured")
		return nil
	}
	symbol = s.formatter.NormalizeSymbol(symbol)
	data, err := s.Ticker.Fetch(ctx, symbol)
	if err != nil {
		if s.interrupted(ctx, err) {
			return nil
		}
		s.Log.Error("Error getting ticker", "symbol", symbol, "error", err)
		return nil
	}
	s.Log.Info("Ticker snapshot", "symbol", symbol, "ticker", data)
	return data
}

// interrupted запрос оборван Ctrl-C: это выход из сессии, а не ошибка биржи.
func (s *Session) interrupted(ctx context.Context, err error) bool {
	if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		return false
	}
	s.Log.Info("Запрос прерван", "error", err)
	return true
}

func (s *Session) Display(order model.OrderRecord) {
	s.Console.Table("Order Details", order)
}

func (s *Session) DisplayTicker(ticker model.Record) {
	s.Console.Table("Ticker", ticker)
}

// journalInsert ошибки журнала только логируются и не влияют на результат команды.
func (s *Session) journalInsert(req model.OrderRequest, order model.OrderRecord) {
	if s.Journal == nil {
		return
	}
	ack, err := model.DecodeAck(order)
	if err != nil || ack.OrderID == "" {
		s.Log.Warn("Ответ биржи без orderId, ордер не записан в журнал", "error", err)
		return
	}
	status := ack.OrderStatus
	if status == "" {
		status = "New"
	}
	if err := s.Journal.InsertOrder(model.NewOrderFromRequest(ack.OrderID, status, req)); err != nil {
		s.Log.Warn("Ошибка записи ордера в журнал", "order_id", ack.OrderID, "error", err)
	}
}

func (s *Session) journalUpdate(order model.OrderRecord) {
	if s.Journal == nil {
		return
	}
	ack, err := model.DecodeAck(order)
	if err != nil || ack.OrderID == "" || ack.OrderStatus == "" {
		return
	}
	found, err := s.Journal.UpdateStatus(ack.OrderID, ack.OrderStatus)
	if err != nil {
		s.Log.Warn("Ошибка обновления статуса в журнале", "order_id", ack.OrderID, "error", err)
		return
	}
	if !found {
		s.Log.Debug("Ордер отсутствует в журнале", "order_id", ack.OrderID)
	}
}
