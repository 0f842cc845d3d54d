package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"trading-bot/internal/config"
	"trading-bot/internal/model"
)

// Exchange операции биржи, которые нужны торговой сессии.
// Все вызовы синхронные и никогда не повторяются автоматически.
type Exchange interface {
	QueryExchangeInfo(ctx context.Context) error
	CreateOrder(ctx context.Context, req model.OrderRequest) (model.OrderRecord, error)
	GetOrder(ctx context.Context, symbol, orderID string) (model.OrderRecord, error)
}

// APIError единый вид ошибки биржи на этом уровне: авторизация, символ, лимиты и т.д.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("APIError: %s", e.Message)
	}
	return fmt.Sprintf("APIError(code=%d): %s", e.Code, e.Message)
}

var ErrOrderNotFound = errors.New("order not found")

// AsAPIError сворачивает любую ошибку SDK в *APIError.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Message: err.Error()}
}

// New выбирает реализацию по EXCHANGE_CLIENT.
func New(s config.Settings, log *slog.Logger) (Exchange, error) {
	switch s.ExchangeClient {
	case config.ClientGCT:
		return NewByBit(s.APIKey, s.APISecret, s.BaseURL, s.Category, log)
	case config.ClientConnect, "":
		return NewConnector(s.APIKey, s.APISecret, s.BaseURL, s.Category, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownClient, s.ExchangeClient)
	}
}
