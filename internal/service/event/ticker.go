package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trading-bot/internal/model"
)

const defaultReadTimeout = 10 * time.Second

var ErrNoSnapshot = errors.New("ticker snapshot not received")

// TickerSnapshot одноразовое чтение публичного канала tickers.<SYMBOL>.
// Соединение открывается на одну команду и закрывается сразу после снимка.
type TickerSnapshot struct {
	URL         string
	Header      http.Header
	ReadTimeout time.Duration
	Dialer      *websocket.Dialer
	Log         *slog.Logger
}

type tickerMessage struct {
	Topic string       `json:"topic"`
	Type  string       `json:"type"`
	Data  model.Record `json:"data"`
}

type opResponse struct {
	Success bool   `json:"success"`
	RetMsg  string `json:"ret_msg"`
	Op      string `json:"op"`
}

// Fetch подписывается на tickers.<symbol> и возвращает первый snapshot.
// Отмена ctx закрывает соединение и прерывает ожидание.
func (t *TickerSnapshot) Fetch(ctx context.Context, symbol string) (model.Record, error) {
	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	timeout := t.ReadTimeout
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}

	conn, resp, err := dialer.DialContext(ctx, t.URL, t.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (HTTP %s)", t.URL, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", t.URL, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	topic := "tickers." + symbol
	if err := conn.WriteJSON(map[string]interface{}{
		"op":   "subscribe",
		"args": []string{topic},
	}); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	t.Log.Debug("Отправка запроса на подписку", "topic", topic)

	deadline := time.Now().Add(timeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", ErrNoSnapshot, err)
		}

		var op opResponse
		if err := json.Unmarshal(message, &op); err == nil && op.Op == "subscribe" {
			if !op.Success {
				return nil, fmt.Errorf("subscribe %s: %s", topic, op.RetMsg)
			}
			continue
		}

		var msg tickerMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			t.Log.Debug("Ошибка парсинга сообщения", "error", err)
			continue
		}
		if msg.Topic != topic || msg.Type != "snapshot" || len(msg.Data) == 0 {
			continue
		}
		return msg.Data, nil
	}
}
