package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// Record ответ биржи как есть: имя поля -> значение.
type Record map[string]any

// OrderRecord используется только для вывода, кроме журнала, которому нужны id и статус.
type OrderRecord = Record

// Keys возвращает имена полей в стабильном порядке.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OrderAck минимальное представление ответа биржи для журнала.
type OrderAck struct {
	OrderID     string `mapstructure:"orderId"`
	OrderLinkID string `mapstructure:"orderLinkId"`
	OrderStatus string `mapstructure:"orderStatus"`
}

// DecodeAck вытаскивает id и статус из непрозрачной записи.
func DecodeAck(rec OrderRecord) (OrderAck, error) {
	var ack OrderAck
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &ack,
	})
	if err != nil {
		return ack, err
	}
	if err := dec.Decode(map[string]any(rec)); err != nil {
		return ack, fmt.Errorf("decode order ack: %w", err)
	}
	return ack, nil
}

// RecordFrom превращает структуру SDK в OrderRecord с именами полей как на проводе.
func RecordFrom(v any) (OrderRecord, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode order record: %w", err)
	}
	out := OrderRecord{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode order record: %w", err)
	}
	return out, nil
}
