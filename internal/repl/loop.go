// Package repl цикл команд: чтение строки, разбор, выполнение, повтор.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"trading-bot/internal/model"
	"trading-bot/internal/service/trading"
)

const Prompt = "Enter command: "

const helpText = `
Available commands:
- market <symbol> <side> <quantity>
- limit <symbol> <side> <quantity> <price>
- status <symbol> <order_id>
- ticker <symbol>
- help
- exit`

type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "TERMINATED"
	}
	return "RUNNING"
}

type Command struct {
	Name string
	Args []string
}

// ParseCommand пустая строка даёт Command{Name: "", Args: []}.
func ParseCommand(line string) Command {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{Name: "", Args: []string{}}
	}
	return Command{Name: strings.ToLower(parts[0]), Args: parts[1:]}
}

// Loop одна команда за раз; ни одна ошибка не выходит за пределы итерации.
type Loop struct {
	Session *trading.Session
	Reader  LineReader
	Log     *slog.Logger
	state   State
}

func NewLoop(session *trading.Session, reader LineReader, log *slog.Logger) *Loop {
	return &Loop{Session: session, Reader: reader, Log: log, state: Running}
}

func (l *Loop) State() State {
	return l.state
}

// Run до exit, Ctrl-C (отмена ctx) или конца ввода.
func (l *Loop) Run(ctx context.Context) {
	console := l.Session.Console
	console.Success("Welcome to the Trading Bot!")
	console.Println("Type 'help' for available commands or 'exit' to quit.")

	for l.state == Running {
		console.Println()
		line, err := l.Reader.ReadLine(ctx, Prompt)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, ErrInterrupted) {
				l.Log.Error("Unexpected error: " + err.Error())
				console.Error("Error: %s", err)
			}
			l.state = Terminated
			break
		}
		l.Step(ctx, line)
		if ctx.Err() != nil {
			l.Log.Info("Получен сигнал прерывания, выход")
			l.state = Terminated
		}
	}

	console.Success("Thank you for using the Trading Bot!")
}

// Step выполняет одну строку. Неожиданная ошибка или паника логируется
// и выводится, состояние остаётся RUNNING.
func (l *Loop) Step(ctx context.Context, line string) {
	defer func() {
		if r := recover(); r != nil {
			l.unexpected(fmt.Errorf("panic: %v", r))
		}
	}()

	if err := l.dispatch(ctx, ParseCommand(line)); err != nil {
		l.unexpected(err)
	}
}

func (l *Loop) unexpected(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	l.Log.Error("Unexpected error: " + err.Error())
	l.Session.Console.Error("Error: %s", err)
}

func (l *Loop) dispatch(ctx context.Context, cmd Command) error {
	console := l.Session.Console
	switch cmd.Name {
	case "exit":
		l.state = Terminated
		return nil
	case "help":
		console.Println(helpText)
		return nil
	case "market":
		return l.market(ctx, cmd.Args)
	case "limit":
		return l.limit(ctx, cmd.Args)
	case "status":
		return l.status(ctx, cmd.Args)
	case "ticker":
		return l.ticker(ctx, cmd.Args)
	default:
		console.Error("Unknown command. Type 'help' for available commands.")
		return nil
	}
}

func (l *Loop) market(ctx context.Context, args []string) error {
	s := l.Session
	if len(args) != 3 {
		s.Console.Error("Invalid arguments. Usage: market <symbol> <side> <quantity>")
		return nil
	}

	symbol := args[0]
	side, ok := l.side(args[1])
	if !ok {
		return nil
	}
	quantity, err := parseDecimal("quantity", args[2])
	if err != nil {
		return err
	}
	if !s.ValidateQuantity(quantity) {
		s.Console.Error("Invalid quantity")
		return nil
	}
	if !s.ValidateSymbol(ctx, symbol) {
		return nil
	}

	if order := s.PlaceMarketOrder(ctx, symbol, side, quantity); order != nil {
		s.Display(order)
	}
	return nil
}

func (l *Loop) limit(ctx context.Context, args []string) error {
	s := l.Session
	if len(args) != 4 {
		s.Console.Error("Invalid arguments. Usage: limit <symbol> <side> <quantity> <price>")
		return nil
	}

	symbol := args[0]
	side, ok := l.side(args[1])
	if !ok {
		return nil
	}
	quantity, err := parseDecimal("quantity", args[2])
	if err != nil {
		return err
	}
	price, err := parseDecimal("price", args[3])
	if err != nil {
		return err
	}
	if !s.ValidateQuantity(quantity) {
		s.Console.Error("Invalid quantity")
		return nil
	}
	if !s.ValidatePrice(price) {
		s.Console.Error("Invalid price")
		return nil
	}
	if !s.ValidateSymbol(ctx, symbol) {
		return nil
	}

	if order := s.PlaceLimitOrder(ctx, symbol, side, quantity, price); order != nil {
		s.Display(order)
	}
	return nil
}

func (l *Loop) status(ctx context.Context, args []string) error {
	s := l.Session
	if len(args) != 2 {
		s.Console.Error("Invalid arguments. Usage: status <symbol> <order_id>")
		return nil
	}

	symbol, orderID := args[0], args[1]
	if !s.ValidateSymbol(ctx, symbol) {
		return nil
	}
	if order := s.GetOrderStatus(ctx, symbol, orderID); order != nil {
		s.Display(order)
	}
	return nil
}

func (l *Loop) ticker(ctx context.Context, args []string) error {
	s := l.Session
	if len(args) != 1 {
		s.Console.Error("Invalid arguments. Usage: ticker <symbol>")
		return nil
	}
	if data := s.GetTicker(ctx, args[0]); data != nil {
		s.DisplayTicker(data)
	}
	return nil
}

func (l *Loop) side(arg string) (model.Side, bool) {
	side, err := model.ParseSide(arg)
	if err != nil {
		l.Session.Console.Error("Invalid side. Use buy or sell")
		return "", false
	}
	return side, true
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not parse %s %q: %w", name, s, err)
	}
	return d, nil
}
