package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"trading-bot/internal/client"
	"trading-bot/internal/logger"
	"trading-bot/internal/model"
	"trading-bot/internal/service/trading"
)

type stubExchange struct {
	infoErr  error
	order    model.OrderRecord
	orderErr error
	calls    int
	creates  []model.OrderRequest
	panicOn  string
	onCreate func()
}

func (s *stubExchange) QueryExchangeInfo(context.Context) error {
	s.calls++
	return s.infoErr
}

func (s *stubExchange) CreateOrder(_ context.Context, req model.OrderRequest) (model.OrderRecord, error) {
	s.calls++
	if req.Symbol == s.panicOn {
		panic("boom")
	}
	s.creates = append(s.creates, req)
	if s.onCreate != nil {
		s.onCreate()
	}
	return s.order, s.orderErr
}

func (s *stubExchange) GetOrder(context.Context, string, string) (model.OrderRecord, error) {
	s.calls++
	return s.order, s.orderErr
}

type harness struct {
	loop *Loop
	ex   *stubExchange
	logs *bytes.Buffer
	out  *bytes.Buffer
}

func newHarness(ex *stubExchange, input string) *harness {
	logs, out := &bytes.Buffer{}, &bytes.Buffer{}
	log := slog.New(logger.NewHandler(logs, logger.Name, slog.LevelInfo))
	session := trading.NewSession(ex, trading.NewConsole(out), log)
	return &harness{
		loop: NewLoop(session, NewStreamReader(strings.NewReader(input), out), log),
		ex:   ex,
		logs: logs,
		out:  out,
	}
}

func (h *harness) errors() int {
	return strings.Count(h.logs.String(), " - ERROR - ")
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"market BTCUSDT buy 10", Command{Name: "market", Args: []string{"BTCUSDT", "buy", "10"}}},
		{"  LIMIT  BTCUSDT sell 1 65000 ", Command{Name: "limit", Args: []string{"BTCUSDT", "sell", "1", "65000"}}},
		{"exit", Command{Name: "exit", Args: []string{}}},
		{"", Command{Name: "", Args: []string{}}},
		{"   \t ", Command{Name: "", Args: []string{}}},
	}
	for _, tt := range tests {
		if got := ParseCommand(tt.line); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseCommand(%q): expected %+v; actual %+v", tt.line, tt.want, got)
		}
	}
}

func TestStep_EmptyLineIsUnknown(t *testing.T) {
	h := newHarness(&stubExchange{}, "")
	h.loop.Step(context.Background(), "")

	if !strings.Contains(h.out.String(), "Unknown command") {
		t.Errorf("expected unknown command, got %q", h.out.String())
	}
	if h.loop.State() != Running {
		t.Errorf("expected RUNNING; actual %s", h.loop.State())
	}
}

func TestStep_WrongArgCountMakesNoCall(t *testing.T) {
	lines := []string{
		"market BTCUSDT buy",
		"market BTCUSDT buy 1 2",
		"limit BTCUSDT buy 1",
		"status BTCUSDT",
		"ticker",
	}
	for _, line := range lines {
		ex := &stubExchange{}
		h := newHarness(ex, "")
		h.loop.Step(context.Background(), line)

		if ex.calls != 0 {
			t.Errorf("%q: expected no exchange calls; actual %d", line, ex.calls)
		}
		if !strings.Contains(h.out.String(), "Invalid arguments. Usage:") {
			t.Errorf("%q: expected usage message, got %q", line, h.out.String())
		}
		if h.errors() != 0 {
			t.Errorf("%q: validation failures must not be logged as errors", line)
		}
	}
}

func TestStep_ValidationMakesNoCall(t *testing.T) {
	tests := []struct {
		line string
		msg  string
	}{
		{"market BTCUSDT buy 0", "Invalid quantity"},
		{"market BTCUSDT buy -3", "Invalid quantity"},
		{"limit BTCUSDT sell 1 0", "Invalid price"},
		{"limit BTCUSDT sell -1 100", "Invalid quantity"},
		{"market BTCUSDT hold 1", "Invalid side"},
	}
	for _, tt := range tests {
		ex := &stubExchange{}
		h := newHarness(ex, "")
		h.loop.Step(context.Background(), tt.line)

		if ex.calls != 0 {
			t.Errorf("%q: expected no exchange calls; actual %d", tt.line, ex.calls)
		}
		if !strings.Contains(h.out.String(), tt.msg) {
			t.Errorf("%q: expected %q, got %q", tt.line, tt.msg, h.out.String())
		}
	}
}

func TestStep_MalformedNumberIsUnexpected(t *testing.T) {
	ex := &stubExchange{}
	h := newHarness(ex, "")
	h.loop.Step(context.Background(), "market BTCUSDT buy ten")

	if ex.calls != 0 {
		t.Errorf("expected no exchange calls; actual %d", ex.calls)
	}
	if h.errors() != 1 || !strings.Contains(h.logs.String(), "Unexpected error") {
		t.Errorf("expected one ERROR entry, logs: %q", h.logs.String())
	}
	if !strings.Contains(h.out.String(), "Error: could not parse quantity") {
		t.Errorf("expected displayed error, got %q", h.out.String())
	}
	if h.loop.State() != Running {
		t.Errorf("expected RUNNING; actual %s", h.loop.State())
	}
}

func TestStep_MarketOrderDisplaysRecord(t *testing.T) {
	ex := &stubExchange{order: model.OrderRecord{"orderId": "1321003749386327552", "orderLinkId": "cli-7"}}
	h := newHarness(ex, "")
	h.loop.Step(context.Background(), "market BTCUSDT buy 10")

	if len(ex.creates) != 1 {
		t.Fatalf("expected one order; actual %d", len(ex.creates))
	}
	out := h.out.String()
	for k, v := range ex.order {
		if !strings.Contains(out, k) || !strings.Contains(out, v.(string)) {
			t.Errorf("field %s=%v not displayed: %q", k, v, out)
		}
	}
}

func TestStep_LimitOrder(t *testing.T) {
	ex := &stubExchange{order: model.OrderRecord{"orderId": "9"}}
	h := newHarness(ex, "")
	h.loop.Step(context.Background(), "limit ethusdt SELL 0.5 3000.25")

	if len(ex.creates) != 1 {
		t.Fatalf("expected one order; actual %d", len(ex.creates))
	}
	req := ex.creates[0]
	if req.Symbol != "ETHUSDT" || req.Side != model.SideSell || req.Price.String() != "3000.25" || req.TimeInForce != model.GoodTillCanceled {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestStep_StatusFailureKeepsRunning(t *testing.T) {
	ex := &stubExchange{orderErr: &client.APIError{Code: 110001, Message: "order does not exist"}}
	h := newHarness(ex, "")
	h.loop.Step(context.Background(), "status BTCUSDT 123")

	if h.errors() != 1 {
		t.Errorf("expected one ERROR entry, logs: %q", h.logs.String())
	}
	if !strings.Contains(h.logs.String(), "APIError(code=110001): order does not exist") {
		t.Errorf("expected API error in log, got %q", h.logs.String())
	}
	if strings.Contains(h.out.String(), "APIError") {
		t.Errorf("exchange error printed twice: %q", h.out.String())
	}
	if h.loop.State() != Running {
		t.Errorf("expected RUNNING; actual %s", h.loop.State())
	}
}

func TestStep_UnreachableExchangeSkipsOrder(t *testing.T) {
	ex := &stubExchange{infoErr: errors.New("no such host")}
	h := newHarness(ex, "")
	h.loop.Step(context.Background(), "market BTCUSDT buy 1")

	if len(ex.creates) != 0 {
		t.Errorf("order must not be placed when the probe fails")
	}
	if h.errors() != 1 {
		t.Errorf("expected one ERROR entry, logs: %q", h.logs.String())
	}
}

func TestStep_PanicIsRecovered(t *testing.T) {
	ex := &stubExchange{panicOn: "BTCUSDT"}
	h := newHarness(ex, "")
	h.loop.Step(context.Background(), "market BTCUSDT buy 1")

	if h.errors() != 1 || !strings.Contains(h.out.String(), "Error: panic: boom") {
		t.Errorf("panic not handled: logs %q, out %q", h.logs.String(), h.out.String())
	}
	if h.loop.State() != Running {
		t.Errorf("expected RUNNING; actual %s", h.loop.State())
	}
}

func TestStep_ExitTerminates(t *testing.T) {
	ex := &stubExchange{orderErr: errors.New("down")}
	h := newHarness(ex, "")
	for _, line := range []string{"help", "bogus", "", "status BTCUSDT 1", "market X buy 0", "EXIT"} {
		h.loop.Step(context.Background(), line)
	}
	if h.loop.State() != Terminated {
		t.Errorf("expected TERMINATED; actual %s", h.loop.State())
	}
}

func TestRun(t *testing.T) {
	input := "help\nmarket BTCUSDT buy 10\nstatus BTCUSDT 123\nexit\nmarket BTCUSDT buy 99\n"
	ex := &stubExchange{order: model.OrderRecord{"orderId": "1"}}
	h := newHarness(ex, input)

	h.loop.Run(context.Background())

	out := h.out.String()
	if !strings.Contains(out, "Welcome to the Trading Bot!") || !strings.Contains(out, "Thank you for using the Trading Bot!") {
		t.Errorf("missing banner or farewell: %q", out)
	}
	if !strings.Contains(out, "Available commands:") {
		t.Errorf("help not printed: %q", out)
	}
	if c := strings.Count(out, Prompt); c != 4 {
		t.Errorf("expected 4 prompts; actual %d", c)
	}
	if len(ex.creates) != 1 {
		t.Errorf("commands after exit must not run; creates %d", len(ex.creates))
	}
	if h.loop.State() != Terminated {
		t.Errorf("expected TERMINATED; actual %s", h.loop.State())
	}
}

func TestRun_EndOfInput(t *testing.T) {
	h := newHarness(&stubExchange{}, "help\n")
	h.loop.Run(context.Background())

	if h.loop.State() != Terminated {
		t.Errorf("expected TERMINATED; actual %s", h.loop.State())
	}
	if h.errors() != 0 {
		t.Errorf("end of input is not an error: %q", h.logs.String())
	}
}

type interruptReader struct{}

func (interruptReader) ReadLine(context.Context, string) (string, error) { return "", ErrInterrupted }

type brokenReader struct{}

func (brokenReader) ReadLine(context.Context, string) (string, error) { return "", io.ErrUnexpectedEOF }

func TestRun_Interrupt(t *testing.T) {
	h := newHarness(&stubExchange{}, "")
	h.loop.Reader = interruptReader{}
	h.loop.Run(context.Background())

	if h.loop.State() != Terminated || h.errors() != 0 {
		t.Errorf("interrupt must exit gracefully: state %s, logs %q", h.loop.State(), h.logs.String())
	}
	if !strings.Contains(h.out.String(), "Thank you for using the Trading Bot!") {
		t.Errorf("missing farewell: %q", h.out.String())
	}
}

func TestRun_ReadError(t *testing.T) {
	h := newHarness(&stubExchange{}, "")
	h.loop.Reader = brokenReader{}
	h.loop.Run(context.Background())

	if h.loop.State() != Terminated || h.errors() != 1 {
		t.Errorf("read failure: state %s, logs %q", h.loop.State(), h.logs.String())
	}
}

func TestRun_InterruptDuringRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ex := &stubExchange{
		onCreate: cancel,
		orderErr: &client.APIError{Message: "context canceled"},
	}
	h := newHarness(ex, "market BTCUSDT buy 1\nhelp\n")

	h.loop.Run(ctx)

	if h.loop.State() != Terminated {
		t.Errorf("expected TERMINATED; actual %s", h.loop.State())
	}
	if h.errors() != 0 {
		t.Errorf("interrupt is not an error: %q", h.logs.String())
	}
	out := h.out.String()
	if !strings.Contains(out, "Thank you for using the Trading Bot!") {
		t.Errorf("missing farewell: %q", out)
	}
	if strings.Contains(out, "Available commands:") {
		t.Errorf("commands after interrupt must not run: %q", out)
	}
}

func TestRun_InterruptWhileWaitingForInput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in, w := io.Pipe()
	defer w.Close()

	h := newHarness(&stubExchange{}, "")
	h.loop.Reader = NewStreamReader(in, h.out)
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan struct{})
	go func() {
		h.loop.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after interrupt")
	}

	if h.loop.State() != Terminated || h.errors() != 0 {
		t.Errorf("interrupt must exit gracefully: state %s, logs %q", h.loop.State(), h.logs.String())
	}
	if !strings.Contains(h.out.String(), "Thank you for using the Trading Bot!") {
		t.Errorf("missing farewell: %q", h.out.String())
	}
}
