package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"
	"github.com/peterh/liner"

	"trading-bot/internal/client"
	"trading-bot/internal/config"
	"trading-bot/internal/logger"
	"trading-bot/internal/repl"
	"trading-bot/internal/repository"
	"trading-bot/internal/service/event"
	"trading-bot/internal/service/trading"
)

func main() {
	os.Exit(run())
}

func run() int {
	settings, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		log.Printf("Fatal error: %v", err)
		return 1
	}

	lg, err := logger.New(settings.LogDir, settings.LogLevel, os.Stdout, time.Now())
	if err != nil {
		log.Printf("Fatal error: %v", err)
		return 1
	}
	defer lg.Close()

	exchange, err := client.New(settings, lg.Logger)
	if err != nil {
		lg.Error("Fatal error: " + err.Error())
		return 1
	}
	lg.Info("Клиент биржи инициализирован",
		"client", settings.ExchangeClient, "network", settings.Network(), "base_url", settings.BaseURL, "log_file", lg.Path)

	console := trading.NewConsole(os.Stdout)
	session := trading.NewSession(exchange, console, lg.Logger)
	session.Ticker = &event.TickerSnapshot{URL: settings.WSURL, Log: lg.Logger}

	if settings.DatabaseURL != "" {
		db, err := openJournal(settings.DatabaseURL)
		if err != nil {
			lg.Error("Fatal error: " + err.Error())
			return 1
		}
		defer db.Close()

		journal := repository.NewOrderRepository(db)
		if err := journal.EnsureSchema(); err != nil {
			lg.Error("Fatal error: " + err.Error())
			return 1
		}
		session.Journal = journal
		lg.Info("Журнал ордеров PostgreSQL подключён")
	}

	var reader repl.LineReader
	if liner.TerminalSupported() {
		tr := repl.NewTerminalReader()
		defer tr.Close()
		reader = tr
	} else {
		reader = repl.NewStreamReader(os.Stdin, os.Stdout)
	}

	// Ctrl-C вне приглашения ввода отменяет текущий запрос и завершает цикл.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	repl.NewLoop(session, reader, lg.Logger).Run(ctx)
	return 0
}

func openJournal(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
