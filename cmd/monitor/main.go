package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"monitor-estoque/config"
	"monitor-estoque/internal/bot"
	"monitor-estoque/internal/database"
	"monitor-estoque/internal/logger"
	"monitor-estoque/internal/monitor"
	"monitor-estoque/internal/notify"

	"github.com/joho/godotenv"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configurações: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &app{
		cfg:          cfg,
		log:          logger.New(cfg.LogLevel, cfg.LogFile),
		sender:       notify.NewDiscord(cfg.FetchTimeout),
		openStore:    database.Open,
		openReporter: telegramReporter,
	}
	fmt.Println(app.execute(ctx))
}

// telegramReporter cria o reporter quando o bot está configurado
func telegramReporter(cfg *config.Config) (monitor.Reporter, error) {
	if cfg.TelegramBotToken == "" {
		return nil, nil
	}

	api, err := bot.Init(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}
	return bot.NewReporter(api, cfg.TelegramChatID), nil
}
