package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config contém as configurações da aplicação
type Config struct {
	WebhookMonitor string `env:"WEBHOOK_MONITOR,notEmpty"` // Webhook para produtos novos
	WebhookRestock string `env:"WEBHOOK_RESTOCK,notEmpty"` // Webhook para restocks

	// Telegram recebe o log de erros da execução (opcional)
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"` // mongo, sqlite, postgres ou memory
	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"maze"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"./estoque.db"`
	PostgresDSN   string `env:"POSTGRES_DSN"`

	BaseURL  string   `env:"BASE_URL" envDefault:"https://www.maze.com.br"`
	Keywords []string `env:"KEYWORDS" envSeparator:"," envDefault:"jordan,dunk,yeezy,air force,nike stussy"`

	RunBudget       time.Duration `env:"RUN_BUDGET" envDefault:"50s"`
	RetrySleep      time.Duration `env:"RETRY_SLEEP" envDefault:"5s"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT" envDefault:"5s"`
	FetchAttempts   int           `env:"FETCH_ATTEMPTS" envDefault:"3"`
	PollUntilBudget bool          `env:"POLL_UNTIL_BUDGET" envDefault:"false"` // Repete o ciclo até o fim do tempo

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load carrega as configurações das variáveis de ambiente
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("erro ao ler variáveis de ambiente: %w", err)
	}

	if cfg.RunBudget <= 0 {
		return nil, fmt.Errorf("RUN_BUDGET deve ser positivo")
	}
	if cfg.FetchAttempts <= 0 {
		cfg.FetchAttempts = 3
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}

	return cfg, nil
}
