package bot

import (
	"errors"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Limite de caracteres de uma mensagem do Telegram
const maxMessageLength = 4096

// ErrNoToken indica que o bot de diagnóstico não foi configurado
var ErrNoToken = errors.New("bot de diagnóstico sem token")

// Init conecta ao bot que recebe o log de erros das execuções
func Init(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot de diagnóstico indisponível: %w", err)
	}
	return api, nil
}

// messageSender é a parte do BotAPI usada pelo Reporter
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Reporter envia o log de erros da execução para um chat do Telegram
type Reporter struct {
	api    messageSender
	chatID int64
}

// NewReporter cria o reporter para o chat informado
func NewReporter(api *tgbotapi.BotAPI, chatID int64) *Reporter {
	return &Reporter{api: api, chatID: chatID}
}

// Report envia o texto, truncado ao limite do Telegram
func (r *Reporter) Report(text string) error {
	if r.chatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID não configurado")
	}

	msg := tgbotapi.NewMessage(r.chatID, truncate(text, maxMessageLength))
	if _, err := r.api.Send(msg); err != nil {
		return fmt.Errorf("erro ao enviar log para o Telegram: %w", err)
	}
	return nil
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-3]) + "..."
}
