package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Limite de envios por segundo nos webhooks do Discord
const webhookRate = 2

// Sender entrega uma mensagem a um webhook
type Sender interface {
	Send(ctx context.Context, webhookURL string, msg Message) error
}

// Discord envia mensagens para webhooks do Discord
type Discord struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewDiscord cria o cliente de webhooks
func NewDiscord(timeout time.Duration) *Discord {
	return &Discord{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(webhookRate), webhookRate),
	}
}

// Send publica a mensagem. Status fora de 2xx é retornado como erro, sem nova tentativa.
func (d *Discord) Send(ctx context.Context, webhookURL string, msg Message) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("envio cancelado: %w", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("erro ao serializar mensagem: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("erro ao executar o discord webhook: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
