package notify

import (
	"context"
	"time"

	"monitor-estoque/internal/diagnostics"
	"monitor-estoque/internal/models"
	"monitor-estoque/internal/scraper"

	"github.com/sirupsen/logrus"
)

// Inspector consulta as numerações com estoque de um produto
type Inspector interface {
	Inspect(ctx context.Context, productURL string) scraper.VariantResult
}

// Webhooks são os destinos de cada tipo de notificação
type Webhooks struct {
	Monitor string
	Restock string
}

// Service compõe e envia as notificações de uma execução
type Service struct {
	sender    Sender
	inspector Inspector
	webhooks  Webhooks
	errs      *diagnostics.ErrorLog
	log       *logrus.Entry
	now       func() time.Time
}

// NewService cria o serviço de notificação
func NewService(sender Sender, inspector Inspector, webhooks Webhooks, errs *diagnostics.ErrorLog, log *logrus.Entry) *Service {
	return &Service{
		sender:    sender,
		inspector: inspector,
		webhooks:  webhooks,
		errs:      errs,
		log:       log,
		now:       time.Now,
	}
}

// NotifyNew envia a notificação de produto novo
func (s *Service) NotifyNew(ctx context.Context, product models.Product) {
	msg, _ := Compose(KindNew, product, scraper.VariantResult{}, s.now())
	s.send(ctx, KindNew, s.webhooks.Monitor, product, msg)
}

// NotifyRestock consulta as numerações e envia o restock, exceto quando nenhuma tem estoque
func (s *Service) NotifyRestock(ctx context.Context, product models.Product) {
	variants := s.inspector.Inspect(ctx, product.URL)

	msg, ok := Compose(KindRestock, product, variants, s.now())
	if !ok {
		s.log.WithField("product", product.ID).Info("Restock sem numerações em estoque, envio cancelado")
		return
	}
	s.send(ctx, KindRestock, s.webhooks.Restock, product, msg)
}

func (s *Service) send(ctx context.Context, kind Kind, webhookURL string, product models.Product, msg Message) {
	fields := logrus.Fields{"product": product.ID, "kind": kind.String()}

	if err := s.sender.Send(ctx, webhookURL, msg); err != nil {
		s.errs.Record("check response", err)
		s.log.WithError(err).WithFields(fields).Error("Erro ao enviar notificação")
		return
	}
	s.log.WithFields(fields).Info("Notificação enviada")
}
