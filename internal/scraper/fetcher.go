package scraper

import (
	"context"
	"fmt"

	"monitor-estoque/internal/diagnostics"

	"github.com/sirupsen/logrus"
)

// Fetcher baixa páginas pela sessão e, em caso de falha, tenta de novo com
// proxies e user-agents sorteados. Nunca propaga erro: devolve conteúdo vazio.
type Fetcher struct {
	session  *Session
	rotator  *Rotator
	errs     *diagnostics.ErrorLog
	attempts int
	log      *logrus.Entry
}

// NewFetcher cria o fetcher de uma iteração
func NewFetcher(session *Session, rotator *Rotator, errs *diagnostics.ErrorLog, attempts int, log *logrus.Entry) *Fetcher {
	if attempts <= 0 {
		attempts = 3
	}
	return &Fetcher{
		session:  session,
		rotator:  rotator,
		errs:     errs,
		attempts: attempts,
		log:      log,
	}
}

// Fetch retorna o conteúdo da URL ou vazio depois de esgotar as tentativas.
// errKey identifica o alvo no log de erros.
func (f *Fetcher) Fetch(ctx context.Context, target, errKey string) []byte {
	body, err := f.session.Get(ctx, target, Identity{})
	if err == nil {
		return body
	}

	f.log.WithError(err).WithField("url", target).Debug("Falha na requisição direta, tentando com proxy")
	return f.fetchWithProxy(ctx, target, errKey)
}

func (f *Fetcher) fetchWithProxy(ctx context.Context, target, errKey string) []byte {
	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		identity := Identity{
			Proxy:     f.rotator.PickProxy(ctx),
			UserAgent: f.rotator.PickHeader(ctx),
		}

		body, err := f.session.Get(ctx, target, identity)
		if err == nil {
			return body
		}
		lastErr = err

		f.log.WithError(err).WithFields(logrus.Fields{
			"url":     target,
			"attempt": attempt,
		}).Debug("Tentativa com proxy falhou")
	}

	f.errs.Record(errKey, fmt.Errorf("não foi possível obter o source com proxy: %w", lastErr))
	f.log.WithError(lastErr).WithField("url", target).Warn("Tentativas esgotadas, seguindo sem conteúdo")
	return []byte{}
}
