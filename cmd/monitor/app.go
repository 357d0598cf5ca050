package main

import (
	"context"
	"fmt"
	"time"

	"monitor-estoque/config"
	"monitor-estoque/internal/database"
	"monitor-estoque/internal/diagnostics"
	"monitor-estoque/internal/monitor"
	"monitor-estoque/internal/notify"

	"github.com/sirupsen/logrus"
)

// app reúne as dependências abertas na inicialização do processo
type app struct {
	cfg          *config.Config
	log          *logrus.Logger
	sender       notify.Sender
	openStore    func(ctx context.Context, cfg *config.Config) (database.StoreCloser, error)
	openReporter func(cfg *config.Config) (monitor.Reporter, error)
}

// execute abre o reporter e o banco e roda o monitor. Falhas na inicialização
// são reportadas como erro da execução; o resultado é sempre "ok".
func (a *app) execute(ctx context.Context) string {
	start := time.Now()

	// O reporter vem antes do banco para que a falha no banco seja reportada
	reporter, err := a.openReporter(a.cfg)
	if err != nil {
		a.log.WithError(err).Warn("Bot do Telegram indisponível, log de erros apenas local")
		reporter = nil
	}

	store, err := a.openStore(ctx, a.cfg)
	if err != nil {
		a.log.WithError(err).WithField("driver", a.cfg.StoreDriver).Error("Erro ao inicializar banco de dados")
		a.reportStartup(reporter, fmt.Errorf("erro ao abrir o banco (%s): %w", a.cfg.StoreDriver, err), time.Since(start))
		return "ok"
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.log.WithError(err).Warn("Erro ao fechar banco de dados")
		}
	}()

	return monitor.New(store, a.sender, reporter, monitor.OptionsFromConfig(a.cfg), a.log).Run(ctx)
}

func (a *app) reportStartup(reporter monitor.Reporter, err error, elapsed time.Duration) {
	errs := diagnostics.NewErrorLog()
	errs.Record("main", err)
	report := errs.Format(elapsed)

	if reporter == nil {
		a.log.Warn(report)
		return
	}
	if err := reporter.Report(report); err != nil {
		a.log.WithError(err).Error("Erro ao enviar log de erros")
	}
}
