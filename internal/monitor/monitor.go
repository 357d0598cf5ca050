package monitor

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"monitor-estoque/config"
	"monitor-estoque/internal/database"
	"monitor-estoque/internal/diagnostics"
	"monitor-estoque/internal/models"
	"monitor-estoque/internal/notify"
	"monitor-estoque/internal/scraper"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Reporter recebe o log de erros no fim da execução
type Reporter interface {
	Report(text string) error
}

// Options são os parâmetros de uma execução
type Options struct {
	BaseURL         string
	Categories      []models.Category
	Webhooks        notify.Webhooks
	Budget          time.Duration
	RetrySleep      time.Duration
	FetchTimeout    time.Duration
	FetchAttempts   int
	PollUntilBudget bool
}

// OptionsFromConfig monta as opções a partir da configuração carregada.
// Sem palavras-chave válidas, usa as categorias padrão.
func OptionsFromConfig(cfg *config.Config) Options {
	categories := models.CategoriesFromKeywords(cfg.Keywords)
	if len(categories) == 0 {
		categories = models.DefaultCategories()
	}

	return Options{
		BaseURL:    cfg.BaseURL,
		Categories: categories,
		Webhooks: notify.Webhooks{
			Monitor: cfg.WebhookMonitor,
			Restock: cfg.WebhookRestock,
		},
		Budget:          cfg.RunBudget,
		RetrySleep:      cfg.RetrySleep,
		FetchTimeout:    cfg.FetchTimeout,
		FetchAttempts:   cfg.FetchAttempts,
		PollUntilBudget: cfg.PollUntilBudget,
	}
}

// Monitor executa os ciclos de verificação dentro do tempo máximo da execução
type Monitor struct {
	store    database.Store
	sender   notify.Sender
	reporter Reporter
	opts     Options
	clock    Clock
	rnd      *rand.Rand
	log      *logrus.Logger
}

// New cria uma nova instância do monitor. reporter pode ser nil; nesse caso
// o log de erros vai apenas para o logger.
func New(store database.Store, sender notify.Sender, reporter Reporter, opts Options, log *logrus.Logger) *Monitor {
	return &Monitor{
		store:    store,
		sender:   sender,
		reporter: reporter,
		opts:     opts,
		clock:    realClock{},
		log:      log,
	}
}

type outcome int

const (
	cycleCompleted outcome = iota
	cycleTimedOut
	cycleFailed
)

func (o outcome) String() string {
	switch o {
	case cycleCompleted:
		return "completed"
	case cycleTimedOut:
		return "timed out"
	default:
		return "failed"
	}
}

// run guarda o estado de uma execução
type run struct {
	id      string
	errs    *diagnostics.ErrorLog
	watch   *Stopwatch
	rotator *scraper.Rotator
	log     *logrus.Entry
}

// Run executa os ciclos até concluir um deles ou esgotar o tempo e envia o log
// de erros uma única vez. Sempre retorna "ok".
func (m *Monitor) Run(ctx context.Context) (result string) {
	errs := diagnostics.NewErrorLog()
	r := &run{
		id:      uuid.NewString(),
		errs:    errs,
		watch:   NewStopwatch(m.clock, m.opts.Budget),
		rotator: scraper.NewRotator(m.store, errs, m.rnd),
	}
	r.log = m.log.WithField("run", r.id)
	r.log.WithField("categories", len(m.opts.Categories)).Info("Execução iniciada")

	defer func() {
		if p := recover(); p != nil {
			r.errs.Record("main", fmt.Errorf("panic: %v", p))
			r.log.WithField("panic", p).Error("Falha inesperada na execução")
		}
		m.flush(r)
		result = "ok"
	}()

	for cycle := 1; ; cycle++ {
		res := m.cycle(ctx, r)
		r.log.WithFields(logrus.Fields{"cycle": cycle, "outcome": res.String()}).Info("Ciclo finalizado")

		if res == cycleCompleted && !m.opts.PollUntilBudget {
			break
		}
		if r.watch.Expired() || ctx.Err() != nil {
			break
		}
		m.clock.Sleep(ctx, m.opts.RetrySleep)
		if r.watch.Expired() || ctx.Err() != nil {
			break
		}
	}

	return "ok"
}

// cycle baixa as listagens de todas as categorias e depois processa cada uma.
// Uma sessão nova, com user-agent sorteado, é criada por ciclo.
func (m *Monitor) cycle(ctx context.Context, r *run) outcome {
	session := scraper.NewSession(r.rotator.PickHeader(ctx), m.opts.FetchTimeout)
	defer session.Close()
	r.log.WithField("user_agent", session.UserAgent()).Debug("Nova sessão")

	fetcher := scraper.NewFetcher(session, r.rotator, r.errs, m.opts.FetchAttempts, r.log.WithField("component", "fetcher"))
	maze := scraper.NewMaze(m.opts.BaseURL, fetcher, r.errs, r.log.WithField("component", "scraper"))
	notifier := notify.NewService(m.sender, maze, m.opts.Webhooks, r.errs, r.log.WithField("component", "notify"))
	engine := NewEngine(m.store, notifier, r.errs, r.watch.Expired, r.log.WithField("component", "engine"))

	sources := make([][]byte, len(m.opts.Categories))
	fetched := 0
	for i, category := range m.opts.Categories {
		if r.watch.Expired() {
			return cycleTimedOut
		}
		sources[i] = maze.FetchListing(ctx, category)
		if len(sources[i]) > 0 {
			fetched++
		}
	}

	// Nenhuma listagem obtida: provavelmente bloqueado, tenta de novo com outra sessão
	if fetched == 0 && len(m.opts.Categories) > 0 {
		r.log.Warn("Nenhuma listagem obtida no ciclo")
		return cycleFailed
	}

	for i, category := range m.opts.Categories {
		if r.watch.Expired() {
			return cycleTimedOut
		}
		products := maze.Products(sources[i])
		if engine.Reconcile(ctx, category, products) {
			return cycleTimedOut
		}
	}

	return cycleCompleted
}

func (m *Monitor) flush(r *run) {
	elapsed := r.watch.Elapsed()
	report := r.errs.Format(elapsed)
	if report == "" {
		r.log.WithField("elapsed", elapsed.String()).Info("Execução finalizada sem erros")
		return
	}

	r.log.WithFields(logrus.Fields{"elapsed": elapsed.String(), "errors": r.errs.Len()}).Warn("Execução finalizada com erros")
	if m.reporter == nil {
		r.log.Warn(report)
		return
	}
	if err := m.reporter.Report(report); err != nil {
		r.log.WithError(err).Error("Erro ao enviar log de erros")
	}
}
