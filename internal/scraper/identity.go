package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"time"

	"monitor-estoque/internal/database"
	"monitor-estoque/internal/diagnostics"
	"monitor-estoque/internal/models"
)

// ErrEmptyPool indica que a coleção de proxies ou headers está vazia
var ErrEmptyPool = errors.New("lista vazia")

// FallbackUserAgent é usado quando não é possível sortear um header
const FallbackUserAgent = "Mozilla/5.0"

// Rotator sorteia proxies e user-agents cadastrados no banco para evitar bloqueio por IP
type Rotator struct {
	store database.Store
	errs  *diagnostics.ErrorLog
	rnd   *rand.Rand
}

// NewRotator cria o sorteador. Com rnd nil, usa uma fonte baseada no horário.
func NewRotator(store database.Store, errs *diagnostics.ErrorLog, rnd *rand.Rand) *Rotator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Rotator{store: store, errs: errs, rnd: rnd}
}

// PickProxy retorna um proxy aleatório ou nil se não for possível obter um
func (r *Rotator) PickProxy(ctx context.Context) *url.URL {
	raw, err := r.pick(ctx, models.Proxies)
	if err != nil {
		r.errs.Record("get random proxy", err)
		return nil
	}

	proxy, err := url.Parse(raw)
	if err != nil || proxy.Host == "" {
		r.errs.Record("get random proxy", fmt.Errorf("proxy inválido %q", raw))
		return nil
	}
	return proxy
}

// PickHeader retorna um user-agent aleatório ou FallbackUserAgent
func (r *Rotator) PickHeader(ctx context.Context) string {
	header, err := r.pick(ctx, models.Headers)
	if err != nil {
		r.errs.Record("get random header", err)
		return FallbackUserAgent
	}
	return header
}

func (r *Rotator) pick(ctx context.Context, collection models.Collection) (string, error) {
	pool, err := r.store.GetAll(ctx, collection)
	if err != nil {
		return "", err
	}
	if len(pool) == 0 {
		return "", fmt.Errorf("%s: %w", collection, ErrEmptyPool)
	}

	// Ordena para que o sorteio dependa apenas da fonte aleatória
	values := make([]string, 0, len(pool))
	for _, value := range pool {
		values = append(values, value)
	}
	sort.Strings(values)

	return values[r.rnd.Intn(len(values))], nil
}
