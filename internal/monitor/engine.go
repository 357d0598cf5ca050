package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"monitor-estoque/internal/database"
	"monitor-estoque/internal/diagnostics"
	"monitor-estoque/internal/models"

	"github.com/sirupsen/logrus"
)

var errNoProducts = errors.New("nenhum produto encontrado")

// Notifier recebe as transições que geram mensagem
type Notifier interface {
	NotifyNew(ctx context.Context, product models.Product)
	NotifyRestock(ctx context.Context, product models.Product)
}

// Engine compara os produtos da listagem com o estado salvo da categoria,
// dispara as notificações e atualiza as coleções.
type Engine struct {
	store    database.Store
	notifier Notifier
	errs     *diagnostics.ErrorLog
	expired  func() bool
	log      *logrus.Entry
}

// NewEngine cria o motor de transições. expired é consultado antes de cada produto.
func NewEngine(store database.Store, notifier Notifier, errs *diagnostics.ErrorLog, expired func() bool, log *logrus.Entry) *Engine {
	return &Engine{
		store:    store,
		notifier: notifier,
		errs:     errs,
		expired:  expired,
		log:      log,
	}
}

// categoryState é o estado salvo lido no início da categoria
type categoryState struct {
	on       map[string]string
	off      map[string]string
	launches map[string]string
	excluded map[string]string
	history  map[string]string
}

func (e *Engine) loadState(ctx context.Context, category models.Category) (*categoryState, error) {
	state := &categoryState{}
	targets := []struct {
		collection models.Collection
		dst        *map[string]string
	}{
		{category.On, &state.on},
		{category.Off, &state.off},
		{models.Launches, &state.launches},
		{models.Excluded, &state.excluded},
		{models.History, &state.history},
	}

	for _, target := range targets {
		products, err := e.store.GetAll(ctx, target.collection)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler %s: %w", target.collection, err)
		}
		if products == nil {
			products = make(map[string]string)
		}
		*target.dst = products
	}
	return state, nil
}

// Reconcile processa os produtos de uma categoria. Retorna true quando o tempo
// da execução acabou no meio do processamento.
func (e *Engine) Reconcile(ctx context.Context, category models.Category, products map[string]models.Product) bool {
	key := category.Name + " - update products"
	log := e.log.WithField("category", category.Name)

	// Listagem vazia não significa que os produtos sumiram
	if len(products) == 0 {
		e.errs.Record(key, errNoProducts)
		log.Warn("Nenhum produto encontrado")
		return false
	}

	state, err := e.loadState(ctx, category)
	if err != nil {
		e.errs.Record(key, err)
		log.WithError(err).Error("Erro ao carregar estado da categoria")
		return false
	}

	for _, id := range sortedKeys(products) {
		if e.expired() {
			log.Warn("Tempo limite atingido durante a categoria")
			return true
		}

		if _, excluded := state.excluded[id]; excluded {
			continue
		}

		product := products[id]
		if _, known := state.history[id]; !known {
			e.notifier.NotifyNew(ctx, product)
			if e.insertNew(ctx, category, product) {
				state.history[id] = product.URL
			}
			continue
		}

		if product.HasStock {
			e.inStock(ctx, category, state, product)
		} else {
			e.outOfStock(ctx, category, state, product)
		}
	}

	// Produtos fora de estoque que saíram da listagem vão para restock_off
	for _, id := range sortedKeys(state.off) {
		if _, listed := products[id]; !listed {
			e.move(ctx, id, state.off[id], category.Off, models.RestockOff)
		}
	}

	return false
}

// insertNew registra o primeiro avistamento do produto; para na primeira falha
func (e *Engine) insertNew(ctx context.Context, category models.Category, product models.Product) bool {
	for _, collection := range []models.Collection{category.On, models.History, models.Snkrs} {
		if err := e.store.Insert(ctx, product.ID, product.URL, collection); err != nil {
			e.errs.Record("insert product", fmt.Errorf("%s em %s: %w", product.ID, collection, err))
			e.log.WithError(err).WithField("product", product.ID).Error("Erro ao inserir produto novo")
			return false
		}
	}
	return true
}

func (e *Engine) inStock(ctx context.Context, category models.Category, state *categoryState, product models.Product) {
	if _, tracked := state.on[product.ID]; tracked {
		return
	}

	// Lançamentos já foram avisados como produto novo
	if _, launch := state.launches[product.ID]; !launch {
		e.notifier.NotifyRestock(ctx, product)
	}

	if _, off := state.off[product.ID]; off {
		e.move(ctx, product.ID, product.URL, category.Off, category.On)
		return
	}
	e.insert(ctx, product.ID, product.URL, category.On)
}

func (e *Engine) outOfStock(ctx context.Context, category models.Category, state *categoryState, product models.Product) {
	if _, off := state.off[product.ID]; off {
		return
	}

	if _, on := state.on[product.ID]; on {
		e.move(ctx, product.ID, product.URL, category.On, category.Off)
		return
	}
	// Mesmo fora de estoque, o produto sem registro entra em _on
	e.insert(ctx, product.ID, product.URL, category.On)
}

func (e *Engine) insert(ctx context.Context, id, url string, collection models.Collection) {
	if err := e.store.Insert(ctx, id, url, collection); err != nil {
		e.errs.Record("insert product", fmt.Errorf("%s em %s: %w", id, collection, err))
		e.log.WithError(err).WithField("product", id).Error("Erro ao inserir produto")
	}
}

// move troca o produto de coleção. Se a inserção falhar, a origem é mantida.
func (e *Engine) move(ctx context.Context, id, url string, from, to models.Collection) {
	fields := logrus.Fields{"product": id, "from": from, "to": to}

	if err := e.store.Insert(ctx, id, url, to); err != nil {
		e.errs.Record("swap restock", fmt.Errorf("%s para %s: %w", id, to, err))
		e.log.WithError(err).WithFields(fields).Error("Erro ao mover produto")
		return
	}
	if err := e.store.Delete(ctx, id, from); err != nil {
		e.errs.Record("swap restock", fmt.Errorf("%s de %s: %w", id, from, err))
		e.log.WithError(err).WithFields(fields).Error("Erro ao remover produto da coleção de origem")
		return
	}
	e.log.WithFields(fields).Debug("Produto movido")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
