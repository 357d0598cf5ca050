package monitor

import (
	"context"
	"errors"
	"testing"

	"monitor-estoque/internal/database"
	"monitor-estoque/internal/diagnostics"
	"monitor-estoque/internal/logger"
	"monitor-estoque/internal/models"
	"monitor-estoque/internal/notify"
	"monitor-estoque/internal/scraper"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	news     []string
	restocks []string
}

func (f *fakeNotifier) NotifyNew(_ context.Context, p models.Product) {
	f.news = append(f.news, p.ID)
}

func (f *fakeNotifier) NotifyRestock(_ context.Context, p models.Product) {
	f.restocks = append(f.restocks, p.ID)
}

// brokenStore falha nas operações sobre uma coleção específica
type brokenStore struct {
	*database.Memory
	collection models.Collection
	getAll     bool
}

var errBroken = errors.New("conexão recusada")

func (s *brokenStore) GetAll(ctx context.Context, c models.Collection) (map[string]string, error) {
	if s.getAll && c == s.collection {
		return nil, errBroken
	}
	return s.Memory.GetAll(ctx, c)
}

func (s *brokenStore) Insert(ctx context.Context, id, url string, c models.Collection) error {
	if c == s.collection {
		return errBroken
	}
	return s.Memory.Insert(ctx, id, url, c)
}

func testEntry() *logrus.Entry {
	return logrus.NewEntry(logger.Discard())
}

func never() bool { return false }

func newTestEngine(store database.Store, notifier Notifier) (*Engine, *diagnostics.ErrorLog) {
	errs := diagnostics.NewErrorLog()
	return NewEngine(store, notifier, errs, never, testEntry()), errs
}

func product(id string, hasStock bool) models.Product {
	return models.Product{
		ID:       id,
		Name:     "Produto " + id,
		URL:      "https://www.maze.com.br/produto/" + id,
		ImageURL: "https://cdn.maze.com.br/" + id + ".jpg",
		Price:    "R$999,90",
		HasStock: hasStock,
	}
}

func listing(products ...models.Product) map[string]models.Product {
	m := make(map[string]models.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

func seed(t *testing.T, store database.Store, collection models.Collection, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, store.Insert(context.Background(), id, "https://www.maze.com.br/produto/"+id, collection))
	}
}

func TestReconcileJordanScenario(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.History, "A")

	notifier := &fakeNotifier{}
	engine, errs := newTestEngine(store, notifier)

	timedOut := engine.Reconcile(context.Background(), models.Jordan, listing(product("A", true), product("B", false)))
	require.False(t, timedOut)

	assert.Equal(t, []string{"A"}, notifier.restocks)
	assert.Equal(t, []string{"B"}, notifier.news)

	assert.True(t, store.Has(models.Jordan.On, "A"))
	for _, c := range []models.Collection{models.Jordan.On, models.History, models.Snkrs} {
		assert.True(t, store.Has(c, "B"), "B em %s", c)
	}
	off, err := store.GetAll(context.Background(), models.Jordan.Off)
	require.NoError(t, err)
	assert.Empty(t, off)
	assert.False(t, store.Has(models.RestockOff, "A"))
	assert.Zero(t, errs.Len())
}

func TestReconcileRestockFromOffAndNewInStock(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.History, "A")
	seed(t, store, models.Jordan.Off, "A")

	notifier := &fakeNotifier{}
	engine, errs := newTestEngine(store, notifier)

	timedOut := engine.Reconcile(context.Background(), models.Jordan, listing(product("A", true), product("B", true)))
	require.False(t, timedOut)

	assert.Equal(t, []string{"A"}, notifier.restocks)
	assert.Equal(t, []string{"B"}, notifier.news)

	assert.True(t, store.Has(models.Jordan.On, "A"))
	assert.False(t, store.Has(models.Jordan.Off, "A"))
	for _, c := range []models.Collection{models.Jordan.On, models.History, models.Snkrs} {
		assert.True(t, store.Has(c, "B"), "B em %s", c)
	}
	assert.Zero(t, errs.Len())
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.History, "A", "C")
	seed(t, store, models.Jordan.Off, "A")
	seed(t, store, models.Jordan.On, "C")

	products := listing(product("A", true), product("B", true), product("C", false))
	first := &fakeNotifier{}
	engine, _ := newTestEngine(store, first)
	engine.Reconcile(context.Background(), models.Jordan, products)

	snapshot := map[models.Collection]map[string]string{}
	for _, c := range []models.Collection{models.Jordan.On, models.Jordan.Off, models.History, models.Snkrs, models.RestockOff} {
		snapshot[c], _ = store.GetAll(context.Background(), c)
	}

	second := &fakeNotifier{}
	engine, _ = newTestEngine(store, second)
	engine.Reconcile(context.Background(), models.Jordan, products)

	assert.Empty(t, second.news)
	assert.Empty(t, second.restocks)
	for c, before := range snapshot {
		after, _ := store.GetAll(context.Background(), c)
		assert.Equal(t, before, after, "coleção %s mudou", c)
	}
}

func TestReconcileNewProductNotifiedOnce(t *testing.T) {
	store := database.NewMemory()
	notifier := &fakeNotifier{}
	engine, _ := newTestEngine(store, notifier)

	products := listing(product("X", false))
	for i := 0; i < 3; i++ {
		engine.Reconcile(context.Background(), models.Jordan, products)
	}
	// Outra categoria listando o mesmo produto esgotado também não repete
	engine.Reconcile(context.Background(), models.Dunk, products)

	assert.Equal(t, []string{"X"}, notifier.news)
	assert.Empty(t, notifier.restocks)
}

func TestReconcileNewProductOutOfStock(t *testing.T) {
	store := database.NewMemory()
	notifier := &fakeNotifier{}
	engine, _ := newTestEngine(store, notifier)

	engine.Reconcile(context.Background(), models.Dunk, listing(product("N", false)))

	assert.Equal(t, []string{"N"}, notifier.news)
	assert.True(t, store.Has(models.Dunk.On, "N"))
	assert.True(t, store.Has(models.History, "N"))
	assert.True(t, store.Has(models.Snkrs, "N"))
}

func TestReconcileRestockSuppressedStillMoves(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.History, "A")
	seed(t, store, models.Jordan.Off, "A")

	sender := &recordingSender{}
	inspector := &staticInspector{result: scraper.VariantResult{Status: scraper.VariantsNone}}
	errs := diagnostics.NewErrorLog()
	svc := notify.NewService(sender, inspector, notify.Webhooks{Monitor: "m", Restock: "r"}, errs, testEntry())
	engine := NewEngine(store, svc, errs, never, testEntry())

	engine.Reconcile(context.Background(), models.Jordan, listing(product("A", true)))

	assert.Empty(t, sender.sent)
	assert.Equal(t, 1, inspector.calls)
	assert.True(t, store.Has(models.Jordan.On, "A"))
	assert.False(t, store.Has(models.Jordan.Off, "A"))
}

func TestReconcileLaunchIsNotRestocked(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.History, "L")
	seed(t, store, models.Launches, "L")
	seed(t, store, models.Jordan.Off, "L")

	notifier := &fakeNotifier{}
	engine, _ := newTestEngine(store, notifier)
	engine.Reconcile(context.Background(), models.Jordan, listing(product("L", true)))

	assert.Empty(t, notifier.restocks)
	assert.Empty(t, notifier.news)
	assert.True(t, store.Has(models.Jordan.On, "L"))
	assert.False(t, store.Has(models.Jordan.Off, "L"))
}

func TestReconcileKnownInStockUntracked(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.History, "K")

	notifier := &fakeNotifier{}
	engine, _ := newTestEngine(store, notifier)
	engine.Reconcile(context.Background(), models.Jordan, listing(product("K", true)))

	assert.Equal(t, []string{"K"}, notifier.restocks)
	assert.True(t, store.Has(models.Jordan.On, "K"))
}

func TestReconcileExcludedIsIgnored(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.Excluded, "E")

	notifier := &fakeNotifier{}
	engine, _ := newTestEngine(store, notifier)
	engine.Reconcile(context.Background(), models.Jordan, listing(product("E", true), product("F", false)))

	assert.Equal(t, []string{"F"}, notifier.news)
	assert.False(t, store.Has(models.History, "E"))
	assert.False(t, store.Has(models.Jordan.On, "E"))
}

func TestReconcileOutOfStockMovesToOff(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.History, "A", "B")
	seed(t, store, models.Jordan.On, "A")
	seed(t, store, models.Jordan.Off, "B")

	notifier := &fakeNotifier{}
	engine, _ := newTestEngine(store, notifier)
	engine.Reconcile(context.Background(), models.Jordan, listing(product("A", false), product("B", false)))

	assert.Empty(t, notifier.news)
	assert.Empty(t, notifier.restocks)
	assert.True(t, store.Has(models.Jordan.Off, "A"))
	assert.False(t, store.Has(models.Jordan.On, "A"))
	assert.True(t, store.Has(models.Jordan.Off, "B"))
	assert.False(t, store.Has(models.Jordan.On, "B"))
}

func TestReconcileOutOfStockUntrackedGoesToOn(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.History, "Q")

	notifier := &fakeNotifier{}
	engine, _ := newTestEngine(store, notifier)
	engine.Reconcile(context.Background(), models.Yeezy, listing(product("Q", false)))

	assert.Empty(t, notifier.restocks)
	assert.True(t, store.Has(models.Yeezy.On, "Q"))
	assert.False(t, store.Has(models.Yeezy.Off, "Q"))
}

func TestReconcileDisappearedOffMovesToRestockOff(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.History, "A", "G")
	seed(t, store, models.Jordan.Off, "A", "G")

	engine, _ := newTestEngine(store, &fakeNotifier{})
	engine.Reconcile(context.Background(), models.Jordan, listing(product("A", false)))

	assert.True(t, store.Has(models.Jordan.Off, "A"))
	assert.False(t, store.Has(models.RestockOff, "A"))
	assert.True(t, store.Has(models.RestockOff, "G"))
	assert.False(t, store.Has(models.Jordan.Off, "G"))
}

func TestReconcileEmptyListing(t *testing.T) {
	store := database.NewMemory()
	seed(t, store, models.Jordan.Off, "G")

	engine, errs := newTestEngine(store, &fakeNotifier{})
	timedOut := engine.Reconcile(context.Background(), models.Jordan, map[string]models.Product{})

	assert.False(t, timedOut)
	assert.True(t, store.Has(models.Jordan.Off, "G"))
	assert.False(t, store.Has(models.RestockOff, "G"))
	_, ok := errs.Get("jordan - update products")
	assert.True(t, ok)
}

func TestReconcileStoreReadFailure(t *testing.T) {
	store := &brokenStore{Memory: database.NewMemory(), collection: models.History, getAll: true}
	notifier := &fakeNotifier{}
	engine, errs := newTestEngine(store, notifier)

	engine.Reconcile(context.Background(), models.Dunk, listing(product("A", true)))

	assert.Empty(t, notifier.news)
	msg, ok := errs.Get("dunk - update products")
	require.True(t, ok)
	assert.Contains(t, msg, "conexão recusada")
}

func TestReconcileMoveKeepsSourceWhenInsertFails(t *testing.T) {
	store := &brokenStore{Memory: database.NewMemory(), collection: models.Jordan.On}
	seed(t, store.Memory, models.History, "A")
	seed(t, store.Memory, models.Jordan.Off, "A")

	engine, errs := newTestEngine(store, &fakeNotifier{})
	engine.Reconcile(context.Background(), models.Jordan, listing(product("A", true)))

	assert.True(t, store.Has(models.Jordan.Off, "A"))
	_, ok := errs.Get("swap restock")
	assert.True(t, ok)
}

func TestReconcileNewProductInsertStopsAtFirstFailure(t *testing.T) {
	store := &brokenStore{Memory: database.NewMemory(), collection: models.History}
	engine, errs := newTestEngine(store, &fakeNotifier{})

	engine.Reconcile(context.Background(), models.Jordan, listing(product("B", true)))

	assert.True(t, store.Has(models.Jordan.On, "B"))
	assert.False(t, store.Has(models.Snkrs, "B"))
	_, ok := errs.Get("insert product")
	assert.True(t, ok)
}

func TestReconcileStopsWhenExpired(t *testing.T) {
	store := database.NewMemory()
	notifier := &fakeNotifier{}
	errs := diagnostics.NewErrorLog()
	engine := NewEngine(store, notifier, errs, func() bool { return true }, testEntry())

	timedOut := engine.Reconcile(context.Background(), models.Jordan, listing(product("A", true)))

	assert.True(t, timedOut)
	assert.Empty(t, notifier.news)
	assert.False(t, store.Has(models.History, "A"))
}

type recordingSender struct {
	sent []notify.Message
}

func (s *recordingSender) Send(_ context.Context, _ string, msg notify.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

type staticInspector struct {
	result scraper.VariantResult
	calls  int
}

func (s *staticInspector) Inspect(context.Context, string) scraper.VariantResult {
	s.calls++
	return s.result
}
