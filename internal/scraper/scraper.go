package scraper

import (
	"context"
	"strings"

	"monitor-estoque/internal/diagnostics"
	"monitor-estoque/internal/models"

	"github.com/sirupsen/logrus"
)

// Maze reúne o acesso ao site durante uma iteração: listagens por categoria,
// extração dos cards e consulta de numerações dos produtos.
type Maze struct {
	baseURL string
	fetcher *Fetcher
	errs    *diagnostics.ErrorLog
	log     *logrus.Entry
}

// NewMaze cria o scraper da iteração sobre o fetcher informado
func NewMaze(baseURL string, fetcher *Fetcher, errs *diagnostics.ErrorLog, log *logrus.Entry) *Maze {
	return &Maze{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
		errs:    errs,
		log:     log,
	}
}

// FetchListing baixa a página de busca da categoria; vazio em caso de falha
func (m *Maze) FetchListing(ctx context.Context, category models.Category) []byte {
	return m.fetcher.Fetch(ctx, ListingURL(m.baseURL, category), "get source "+category.Name)
}

// Products extrai os produtos da listagem; mapa vazio se a página não puder ser lida
func (m *Maze) Products(source []byte) map[string]models.Product {
	products, err := ParseProducts(source, m.baseURL)
	if err != nil {
		m.errs.Record("get products", err)
		m.log.WithError(err).Warn("Erro ao ler produtos da listagem")
		return map[string]models.Product{}
	}
	return products
}

// Inspect consulta as numerações com estoque na página do produto
func (m *Maze) Inspect(ctx context.Context, productURL string) VariantResult {
	source := m.fetcher.Fetch(ctx, productURL, m.productKey(productURL))

	result, err := ParseVariants(source)
	if err != nil {
		m.errs.Record("get sizes", err)
		m.log.WithError(err).WithField("url", productURL).Warn("Erro ao ler numerações")
	}
	return result
}

// productKey identifica a página do produto no log de erros sem o domínio
func (m *Maze) productKey(productURL string) string {
	path := strings.TrimPrefix(productURL, m.baseURL)
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimPrefix(path, "produto/")
	return "get product source - " + path
}
