package models

import (
	"net/url"
	"strings"
)

// Product representa um produto encontrado na listagem de uma categoria
type Product struct {
	ID       string
	Name     string
	URL      string
	ImageURL string
	Price    string // Preço formatado como exibido no site (ex: R$899,99)
	HasStock bool
}

// Variant é uma numeração do produto com seu estoque
type Variant struct {
	Label string
	Stock int
}

// VariantStock contém apenas numerações com estoque positivo, ordenadas pelo rótulo
type VariantStock []Variant

// Collection identifica uma coleção do banco de dados (id do produto -> URL)
type Collection string

const (
	History    Collection = "history"
	Launches   Collection = "lancamentos"
	Excluded   Collection = "bugados"
	RestockOff Collection = "restock_off"
	Snkrs      Collection = "snkrs"
	Proxies    Collection = "proxies"
	Headers    Collection = "headers"
)

// Category é uma linha de produtos monitorada, com suas duas coleções de estado
type Category struct {
	Name    string
	Keyword string
	On      Collection
	Off     Collection
}

// NewCategory cria a categoria a partir da palavra-chave de busca.
// "air force" vira a categoria "airforce".
func NewCategory(keyword string) Category {
	keyword = strings.TrimSpace(keyword)
	if unescaped, err := url.QueryUnescape(keyword); err == nil {
		keyword = unescaped
	}
	name := strings.ToLower(strings.ReplaceAll(keyword, " ", ""))

	return Category{
		Name:    name,
		Keyword: keyword,
		On:      Collection(name + "_on"),
		Off:     Collection(name + "_off"),
	}
}

var (
	Jordan     = NewCategory("jordan")
	Dunk       = NewCategory("dunk")
	Yeezy      = NewCategory("yeezy")
	AirForce   = NewCategory("air force")
	NikeStussy = NewCategory("nike stussy")
)

// DefaultCategories são as categorias monitoradas quando nada é configurado
func DefaultCategories() []Category {
	return []Category{Jordan, Dunk, Yeezy, AirForce, NikeStussy}
}

// CategoriesFromKeywords converte a lista de palavras-chave configurada, ignorando repetidas
func CategoriesFromKeywords(keywords []string) []Category {
	seen := make(map[string]bool)
	var categories []Category
	for _, keyword := range keywords {
		category := NewCategory(keyword)
		if category.Name == "" || seen[category.Name] {
			continue
		}
		seen[category.Name] = true
		categories = append(categories, category)
	}
	return categories
}
