package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"monitor-estoque/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// VariantStatus é o resultado da consulta de numerações de um produto
type VariantStatus int

const (
	// VariantsFailed: não foi possível obter ou ler a página do produto
	VariantsFailed VariantStatus = iota
	// VariantsNone: página lida, nenhuma numeração com estoque
	VariantsNone
	// VariantsFound: existe ao menos uma numeração com estoque
	VariantsFound
)

func (s VariantStatus) String() string {
	switch s {
	case VariantsNone:
		return "sem estoque"
	case VariantsFound:
		return "com estoque"
	default:
		return "falha"
	}
}

// VariantResult é o retorno da inspeção de numerações
type VariantResult struct {
	Status VariantStatus
	Stock  models.VariantStock
}

// productDetail é o JSON embutido em input#json-detail na página do produto
type productDetail struct {
	Variations []struct {
		Name string `json:"Name"`
		Sku  struct {
			Stock float64 `json:"Stock"`
		} `json:"Sku"`
	} `json:"Variations"`
}

// ParseVariants lê as numerações da página do produto.
// A ausência do JSON resulta em VariantsFailed sem erro; JSON inválido retorna erro.
func ParseVariants(source []byte) (VariantResult, error) {
	failed := VariantResult{Status: VariantsFailed}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(source))
	if err != nil {
		return failed, err
	}

	input := doc.Find("input#json-detail").First()
	if input.Length() == 0 {
		return failed, nil
	}

	var detail productDetail
	if err := json.Unmarshal([]byte(input.AttrOr("value", "")), &detail); err != nil {
		return failed, fmt.Errorf("json-detail inválido: %w", err)
	}

	var stock models.VariantStock
	for _, variation := range detail.Variations {
		// O site às vezes manda estoque fracionado; vale a parte inteira
		if units := int(variation.Sku.Stock); units > 0 {
			stock = append(stock, models.Variant{Label: variation.Name, Stock: units})
		}
	}

	if len(stock) == 0 {
		return VariantResult{Status: VariantsNone}, nil
	}

	sort.SliceStable(stock, func(i, j int) bool {
		return stock[i].Label < stock[j].Label
	})
	return VariantResult{Status: VariantsFound, Stock: stock}, nil
}
