package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"monitor-estoque/internal/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const listingPath = "/product/getproducts/?pageNumber=1&pageSize=60&keyWord="

// ListingURL monta a URL da busca de uma categoria
func ListingURL(baseURL string, category models.Category) string {
	return strings.TrimRight(baseURL, "/") + listingPath + url.PathEscape(category.Keyword)
}

// ParseProducts extrai os produtos dos cards da listagem.
// A primeira ocorrência de um id prevalece. Um card incompleto invalida a página.
func ParseProducts(source []byte, baseURL string) (map[string]models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(source))
	if err != nil {
		return nil, err
	}

	baseURL = strings.TrimRight(baseURL, "/")
	title := cases.Title(language.BrazilianPortuguese)
	products := make(map[string]models.Product)

	var parseErr error
	doc.Find("div.product-in-card").EachWithBreak(func(i int, card *goquery.Selection) bool {
		id, ok := card.Find("meta[content]").First().Attr("content")
		if !ok || strings.TrimSpace(id) == "" {
			parseErr = fmt.Errorf("card %d sem id", i)
			return false
		}
		id = strings.TrimSpace(id)

		if _, exists := products[id]; exists {
			return true
		}

		link := card.Find("a").First()
		name, hasName := link.Attr("title")
		href, hasHref := link.Attr("href")
		if !hasName || !hasHref {
			parseErr = fmt.Errorf("card %s sem link", id)
			return false
		}

		image, ok := card.Find("img").First().Attr("data-src")
		if !ok {
			parseErr = fmt.Errorf("card %s sem imagem", id)
			return false
		}

		price, ok := card.Find(`meta[itemprop="price"]`).First().Attr("content")
		if !ok {
			parseErr = fmt.Errorf("card %s sem preço", id)
			return false
		}

		products[id] = models.Product{
			ID:       id,
			Name:     title.String(strings.TrimSpace(name)),
			URL:      absoluteURL(baseURL, href),
			ImageURL: imageURL(image),
			Price:    "R$" + strings.ReplaceAll(strings.TrimSpace(price), ".", ","),
			HasStock: hasStock(card.AttrOr("data-exhausted", "")),
		}
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return products, nil
}

// hasStock: o produto só está esgotado quando o site marca explicitamente
func hasStock(dataExhausted string) bool {
	return dataExhausted != "True"
}

func absoluteURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return baseURL + href
}

// As imagens vêm sem protocolo (//cdn...)
func imageURL(src string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return "https:" + src
}
