package notify

import (
	"fmt"
	"time"

	"monitor-estoque/internal/models"
	"monitor-estoque/internal/scraper"
)

// Kind diferencia produto novo de restock
type Kind int

const (
	KindNew Kind = iota
	KindRestock
)

func (k Kind) String() string {
	if k == KindRestock {
		return "restock"
	}
	return "novo"
}

const (
	ColorNew     = 15158332 // vermelho
	ColorRestock = 16776960 // amarelo

	footerText = `** Clique em "Trust this Domain" para garantir acesso mais rápido ao link `
)

// Message é o payload aceito por webhooks do Discord
type Message struct {
	Embeds []Embed `json:"embeds"`
}

type Embed struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Color     int     `json:"color"`
	Thumbnail *Image  `json:"thumbnail,omitempty"`
	Fields    []Field `json:"fields"`
	Footer    *Footer `json:"footer,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

type Image struct {
	URL string `json:"url"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Footer struct {
	Text string `json:"text"`
}

// Compose monta a mensagem do produto. Retorna false quando o envio deve ser
// cancelado: restock sem nenhuma numeração em estoque.
// Se a consulta de numerações falhou, o restock segue sem os campos de tamanho.
func Compose(kind Kind, product models.Product, variants scraper.VariantResult, now time.Time) (Message, bool) {
	embed := Embed{
		Title: product.Name,
		URL:   product.URL,
		Color: ColorNew,
		Fields: []Field{
			{Name: "Preço", Value: product.Price},
		},
	}

	if kind == KindRestock {
		embed.Color = ColorRestock

		switch variants.Status {
		case scraper.VariantsNone:
			return Message{}, false
		case scraper.VariantsFound:
			if len(variants.Stock) == 0 {
				return Message{}, false
			}
			for _, variant := range variants.Stock {
				embed.Fields = append(embed.Fields, Field{
					Name:  "> Size " + variant.Label,
					Value: fmt.Sprintf("[Estoque: %d](%s)", variant.Stock, product.URL),
				})
			}
		}
	}

	if product.ImageURL != "" {
		embed.Thumbnail = &Image{URL: product.ImageURL}
	}
	embed.Footer = &Footer{Text: footerText}
	embed.Timestamp = now.UTC().Format(time.RFC3339)

	return Message{Embeds: []Embed{embed}}, true
}
