package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vitor-labes/category-scraper/internal/config"
	"github.com/vitor-labes/category-scraper/internal/domain"
)

var ErrInvalidCard = errors.New("card inválido")

var spaces = regexp.MustCompile(`\s+`)

// hidden matches nodes the browser would not render as text.
const hidden = `[hidden], [style*="display:none"], [style*="display: none"], [style*="visibility:hidden"], [style*="visibility: hidden"]`

// Extractor reads the four product fields out of a card's HTML.
type Extractor struct {
	sel config.Selectors
}

func NewExtractor(sel config.Selectors) *Extractor {
	return &Extractor{sel: sel}
}

// Extract parses one card. baseURL resolves relative image sources the same way
// the browser does. Every rejection wraps ErrInvalidCard.
func (e *Extractor) Extract(cardHTML, baseURL string) (domain.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cardHTML))
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: html ilegível: %v", ErrInvalidCard, err)
	}

	titleNode, err := child(doc, e.sel.Title)
	if err != nil {
		return domain.Product{}, err
	}
	priceNode, err := child(doc, e.sel.Price)
	if err != nil {
		return domain.Product{}, err
	}
	imageNode, err := child(doc, e.sel.Image)
	if err != nil {
		return domain.Product{}, err
	}
	linkNode, err := child(doc, e.sel.ProductLink)
	if err != nil {
		return domain.Product{}, err
	}

	title := visibleText(titleNode)
	priceText := visibleText(priceNode)
	price := ParsePrice(priceText)

	imageURL, err := absoluteURL(baseURL, strings.TrimSpace(imageNode.AttrOr(e.sel.ImageAttr, "")))
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: url da imagem inválida: %v", ErrInvalidCard, err)
	}

	productURL := strings.TrimSpace(linkNode.AttrOr(e.sel.ProductAttr, ""))
	if productURL == "" {
		return domain.Product{}, fmt.Errorf("%w: url do produto ausente", ErrInvalidCard)
	}

	product := domain.Product{
		Title:      title,
		Price:      price,
		ImageURL:   imageURL,
		ProductURL: productURL,
	}

	if product.UniqueKey() == "" {
		return domain.Product{}, fmt.Errorf("%w: título vazio", ErrInvalidCard)
	}
	if !product.Valid() {
		return domain.Product{}, fmt.Errorf("%w: preço inválido %q", ErrInvalidCard, priceText)
	}

	return product, nil
}

func child(doc *goquery.Document, selector string) (*goquery.Selection, error) {
	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return nil, fmt.Errorf("%w: elemento %q não encontrado", ErrInvalidCard, selector)
	}
	return node, nil
}

// visibleText drops inline-hidden descendants before reading the text, so a
// hidden old price does not merge into the shown one.
func visibleText(node *goquery.Selection) string {
	node.Find(hidden).Remove()
	return cleanString(node.Text())
}

func cleanString(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// absoluteURL resolves raw against base and requires an http(s) URL with a host.
func absoluteURL(base, raw string) (string, error) {
	if raw == "" {
		return "", errors.New("vazia")
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if !ref.IsAbs() && base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		ref = b.ResolveReference(ref)
	}
	if (ref.Scheme != "http" && ref.Scheme != "https") || ref.Host == "" {
		return "", fmt.Errorf("%q não é absoluta", raw)
	}
	return ref.String(), nil
}
