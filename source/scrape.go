package source

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"recommend-service/model"
)

var pricePattern = regexp.MustCompile(`\$\s*[0-9]+(?:\.[0-9]+)?`)

// ScrapeSource extracts product cards from the storefront's rendered
// homepage. Extraction is structural (product links inside the hot products
// block), so attribute order and whitespace variance in the markup do not
// matter.
type ScrapeSource struct {
	baseURL string
	client  *http.Client
}

func NewScrapeSource(baseURL string, timeout time.Duration) *ScrapeSource {
	return &ScrapeSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *ScrapeSource) Name() string {
	return "scrape"
}

func (s *ScrapeSource) FetchProducts(ctx context.Context) (*model.SourceResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("User-Agent", "recommend-service/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s -> HTTP %d", ErrUpstreamUnavailable, s.baseURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScrapeParse, err)
	}

	products := s.extract(doc)
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrScrapeParse, s.baseURL)
	}

	return &model.SourceResult{
		Origin:    model.OriginScrape,
		Products:  products,
		FetchedAt: time.Now(),
	}, nil
}

// extract walks every product link on the page and pulls id, name, price and
// image out of the surrounding card. Entries missing id, name or price are
// dropped; a missing image is kept as an empty field.
func (s *ScrapeSource) extract(doc *goquery.Document) []model.ProductRecord {
	var products []model.ProductRecord
	seen := make(map[string]bool)

	doc.Find(`a[href]`).Each(func(_ int, card *goquery.Selection) {
		href := card.AttrOr("href", "")
		if !strings.HasPrefix(href, "/product/") {
			return
		}

		id := strings.Trim(strings.TrimPrefix(href, "/product/"), "/")
		if id == "" || seen[id] {
			return
		}

		name := CleanName(card.Find(".hot-product-card-name, .product-name").First().Text())
		priceText := pricePattern.FindString(card.Text())
		if name == "" || priceText == "" {
			return
		}

		price, err := NormalizePrice(priceText)
		if err != nil {
			log.Printf("Skipping scraped card %s: %v", id, err)
			return
		}

		img := card.Find("img").First().AttrOr("src", "")

		seen[id] = true
		products = append(products, model.ProductRecord{
			ID:      id,
			Name:    name,
			Price:   price,
			Picture: AbsoluteURL(s.baseURL, img),
		})
	})

	return products
}
