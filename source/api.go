package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"recommend-service/model"
)

// APISource fetches structured product data from the storefront's JSON
// endpoint.
type APISource struct {
	baseURL string
	client  *http.Client
}

func NewAPISource(baseURL string, timeout time.Duration) *APISource {
	return &APISource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *APISource) Name() string {
	return "api"
}

// rawAPIProduct accepts the field aliases seen across storefront versions.
type rawAPIProduct struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"itemId"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Picture     string          `json:"picture"`
	Image       string          `json:"image"`
	PictureURL  string          `json:"pictureUrl"`
	Description string          `json:"description"`
	PriceUSD    *rawMoney       `json:"priceUsd"`
	Price       json.RawMessage `json:"price"`
	PriceCents  *int64          `json:"priceCents"`
}

type rawMoney struct {
	CurrencyCode string `json:"currencyCode"`
	Units        int64  `json:"units"`
	Nanos        int32  `json:"nanos"`
}

func (a *APISource) FetchProducts(ctx context.Context) (*model.SourceResult, error) {
	url := a.baseURL + "/api/products"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s -> HTTP %d", ErrUpstreamUnavailable, url, resp.StatusCode)
	}

	raws, err := decodeProductList(resp.Body)
	if err != nil {
		return nil, err
	}

	products := make([]model.ProductRecord, 0, len(raws))
	for _, raw := range raws {
		p, err := a.normalize(raw)
		if err != nil {
			log.Printf("Skipping API product entry: %v", err)
			continue
		}
		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("%w: %s returned no valid products", ErrMalformedResponse, url)
	}

	return &model.SourceResult{
		Origin:    model.OriginAPI,
		Products:  products,
		FetchedAt: time.Now(),
	}, nil
}

// decodeProductList accepts either a bare JSON array or an object with a
// "products" key.
func decodeProductList(r io.Reader) ([]rawAPIProduct, error) {
	var payload json.RawMessage
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var list []rawAPIProduct
	if err := json.Unmarshal(payload, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Products []rawAPIProduct `json:"products"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return wrapped.Products, nil
}

func (a *APISource) normalize(raw rawAPIProduct) (model.ProductRecord, error) {
	id := firstNonEmpty(raw.ID, raw.ItemID, raw.SKU)
	name := CleanName(firstNonEmpty(raw.Name, raw.Title))
	if id == "" || name == "" {
		return model.ProductRecord{}, fmt.Errorf("%w: entry missing id or name", ErrMalformedResponse)
	}

	price, err := a.normalizePrice(raw)
	if err != nil {
		return model.ProductRecord{}, err
	}

	return model.ProductRecord{
		ID:          id,
		Name:        name,
		Price:       price,
		Picture:     AbsoluteURL(a.baseURL, firstNonEmpty(raw.Picture, raw.Image, raw.PictureURL)),
		Description: raw.Description,
	}, nil
}

func (a *APISource) normalizePrice(raw rawAPIProduct) (model.Money, error) {
	switch {
	case raw.PriceUSD != nil:
		m := raw.PriceUSD
		if m.Units < 0 || m.Nanos < 0 || int64(m.Nanos) >= nanosPerUnit {
			return model.Money{}, fmt.Errorf("%w: priceUsd out of range", ErrMalformedResponse)
		}
		code := m.CurrencyCode
		if code == "" {
			code = "USD"
		}
		return model.Money{CurrencyCode: code, Units: m.Units, Nanos: m.Nanos}, nil

	case len(raw.Price) > 0:
		// Either a JSON string ("$24.95") or a bare number (24.95).
		var s string
		if err := json.Unmarshal(raw.Price, &s); err != nil {
			var f json.Number
			if err := json.Unmarshal(raw.Price, &f); err != nil {
				return model.Money{}, fmt.Errorf("%w: unusable price field", ErrMalformedResponse)
			}
			s = f.String()
		}
		return NormalizePrice(s)

	case raw.PriceCents != nil:
		cents := *raw.PriceCents
		if cents < 0 {
			return model.Money{}, fmt.Errorf("%w: negative priceCents", ErrMalformedResponse)
		}
		return model.Money{
			CurrencyCode: "USD",
			Units:        cents / 100,
			Nanos:        int32(cents%100) * 10_000_000,
		}, nil
	}
	return model.Money{}, fmt.Errorf("%w: entry has no price", ErrMalformedResponse)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
