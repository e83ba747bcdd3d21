package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"recommend-service/model"
)

// Explainer annotates a ranked product list with a human-readable
// explanation. It runs after ranking and has no effect on which products are
// returned or their order.
type Explainer interface {
	Explain(ctx context.Context, userID string, products []model.ProductRecord) (string, error)
}

// NoopExplainer is the default when no explanation service is configured.
type NoopExplainer struct{}

func (NoopExplainer) Explain(context.Context, string, []model.ProductRecord) (string, error) {
	return "", nil
}

// HTTPExplainer calls an external reasoning service. Failures are reported
// to the caller, who is expected to swallow them.
type HTTPExplainer struct {
	url    string
	client *http.Client
}

func NewHTTPExplainer(url string, timeout time.Duration) *HTTPExplainer {
	return &HTTPExplainer{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPExplainer) Explain(ctx context.Context, userID string, products []model.ProductRecord) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"user_id":  userID,
		"products": products,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("explainer %s -> HTTP %d", h.url, resp.StatusCode)
	}

	var body struct {
		Explanation string `json:"explanation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Explanation, nil
}
