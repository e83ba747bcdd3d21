package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"recommend-service/model"
)

// Target is one component to probe. Skip targets are never contacted; they
// exist so the report can say why they were not checked.
type Target struct {
	Name       string
	Protocol   model.ProbeProtocol
	URL        string
	SkipReason string
	Timeout    time.Duration
}

// Prober checks a single target. All failure modes come back inside the
// result; Check never returns an error.
type Prober struct {
	client *http.Client
}

func NewProber() *Prober {
	// Per-probe timeouts come from the request context, not the client.
	return &Prober{client: &http.Client{}}
}

func (p *Prober) Check(ctx context.Context, t Target) model.HealthCheckResult {
	if t.Protocol == model.ProtocolSkip {
		reason := t.SkipReason
		if reason == "" {
			reason = "non-HTTP protocol, active probe unsupported"
		}
		return model.HealthCheckResult{
			Name:     t.Name,
			Protocol: model.ProtocolSkip,
			Status:   model.StatusSkipped,
			Detail:   reason,
		}
	}

	result := model.HealthCheckResult{Name: t.Name, Protocol: model.ProtocolHTTP}

	probeCtx := ctx
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, t.URL, nil)
	if err != nil {
		result.Status = model.StatusUnreachable
		result.Detail = fmt.Sprintf("invalid target: %v", err)
		return result
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		result.Status = model.StatusUnreachable
		result.Detail = classifyError(err)
		return result
	}
	defer resp.Body.Close()

	latency := time.Since(start).Milliseconds()
	result.LatencyMs = &latency

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		result.Status = model.StatusOK
	} else {
		result.Status = model.StatusDegraded
		result.Detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return result
}

// classifyError reduces transport failures to short, stable detail strings.
func classifyError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Sprintf("connection error: %v", opErr.Err)
	}
	return fmt.Sprintf("request error: %v", err)
}
