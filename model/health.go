package model

// ProbeProtocol is how a diagnostics target can be checked.
type ProbeProtocol string

const (
	ProtocolHTTP ProbeProtocol = "http"
	ProtocolSkip ProbeProtocol = "skip"
)

// ProbeStatus classifies a single probe outcome. Failures are data here,
// never errors.
type ProbeStatus string

const (
	StatusOK          ProbeStatus = "ok"
	StatusDegraded    ProbeStatus = "degraded"
	StatusUnreachable ProbeStatus = "unreachable"
	StatusSkipped     ProbeStatus = "skipped"
)

var statusSeverity = map[ProbeStatus]int{
	StatusOK:          0,
	StatusDegraded:    1,
	StatusUnreachable: 2,
}

// WorseThan reports whether s is more severe than other. Skipped statuses
// never count toward severity.
func (s ProbeStatus) WorseThan(other ProbeStatus) bool {
	return statusSeverity[s] > statusSeverity[other]
}

// HealthCheckResult is the outcome of probing one target.
type HealthCheckResult struct {
	Name      string        `json:"name"`
	Protocol  ProbeProtocol `json:"protocol"`
	Status    ProbeStatus   `json:"status"`
	LatencyMs *int64        `json:"latency_ms"`
	Detail    string        `json:"detail,omitempty"`
}

// DiagnosticsReport aggregates probe results in configured target order.
type DiagnosticsReport struct {
	OverallStatus ProbeStatus         `json:"overall_status"`
	Components    []HealthCheckResult `json:"components"`
}
