package tools

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Probe issues a GET against url and reports whether the response matched
// the expected status. Connection failures are a failed probe, not an error.
func (t *Toolbox) Probe(ctx context.Context, url string, expectedStatus int, timeout time.Duration) (ProbeResult, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProbeResult{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return ProbeResult{Elapsed: elapsed}, nil
	}
	defer resp.Body.Close()

	return ProbeResult{
		StatusCode: resp.StatusCode,
		Success:    resp.StatusCode == expectedStatus,
		Elapsed:    elapsed,
	}, nil
}

// PortOpen reports whether a TCP connection to host:port succeeds quickly.
func (t *Toolbox) PortOpen(host string, port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
