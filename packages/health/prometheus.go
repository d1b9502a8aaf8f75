package health

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// WritePrometheus renders the monitor state in Prometheus text format
func (m *Monitor) WritePrometheus(w io.Writer) error {
	s := m.Summary()

	healthy := 0
	if s.Healthy {
		healthy = 1
	}

	fmt.Fprintf(w, "# HELP opensos_requests_total Total number of transport calls\n")
	fmt.Fprintf(w, "# TYPE opensos_requests_total counter\n")
	fmt.Fprintf(w, "opensos_requests_total %d\n", s.Total)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP opensos_requests_failed_total Calls that failed or returned 5xx\n")
	fmt.Fprintf(w, "# TYPE opensos_requests_failed_total counter\n")
	fmt.Fprintf(w, "opensos_requests_failed_total %d\n", s.Failures)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP opensos_up Whether the last call succeeded\n")
	fmt.Fprintf(w, "# TYPE opensos_up gauge\n")
	fmt.Fprintf(w, "opensos_up %d\n", healthy)

	if len(s.Hosts) == 0 {
		return nil
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP opensos_host_requests_by_status_total Calls per host and status code\n")
	fmt.Fprintf(w, "# TYPE opensos_host_requests_by_status_total counter\n")
	for _, h := range s.Hosts {
		codes := make([]int, 0, len(h.StatusCodes))
		for code := range h.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "opensos_host_requests_by_status_total{host=%q,status=\"%d\"} %d\n", h.Host, code, h.StatusCodes[code])
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP opensos_host_request_duration_ms Call latency per host in milliseconds\n")
	fmt.Fprintf(w, "# TYPE opensos_host_request_duration_ms gauge\n")
	for _, h := range s.Hosts {
		fmt.Fprintf(w, "opensos_host_request_duration_ms{host=%q,quantile=\"0.50\"} %.2f\n", h.Host, ms(h.P50))
		fmt.Fprintf(w, "opensos_host_request_duration_ms{host=%q,quantile=\"0.95\"} %.2f\n", h.Host, ms(h.P95))
		fmt.Fprintf(w, "opensos_host_request_duration_ms{host=%q,quantile=\"0.99\"} %.2f\n", h.Host, ms(h.P99))
	}

	return nil
}

// Handler serves WritePrometheus output, suitable for a /metrics route
func (m *Monitor) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_ = m.WritePrometheus(w)
	})
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
