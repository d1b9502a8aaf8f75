package health

import (
	"net/url"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// latency is recorded in microseconds, 1us to 60s, 3 significant digits
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
	sigFigs      = 3
)

// Monitor aggregates call outcomes. It is safe for concurrent use so one
// Monitor can be shared by several engines.
type Monitor struct {
	mu    sync.RWMutex
	hosts map[string]*HostStats

	total    atomic.Int64
	failures atomic.Int64

	lastOK    atomic.Bool
	lastError atomic.Value // string
	lastSeen  atomic.Int64 // unix nano
}

// HostStats holds counters for a single host
type HostStats struct {
	Host        string
	Total       atomic.Int64
	Failures    atomic.Int64
	StatusCodes map[int]int64
	Histogram   *hdrhistogram.Histogram
	mu          sync.Mutex
}

// Summary is a point-in-time view of a Monitor
type Summary struct {
	Total     int64
	Failures  int64
	Healthy   bool
	LastError string
	LastSeen  time.Time
	Hosts     []HostSummary
}

// HostSummary is the per-host part of a Summary
type HostSummary struct {
	Host        string
	Total       int64
	Failures    int64
	StatusCodes map[int]int64
	P50         time.Duration
	P95         time.Duration
	P99         time.Duration
	Max         time.Duration
}

func NewMonitor() *Monitor {
	return &Monitor{
		hosts: make(map[string]*HostStats),
	}
}

// IsFailure decides whether a call outcome counts against the service:
// transport failures and 5xx responses do.
func IsFailure(status int, err error) bool {
	return err != nil || status == 0 || status >= 500
}

// Report records one call. rawURL is only used for its host.
func (m *Monitor) Report(rawURL string, status int, d time.Duration, err error) {
	failed := IsFailure(status, err)

	m.total.Add(1)
	if failed {
		m.failures.Add(1)
		if err != nil {
			m.lastError.Store(err.Error())
		} else {
			m.lastError.Store(httpStatusError(status))
		}
	}
	m.lastOK.Store(!failed)
	m.lastSeen.Store(time.Now().UnixNano())

	hs := m.host(hostOf(rawURL))
	hs.Total.Add(1)
	if failed {
		hs.Failures.Add(1)
	}

	latencyUs := d.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}

	hs.mu.Lock()
	hs.StatusCodes[status]++
	_ = hs.Histogram.RecordValue(latencyUs)
	hs.mu.Unlock()
}

func (m *Monitor) host(name string) *HostStats {
	m.mu.RLock()
	hs, ok := m.hosts[name]
	m.mu.RUnlock()
	if ok {
		return hs
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if hs, ok = m.hosts[name]; ok {
		return hs
	}
	hs = &HostStats{
		Host:        name,
		StatusCodes: make(map[int]int64),
		Histogram:   hdrhistogram.New(minLatencyUs, maxLatencyUs, sigFigs),
	}
	m.hosts[name] = hs
	return hs
}

// Healthy reports whether the most recent call succeeded. A Monitor that
// has seen no calls is not healthy.
func (m *Monitor) Healthy() bool {
	return m.lastOK.Load()
}

// Summary snapshots the current counters, hosts sorted by name
func (m *Monitor) Summary() Summary {
	s := Summary{
		Total:    m.total.Load(),
		Failures: m.failures.Load(),
		Healthy:  m.Healthy(),
	}
	if v, ok := m.lastError.Load().(string); ok {
		s.LastError = v
	}
	if ns := m.lastSeen.Load(); ns > 0 {
		s.LastSeen = time.Unix(0, ns)
	}

	m.mu.RLock()
	hosts := make([]*HostStats, 0, len(m.hosts))
	for _, hs := range m.hosts {
		hosts = append(hosts, hs)
	}
	m.mu.RUnlock()

	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Host < hosts[j].Host })

	for _, hs := range hosts {
		hs.mu.Lock()
		codes := make(map[int]int64, len(hs.StatusCodes))
		for k, v := range hs.StatusCodes {
			codes[k] = v
		}
		hsum := HostSummary{
			Host:        hs.Host,
			Total:       hs.Total.Load(),
			Failures:    hs.Failures.Load(),
			StatusCodes: codes,
			P50:         time.Duration(hs.Histogram.ValueAtQuantile(50)) * time.Microsecond,
			P95:         time.Duration(hs.Histogram.ValueAtQuantile(95)) * time.Microsecond,
			P99:         time.Duration(hs.Histogram.ValueAtQuantile(99)) * time.Microsecond,
			Max:         time.Duration(hs.Histogram.Max()) * time.Microsecond,
		}
		hs.mu.Unlock()
		s.Hosts = append(s.Hosts, hsum)
	}

	return s
}

// Reset clears all recorded data
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.hosts = make(map[string]*HostStats)
	m.mu.Unlock()

	m.total.Store(0)
	m.failures.Store(0)
	m.lastOK.Store(false)
	m.lastError.Store("")
	m.lastSeen.Store(0)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

func httpStatusError(status int) string {
	return "server error: status " + strconv.Itoa(status)
}
