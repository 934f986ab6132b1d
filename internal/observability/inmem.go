package observability

import "sync"

// Inmem keeps the last N observations for debugging endpoints and tests.
type Inmem struct {
	mu     sync.Mutex
	last   []any
	max    int
	totals struct {
		cacheHits, cacheMiss int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[1:]
	}
}

func (m *Inmem) ObserveWebhook(topic, outcome string, durMs float64) {
	m.push(struct {
		Kind           string
		Topic, Outcome string
		Dur            float64
	}{"webhook", topic, outcome, durMs})
}

func (m *Inmem) ObserveClassify(source string, durMs float64) {
	m.push(struct {
		Kind   string
		Source string
		Dur    float64
	}{"classify", source, durMs})
}

func (m *Inmem) ObserveLedger(op string, durMs float64) {
	m.push(struct {
		Kind string
		Op   string
		Dur  float64
	}{"ledger", op, durMs})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(struct {
		Kind          string
		Method, Route string
		Status        int
		Dur           float64
	}{"http", method, route, status, durMs})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

// CacheCounts returns hit/miss totals; used by tests.
func (m *Inmem) CacheCounts() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.cacheHits, m.totals.cacheMiss
}

// Last returns a copy of the retained observations.
func (m *Inmem) Last() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.last))
	copy(out, m.last)
	return out
}
