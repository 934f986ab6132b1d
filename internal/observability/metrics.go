package observability

type Metrics interface {
	ObserveWebhook(topic, outcome string, durMs float64)
	ObserveClassify(source string, durMs float64)
	ObserveLedger(op string, durMs float64)
	ObserveHTTP(method, route string, status int, durMs float64)
	IncCacheHit()
	IncCacheMiss()
}

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveWebhook(string, string, float64)   {}
func (Noop) ObserveClassify(string, float64)          {}
func (Noop) ObserveLedger(string, float64)            {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
