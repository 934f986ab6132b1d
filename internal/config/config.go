package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Shopify struct {
	// APISecret signs every inbound webhook body.
	APISecret string
	// Tokens maps a shop domain to its Admin API access token. The OAuth
	// exchange that mints these lives outside this service.
	Tokens     map[string]string
	APIVersion string
	Timeout    time.Duration
}

type Cache struct {
	// TTL bounds how long a resolved product side is trusted.
	TTL time.Duration
	// Size caps the in-process LRU in front of the store-backed cache.
	Size int
}

type Kafka struct {
	Brokers []string
	Topic   string
	Group   string
	Workers int
}

// Enabled reports whether the replay consumer should run at all.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

type Breaker struct {
	Threshold   uint32
	OpenTimeout time.Duration
	MaxHalfOpen uint32
}

type Retry struct {
	Attempts     int
	Base         time.Duration
	Max          time.Duration
	JitterFactor float64
}

type Config struct {
	HTTPAddr string

	Redis   Redis
	Shopify Shopify
	Cache   Cache
	Kafka   Kafka
	Breaker Breaker
	Retry   Retry
}

// Load keeps the simple API and fatals on error in main().
func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	_ = godotenv.Load("env/.env")

	cfg := Config{
		HTTPAddr: envDefault("HTTP_ADDR", ":8081"),

		Redis: Redis{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},

		Shopify: Shopify{
			APISecret:  strings.TrimSpace(os.Getenv("SHOPIFY_API_SECRET")),
			Tokens:     parseTokens(os.Getenv("SHOPIFY_TOKENS")),
			APIVersion: envDefault("SHOPIFY_API_VERSION", "2024-01"),
			Timeout:    envDurationMS("SHOPIFY_TIMEOUT", 10*time.Second),
		},

		Cache: Cache{
			TTL:  envDurationMS("CACHE_TTL", 24*time.Hour),
			Size: envInt("CACHE_SIZE", 1000),
		},

		Kafka: Kafka{
			Brokers: splitCSV(strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))),
			Topic:   envDefault("KAFKA_TOPIC", "battle-webhooks"),
			Group:   envDefault("KAFKA_GROUP", "battle-replay"),
			Workers: envInt("KAFKA_WORKERS", 4),
		},

		Breaker: Breaker{
			Threshold:   envUint32("BREAKER_THRESHOLD", 5),
			OpenTimeout: envDurationMS("BREAKER_OPENTIMEOUT", 10*time.Second),
			MaxHalfOpen: envUint32("BREAKER_MAXHALFOPEN", 3),
		},

		Retry: Retry{
			Attempts:     envInt("RETRY_ATTEMPTS", 5),
			Base:         envDurationMS("RETRY_BASE", 100*time.Millisecond),
			Max:          envDurationMS("RETRY_MAX", 5*time.Second),
			JitterFactor: envFloat64("RETRY_JITTERFACTOR", 0.3),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	req := map[string]string{
		"REDIS_ADDR":         c.Redis.Addr,
		"SHOPIFY_API_SECRET": c.Shopify.APISecret,
	}
	for k, v := range req {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &missingEnvError{Keys: missing}
	}

	if c.Cache.Size <= 0 {
		log.Printf("CACHE_SIZE is %d, adjusting to 1", c.Cache.Size)
		c.Cache.Size = 1
	}
	if c.Retry.Attempts < 0 {
		log.Printf("RETRY_ATTEMPTS is %d, adjusting to 0", c.Retry.Attempts)
		c.Retry.Attempts = 0
	}
	if c.Retry.Max < c.Retry.Base {
		log.Printf("RETRY_MAX (%v) < RETRY_BASE (%v), adjusting max to base", c.Retry.Max, c.Retry.Base)
		c.Retry.Max = c.Retry.Base
	}
	return nil
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	return "missing required envs: " + strings.Join(e.Keys, ", ")
}

// parseTokens reads "shop-a.myshopify.com:tok1,shop-b.myshopify.com:tok2".
func parseTokens(s string) map[string]string {
	out := map[string]string{}
	for _, pair := range splitCSV(s) {
		shop, tok, ok := strings.Cut(pair, ":")
		if !ok || shop == "" || tok == "" {
			log.Printf("skipping malformed SHOPIFY_TOKENS entry %q", pair)
			continue
		}
		out[strings.TrimSpace(shop)] = strings.TrimSpace(tok)
	}
	return out
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return n
}

func envUint32(k string, def uint32) uint32 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return uint32(u)
}

func envFloat64(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %.3f: %v", k, v, def, err)
		return def
	}
	return f
}

// envDurationMS supports either plain integer milliseconds ("1500") or
// Go duration strings ("1.5s", "250ms", "24h").
func envDurationMS(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
			return def
		}
		return d
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
