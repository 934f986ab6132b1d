// Command spammer posts signed synthetic webhooks at a fixed rate, for load
// testing the ingestion path against a local instance.
package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
)

type Spammer struct {
	client    *http.Client
	target    string
	secret    []byte
	shop      string
	totalSent atomic.Int64
	totalErr  atomic.Int64
}

func NewSpammer(target, secret, shop string) *Spammer {
	return &Spammer{
		client: &http.Client{Timeout: 10 * time.Second},
		target: target,
		secret: []byte(secret),
		shop:   shop,
	}
}

func (s *Spammer) Run(ctx context.Context, rate int, duration time.Duration) {
	log.Printf("Starting spam: rate=%d req/s, duration=%v", rate, duration)

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	timer := time.NewTimer(duration)
	defer timer.Stop()

	for {
		select {
		case <-ticker.C:
			topic, payload := generateFakeEvent()
			if err := s.post(ctx, topic, payload); err != nil {
				s.totalErr.Add(1)
				log.Printf("Error sending webhook: %v", err)
			} else {
				s.totalSent.Add(1)
			}

		case <-timer.C:
			log.Printf("Spam completed. Sent: %d, errors: %d", s.totalSent.Load(), s.totalErr.Load())
			return

		case <-ctx.Done():
			log.Printf("Spam stopped. Sent: %d, errors: %d", s.totalSent.Load(), s.totalErr.Load())
			return
		}
	}
}

func (s *Spammer) post(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.target+"/webhooks", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Topic", topic)
	req.Header.Set("X-Shopify-Shop-Domain", s.shop)
	req.Header.Set("X-Shopify-Hmac-Sha256", sig)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("server status %d", resp.StatusCode)
	}
	return nil
}

// generateFakeEvent produces mostly paid orders with occasional cancellations
// and refunds, so the whole handler surface gets exercised.
func generateFakeEvent() (string, any) {
	orderID := int64(rand.Intn(5000) + 1)

	switch n := rand.Intn(10); {
	case n < 7:
		items := make([]map[string]any, 0, rand.Intn(3)+1)
		for i := 0; i < cap(items); i++ {
			items = append(items, map[string]any{
				"id":             orderID*100 + int64(i),
				"product_id":     int64(rand.Intn(200) + 1),
				"quantity":       int64(rand.Intn(5) + 1),
				"price":          fmt.Sprintf("%d.%02d", rand.Intn(100)+1, rand.Intn(100)),
				"total_discount": "0.00",
			})
		}
		return "orders/paid", map[string]any{"id": orderID, "line_items": items}

	case n < 9:
		return "refunds/create", map[string]any{
			"order_id": orderID,
			"refund_line_items": []map[string]any{
				{"line_item_id": orderID * 100, "quantity": int64(1)},
			},
		}

	default:
		return "orders/cancelled", map[string]any{"id": orderID}
	}
}

func main() {
	target := flag.String("target", "http://localhost:8081", "base URL of the battletally service")
	secret := flag.String("secret", os.Getenv("SHOPIFY_API_SECRET"), "webhook signing secret")
	shop := flag.String("shop", "demo.myshopify.com", "shop domain header value")
	rate := flag.Int("rate", 10, "requests per second")
	duration := flag.Duration("duration", 30*time.Second, "how long to run")
	flag.Parse()

	if *secret == "" {
		log.Fatal("signing secret required (flag -secret or SHOPIFY_API_SECRET)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	NewSpammer(*target, *secret, *shop).Run(ctx, *rate, *duration)
}
