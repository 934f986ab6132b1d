package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sweetsavoury/battletally/internal/config"
	"github.com/sweetsavoury/battletally/internal/domain"
)

var ErrNoToken = errors.New("no access token for shop")

// TokenSource resolves the opaque Admin API credential for a shop. The OAuth
// install flow that mints tokens is a separate service; here they arrive via
// configuration.
type TokenSource interface {
	Token(shopDomain string) (string, error)
}

type StaticTokens map[string]string

func (t StaticTokens) Token(shopDomain string) (string, error) {
	tok, ok := t[shopDomain]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoToken, shopDomain)
	}
	return tok, nil
}

// Client is a minimal Admin API client covering the two product lookups the
// classifier needs.
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	apiVersion string
	logger     *zap.Logger
}

func NewClient(cfg config.Shopify, tokens TokenSource, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		apiVersion: cfg.APIVersion,
		logger:     logger,
	}
}

type metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

type metafieldsResponse struct {
	Metafields []metafield `json:"metafields"`
}

type productResponse struct {
	Product struct {
		Tags string `json:"tags"`
	} `json:"product"`
}

// ProductSide resolves a product's battle side from the shop's catalog.
// The battle.side metafield wins over tags; tags are matched
// case-insensitively against the side names. SideNone means the merchant has
// not assigned the product yet.
func (c *Client) ProductSide(ctx context.Context, shopDomain string, productID int64) (domain.Side, error) {
	var mf metafieldsResponse
	url := fmt.Sprintf("https://%s/admin/api/%s/products/%d/metafields.json", shopDomain, c.apiVersion, productID)
	if err := c.getJSON(ctx, shopDomain, url, &mf); err != nil {
		return domain.SideNone, fmt.Errorf("fetch metafields for product %d: %w", productID, err)
	}
	for _, m := range mf.Metafields {
		if m.Namespace == "battle" && m.Key == "side" {
			if side := domain.ParseSide(m.Value); side != domain.SideNone {
				return side, nil
			}
			c.logger.Warn("unrecognized battle.side metafield value",
				zap.String("shop", shopDomain),
				zap.Int64("product_id", productID),
				zap.String("value", m.Value),
			)
		}
	}

	var pr productResponse
	url = fmt.Sprintf("https://%s/admin/api/%s/products/%d.json", shopDomain, c.apiVersion, productID)
	if err := c.getJSON(ctx, shopDomain, url, &pr); err != nil {
		return domain.SideNone, fmt.Errorf("fetch product %d: %w", productID, err)
	}
	for _, tag := range strings.Split(pr.Product.Tags, ",") {
		if side := domain.ParseSide(strings.TrimSpace(tag)); side != domain.SideNone {
			return side, nil
		}
	}
	return domain.SideNone, nil
}

func (c *Client) getJSON(ctx context.Context, shopDomain, url string, out any) error {
	token, err := c.tokens.Token(shopDomain)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("shopify api call",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("shopify api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
