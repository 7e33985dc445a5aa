// Package collector получает рыночные снапшоты цен из DexScreener.
package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"cryptoalpha/pkg/ratelimit"
	"cryptoalpha/pkg/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultBaseURL = "https://api.dexscreener.com"

// DexScreener лимитирует 300 запросов/мин на pair endpoints
const (
	dexRateLimit = 4.0
	dexRateBurst = 8.0
)

// PriceSnapshot - снапшот цен на момент опроса, ключ - тикер актива.
//
// Отсутствие актива в снапшоте означает "цены нет", а не "цена ноль":
// потребитель обязан проверять наличие ключа, не значение.
type PriceSnapshot map[string]float64

// Collector опрашивает DexScreener и строит снапшоты цен
type Collector struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.RateLimiter
	retryCfg   retry.Config
}

// New создает новый Collector
func New(baseURL string, timeout time.Duration) *Collector {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retryCfg := retry.ConservativeConfig()
	retryCfg.RetryIf = retry.RetryIfTransient

	return &Collector{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    ratelimit.NewRateLimiter(dexRateLimit, dexRateBurst),
		retryCfg:   retryCfg,
	}
}

// Snapshot опрашивает цены для набора активов.
//
// Активы, для которых цену получить не удалось, в снапшот не попадают.
// Ошибка возвращается только если не удалось получить ни одной цены
// при непустом списке активов.
func (c *Collector) Snapshot(ctx context.Context, assets []string) (PriceSnapshot, error) {
	snapshot := make(PriceSnapshot, len(assets))

	var lastErr error
	for _, asset := range assets {
		price, err := c.fetchPrice(ctx, asset)
		if err != nil {
			lastErr = err
			continue
		}
		if price > 0 {
			snapshot[asset] = price
		}
	}

	if len(snapshot) == 0 && len(assets) > 0 && lastErr != nil {
		return nil, fmt.Errorf("snapshot failed for all %d assets: %w", len(assets), lastErr)
	}

	return snapshot, nil
}

// fetchPrice получает цену одного актива через поиск пар.
// Берется пара с наибольшей ликвидностью против USDT/USDC.
func (c *Collector) fetchPrice(ctx context.Context, asset string) (float64, error) {
	return retry.DoWithResult(ctx, func() (float64, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, err
		}

		reqURL := c.baseURL + "/latest/dex/search?q=" + strings.ToUpper(asset)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return 0, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, err
		}

		if resp.StatusCode != http.StatusOK {
			return 0, fmt.Errorf("dexscreener HTTP %d: %s", resp.StatusCode, string(body))
		}

		var result struct {
			Pairs []struct {
				BaseToken struct {
					Symbol string `json:"symbol"`
				} `json:"baseToken"`
				QuoteToken struct {
					Symbol string `json:"symbol"`
				} `json:"quoteToken"`
				PriceUsd  string `json:"priceUsd"`
				Liquidity struct {
					Usd float64 `json:"usd"`
				} `json:"liquidity"`
			} `json:"pairs"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return 0, err
		}

		var bestPrice, bestLiquidity float64
		target := strings.ToUpper(asset)
		for _, pair := range result.Pairs {
			if strings.ToUpper(pair.BaseToken.Symbol) != target {
				continue
			}
			quote := strings.ToUpper(pair.QuoteToken.Symbol)
			if quote != "USDT" && quote != "USDC" {
				continue
			}

			price, err := strconv.ParseFloat(pair.PriceUsd, 64)
			if err != nil || price <= 0 {
				continue
			}

			if pair.Liquidity.Usd > bestLiquidity {
				bestLiquidity = pair.Liquidity.Usd
				bestPrice = price
			}
		}

		if bestPrice == 0 {
			// Пары нет - это не сбой сети, ретраить бессмысленно
			return 0, retry.Permanent(fmt.Errorf("no usable pair for %s", asset))
		}

		return bestPrice, nil
	}, c.retryCfg)
}
