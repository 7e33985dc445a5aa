package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"cryptoalpha/pkg/ratelimit"
	"cryptoalpha/pkg/retry"
	"cryptoalpha/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const mexcDefaultBaseURL = "https://api.mexc.com"

// Лимиты MEXC spot API: 20 запросов/сек на endpoint.
// Держимся заметно ниже, ядро не латентно-критичное.
const (
	mexcRateLimit = 10.0
	mexcRateBurst = 20.0
)

// MEXC реализует интерфейс Exchange для спотовой торговли на MEXC
type MEXC struct {
	apiKey    string
	secretKey string
	baseURL   string

	httpClient *http.Client
	limiter    *ratelimit.RateLimiter

	// Retry-политика для идемпотентных GET запросов.
	// Ордера не ретраятся на этом уровне: повтор POST /order может
	// привести к двойной покупке.
	readRetry retry.Config
}

// NewMEXC создает новый экземпляр клиента MEXC.
// Использует глобальный HTTP клиент с connection pooling.
func NewMEXC(apiKey, secretKey, baseURL string) *MEXC {
	if baseURL == "" {
		baseURL = mexcDefaultBaseURL
	}

	readRetry := retry.ConservativeConfig()
	readRetry.RetryIf = retry.RetryIfTransient

	return &MEXC{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: GetGlobalHTTPClient().GetClient(),
		limiter:    ratelimit.NewRateLimiter(mexcRateLimit, mexcRateBurst),
		readRetry:  readRetry,
	}
}

// GetName возвращает имя биржи
func (m *MEXC) GetName() string {
	return "mexc"
}

// sign создает HMAC SHA256 подпись строки запроса
func (m *MEXC) sign(queryString string) string {
	h := hmac.New(sha256.New, []byte(m.secretKey))
	h.Write([]byte(queryString))
	return hex.EncodeToString(h.Sum(nil))
}

// doRequest выполняет HTTP запрос к MEXC API.
//
// Для подписанных запросов к query string добавляются timestamp и
// signature. MEXC принимает параметры и для POST через query string.
func (m *MEXC) doRequest(ctx context.Context, method, endpoint string, params url.Values, signed bool) ([]byte, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if params == nil {
		params = url.Values{}
	}

	if signed {
		params.Set("timestamp", strconv.FormatInt(utils.UnixMillis(), 10))
		params.Set("signature", m.sign(params.Encode()))
	}

	reqURL := m.baseURL + endpoint
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if signed {
		req.Header.Set("X-MEXC-APIKEY", m.apiKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{
			Exchange: "mexc",
			Message:  "request failed: " + err.Error(),
			Original: err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExchangeError{
			Exchange: "mexc",
			Message:  "failed to read response: " + err.Error(),
			Original: err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, m.parseAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// parseAPIError извлекает код и сообщение ошибки из тела ответа MEXC
func (m *MEXC) parseAPIError(statusCode int, body []byte) error {
	var apiErr struct {
		Code interface{} `json:"code"`
		Msg  string      `json:"msg"`
	}

	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Msg == "" {
		return &ExchangeError{
			Exchange: "mexc",
			Code:     strconv.Itoa(statusCode),
			Message:  fmt.Sprintf("HTTP %d: %s", statusCode, string(body)),
		}
	}

	// Код приходит и числом, и строкой
	var code string
	switch v := apiErr.Code.(type) {
	case float64:
		code = strconv.Itoa(int(v))
	case string:
		code = v
	}

	return &ExchangeError{
		Exchange: "mexc",
		Code:     code,
		Message:  apiErr.Msg,
	}
}

// GetPrice получает текущую цену символа
func (m *MEXC) GetPrice(ctx context.Context, symbol string) (float64, error) {
	return retry.DoWithResult(ctx, func() (float64, error) {
		params := url.Values{}
		params.Set("symbol", symbol)

		body, err := m.doRequest(ctx, http.MethodGet, "/api/v3/ticker/price", params, false)
		if err != nil {
			return 0, err
		}

		var ticker struct {
			Symbol string `json:"symbol"`
			Price  string `json:"price"`
		}
		if err := json.Unmarshal(body, &ticker); err != nil {
			return 0, err
		}

		price, err := strconv.ParseFloat(ticker.Price, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q for %s: %w", ticker.Price, symbol, err)
		}
		return price, nil
	}, m.readRetry)
}

// GetSymbolInfo получает торговую информацию о символе.
// Возвращает ошибку с кодом 10007, если символ бирже неизвестен.
func (m *MEXC) GetSymbolInfo(ctx context.Context, symbol string) (*SymbolInfo, error) {
	return retry.DoWithResult(ctx, func() (*SymbolInfo, error) {
		params := url.Values{}
		params.Set("symbol", symbol)

		body, err := m.doRequest(ctx, http.MethodGet, "/api/v3/exchangeInfo", params, false)
		if err != nil {
			return nil, err
		}

		var info struct {
			Symbols []struct {
				Symbol  string `json:"symbol"`
				Status  string `json:"status"`
				Filters []struct {
					FilterType string `json:"filterType"`
					StepSize   string `json:"stepSize"`
				} `json:"filters"`
			} `json:"symbols"`
		}
		if err := json.Unmarshal(body, &info); err != nil {
			return nil, err
		}

		for _, s := range info.Symbols {
			if s.Symbol != symbol {
				continue
			}

			result := &SymbolInfo{
				Symbol:   s.Symbol,
				Status:   s.Status,
				StepSize: 1e-8,
			}
			for _, f := range s.Filters {
				if f.FilterType == "LOT_SIZE" {
					if step, err := strconv.ParseFloat(f.StepSize, 64); err == nil && step > 0 {
						result.StepSize = step
					}
					break
				}
			}
			return result, nil
		}

		return nil, retry.Permanent(&ExchangeError{
			Exchange: "mexc",
			Code:     ErrCodeUnsupportedSymbol,
			Message:  "symbol " + symbol + " not found in exchange info",
		})
	}, m.readRetry)
}

// PlaceMarketBuy размещает рыночный ордер на покупку на сумму
// quoteAmount в котируемой валюте (quoteOrderQty).
//
// Не ретраится: повтор рыночного ордера при неизвестном исходе
// первой попытки может купить дважды. Клиентский order id позволяет
// сверить исход вручную.
func (m *MEXC) PlaceMarketBuy(ctx context.Context, symbol string, quoteAmount float64) (*Order, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", SideBuy)
	params.Set("type", "MARKET")
	params.Set("quoteOrderQty", strconv.FormatFloat(quoteAmount, 'f', -1, 64))
	params.Set("newClientOrderId", newClientOrderID())

	return m.placeOrder(ctx, params)
}

// PlaceMarketSell размещает рыночный ордер на продажу quantity
// базового актива
func (m *MEXC) PlaceMarketSell(ctx context.Context, symbol string, quantity float64) (*Order, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", SideSell)
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(quantity, 'f', -1, 64))
	params.Set("newClientOrderId", newClientOrderID())

	return m.placeOrder(ctx, params)
}

// placeOrder отправляет ордер и разбирает ответ
func (m *MEXC) placeOrder(ctx context.Context, params url.Values) (*Order, error) {
	body, err := m.doRequest(ctx, http.MethodPost, "/api/v3/order", params, true)
	if err != nil {
		return nil, err
	}

	var resp struct {
		OrderID             interface{} `json:"orderId"`
		ClientOrderID       string      `json:"clientOrderId"`
		Symbol              string      `json:"symbol"`
		Side                string      `json:"side"`
		Type                string      `json:"type"`
		OrigQty             string      `json:"origQty"`
		ExecutedQty         string      `json:"executedQty"`
		CummulativeQuoteQty string      `json:"cummulativeQuoteQty"`
		Price               string      `json:"price"`
		Status              string      `json:"status"`
		TransactTime        int64       `json:"transactTime"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	if resp.OrderID == nil {
		return nil, &ExchangeError{
			Exchange: "mexc",
			Message:  "order response without orderId: " + string(body),
		}
	}

	order := &Order{
		ID:                 formatOrderID(resp.OrderID),
		ClientOrderID:      resp.ClientOrderID,
		Symbol:             resp.Symbol,
		Side:               resp.Side,
		Type:               resp.Type,
		Quantity:           parseFloatOrZero(resp.OrigQty),
		ExecutedQty:        parseFloatOrZero(resp.ExecutedQty),
		CumulativeQuoteQty: parseFloatOrZero(resp.CummulativeQuoteQty),
		Price:              parseFloatOrZero(resp.Price),
		Status:             resp.Status,
		CreatedAt:          utils.FromUnixMillis(resp.TransactTime),
	}
	if resp.TransactTime == 0 {
		order.CreatedAt = time.Now().UTC()
	}

	return order, nil
}

// GetBalance получает свободный баланс указанного актива
func (m *MEXC) GetBalance(ctx context.Context, asset string) (float64, error) {
	return retry.DoWithResult(ctx, func() (float64, error) {
		body, err := m.doRequest(ctx, http.MethodGet, "/api/v3/account", nil, true)
		if err != nil {
			return 0, err
		}

		var account struct {
			Balances []struct {
				Asset string `json:"asset"`
				Free  string `json:"free"`
			} `json:"balances"`
		}
		if err := json.Unmarshal(body, &account); err != nil {
			return 0, err
		}

		for _, b := range account.Balances {
			if b.Asset == asset {
				return parseFloatOrZero(b.Free), nil
			}
		}
		// Актива нет в списке - баланс нулевой
		return 0, nil
	}, m.readRetry)
}

// Close закрывает соединения с биржей
func (m *MEXC) Close() error {
	return nil
}

// newClientOrderID генерирует уникальный клиентский order id.
// Позволяет найти ордер на бирже, если ответ на POST потерялся.
func newClientOrderID() string {
	return "ca-" + uuid.NewString()
}

// formatOrderID приводит orderId к строке: MEXC возвращает его
// то числом, то строкой
func formatOrderID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func parseFloatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Проверка реализации интерфейса
var _ Exchange = (*MEXC)(nil)
