package collector

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"

	"UpbitSentinel/internal/model"
)

// UpbitFetcher implements Fetcher against the Upbit REST API. The daily
// candle endpoint is public; when a credential pair is configured the
// request carries a signed JWT, which lifts the public rate limit.
type UpbitFetcher struct {
	BaseURL   string
	AccessKey string
	SecretKey string
	Client    *http.Client
}

// NewUpbitFetcher creates a fetcher with optional credentials and proxy.
func NewUpbitFetcher(baseURL, accessKey, secretKey, proxyURL string) *UpbitFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = "https://api.upbit.com"
	}
	return &UpbitFetcher{
		BaseURL:   baseURL,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *UpbitFetcher) Name() string {
	if f.AccessKey != "" {
		return "upbit (authenticated)"
	}
	return "upbit (public)"
}

// upbitCandle is the JSON shape of one Upbit daily candle.
type upbitCandle struct {
	Market        string  `json:"market"`
	CandleTimeUTC string  `json:"candle_date_time_utc"`
	Opening       float64 `json:"opening_price"`
	High          float64 `json:"high_price"`
	Low           float64 `json:"low_price"`
	Trade         float64 `json:"trade_price"`
	Timestamp     int64   `json:"timestamp"`
	AccVolume     float64 `json:"candle_acc_trade_volume"`
}

// FetchDailyBars pulls up to count daily candles, oldest first. Upbit
// caps a single request at 200 candles, so longer series are paged
// backwards via the `to` cursor.
func (f *UpbitFetcher) FetchDailyBars(symbol string, count int) ([]model.OHLCV, error) {
	const pageSize = 200

	var all []upbitCandle
	var cursor string
	for len(all) < count {
		n := count - len(all)
		if n > pageSize {
			n = pageSize
		}
		page, err := f.fetchCandlePage(symbol, n, cursor)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		// Pages come newest first; the oldest candle anchors the next cursor.
		cursor = page[len(page)-1].CandleTimeUTC
		if len(page) < n {
			break
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("upbit: no candles returned for %s", symbol)
	}

	bars := make([]model.OHLCV, len(all))
	for i, c := range all {
		bars[i] = model.OHLCV{
			Time:   time.UnixMilli(c.Timestamp),
			Open:   c.Opening,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Trade,
			Volume: c.AccVolume,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (f *UpbitFetcher) fetchCandlePage(symbol string, count int, to string) ([]upbitCandle, error) {
	endpoint := fmt.Sprintf("%s/v1/candles/days?market=%s&count=%d",
		f.BaseURL, url.QueryEscape(symbol), count)
	if to != "" {
		endpoint += "&to=" + url.QueryEscape(to)
	}

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.AccessKey != "" && f.SecretKey != "" {
		token, err := f.authToken()
		if err != nil {
			return nil, fmt.Errorf("build auth token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch candles: status %d, body: %s", resp.StatusCode, string(body))
	}

	var candles []upbitCandle
	if err := json.NewDecoder(resp.Body).Decode(&candles); err != nil {
		return nil, fmt.Errorf("decode candles: %w", err)
	}
	return candles, nil
}

// authToken builds the HS256 JWT Upbit expects for authenticated calls:
// header.payload signed with the secret key, payload carrying the access
// key and a UUID nonce.
func (f *UpbitFetcher) authToken() (string, error) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	payload, err := json.Marshal(map[string]string{
		"access_key": f.AccessKey,
		"nonce":      uuid.NewString(),
	})
	if err != nil {
		return "", err
	}
	body := header + "." + base64.RawURLEncoding.EncodeToString(payload)

	mac := hmac.New(sha256.New, []byte(f.SecretKey))
	mac.Write([]byte(body))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return body + "." + sig, nil
}
