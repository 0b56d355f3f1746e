package collector

import (
	"errors"
	"fmt"
	"log"
	"time"

	"UpbitSentinel/internal/model"
)

const (
	maxFetchAttempts = 3
	retryPause       = time.Second

	// Reject near-zero mean close prices (delisted or broken listings).
	priceSanityFloor = 1.0
)

// ErrInsufficientHistory marks a series too short for the indicator warm-up.
var ErrInsufficientHistory = errors.New("insufficient price history")

// Collector fetches and validates daily candle series for analysis.
type Collector struct {
	Fetcher Fetcher
	MinBars int
}

// NewCollector creates a Collector requiring at least minBars valid bars.
func NewCollector(fetcher Fetcher, minBars int) *Collector {
	return &Collector{Fetcher: fetcher, MinBars: minBars}
}

// FetchValidated pulls a candle series with bounded retries and rejects
// malformed or undersized data. Transient failures are retried up to
// maxFetchAttempts with a fixed pause; the final error is returned for
// the caller to log and skip.
func (c *Collector) FetchValidated(symbol string, count int) ([]model.OHLCV, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(retryPause)
		}
		bars, err := c.Fetcher.FetchDailyBars(symbol, count)
		if err != nil {
			lastErr = err
			log.Printf("[WARN] fetch %s (attempt %d/%d): %v", symbol, attempt, maxFetchAttempts, err)
			continue
		}
		if err := c.Validate(bars); err != nil {
			lastErr = err
			log.Printf("[WARN] validate %s (attempt %d/%d): %v", symbol, attempt, maxFetchAttempts, err)
			continue
		}
		return bars, nil
	}
	return nil, fmt.Errorf("fetch %s after %d attempts: %w", symbol, maxFetchAttempts, lastErr)
}

// Validate checks that a series is long enough, well-formed bar by bar,
// chronologically ordered, and priced above the sanity floor.
func (c *Collector) Validate(bars []model.OHLCV) error {
	if len(bars) < c.MinBars {
		return fmt.Errorf("%w: %d bars, need %d", ErrInsufficientHistory, len(bars), c.MinBars)
	}

	var closeSum float64
	for i, b := range bars {
		if b.High < b.Low || b.High <= 0 || b.Low <= 0 || b.Open <= 0 || b.Close <= 0 {
			return fmt.Errorf("malformed bar at index %d (O=%g H=%g L=%g C=%g)", i, b.Open, b.High, b.Low, b.Close)
		}
		if b.Volume < 0 {
			return fmt.Errorf("negative volume at index %d", i)
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return fmt.Errorf("timestamps not strictly ascending at index %d", i)
		}
		closeSum += b.Close
	}

	if closeSum/float64(len(bars)) < priceSanityFloor {
		return fmt.Errorf("mean close below sanity floor %.1f", priceSanityFloor)
	}
	return nil
}
