package notifier

import (
	"strings"
	"testing"
	"time"

	"UpbitSentinel/internal/model"
)

func sampleAnalysis() *model.Analysis {
	return &model.Analysis{
		Instrument: model.Instrument{Symbol: "KRW-BTC", Name: "Bitcoin"},
		Row: model.IndicatorRow{
			Close:       52000000,
			UpperBand:   51000000,
			LowerBand:   48000000,
			BBPosition:  1.33,
			RSI:         62.5,
			VolumeRatio: 1.8,
			Squeeze:     false,
			Defined:     true,
		},
		Breakout:  true,
		Signals:   model.SignalSet{Buy: true},
		Timestamp: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestFormatAlert(t *testing.T) {
	a := sampleAnalysis()
	for _, kind := range []model.SignalKind{model.SignalBuy, model.SignalSell50, model.SignalSellAll} {
		text := FormatAlert(a, kind)
		if !strings.Contains(text, "Bitcoin") || !strings.Contains(text, "KRW-BTC") {
			t.Errorf("%s alert must name the coin:\n%s", kind, text)
		}
		if !strings.Contains(text, "52,000,000") {
			t.Errorf("%s alert must show the grouped price:\n%s", kind, text)
		}
	}
	if !strings.Contains(FormatAlert(a, model.SignalBuy), "upward") {
		t.Error("breakout above mid-band must be labeled upward")
	}
}

func TestFormatAnalysis(t *testing.T) {
	text := FormatAnalysis(sampleAnalysis(), 70)
	for _, want := range []string{"KRW-BTC", "Bitcoin", "62.5", "BUY"} {
		if !strings.Contains(text, want) {
			t.Errorf("analysis reply missing %q:\n%s", want, text)
		}
	}
}

func TestFormatStatus_ReflectsState(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stats := model.MonitorStats{
		Running:       true,
		StartTime:     now.Add(-90 * time.Minute),
		ScanCount:     18,
		SignalsSent:   3,
		WatchlistSize: 20,
		ScanInterval:  5 * time.Minute,
	}
	text := FormatStatus(stats, now)
	if !strings.Contains(text, "running") {
		t.Error("status must report the running state")
	}
	if !strings.Contains(text, "1:30:00") {
		t.Errorf("status must report the uptime:\n%s", text)
	}

	stats.Running = false
	if !strings.Contains(FormatStatus(stats, now), "stopped") {
		t.Error("status must report the stopped state")
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in      string
		command string
		args    []string
		ok      bool
	}{
		{"/status", "status", nil, true},
		{"/TICKER BTC", "ticker", []string{"BTC"}, true},
		{"/ticker@UpbitBot eth", "ticker", []string{"eth"}, true},
		{"  /start  ", "start", nil, true},
		{"hello", "", nil, false},
		{"/", "", nil, false},
		{"", "", nil, false},
	}
	for _, tt := range tests {
		command, args, ok := parseCommand(tt.in)
		if ok != tt.ok || command != tt.command {
			t.Errorf("parseCommand(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.in, command, args, ok, tt.command, tt.args, tt.ok)
			continue
		}
		if len(args) != len(tt.args) {
			t.Errorf("parseCommand(%q) args = %v, want %v", tt.in, args, tt.args)
			continue
		}
		for i := range args {
			if args[i] != tt.args[i] {
				t.Errorf("parseCommand(%q) args = %v, want %v", tt.in, args, tt.args)
				break
			}
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{52000000, "52,000,000"},
		{1234567.8, "1,234,568"},
	}
	for _, tt := range tests {
		if got := formatPrice(tt.in); got != tt.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSignalAge(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		last time.Time
		want string
	}{
		{time.Time{}, "none"},
		{now.Add(-30 * time.Second), "within the last minute"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-49 * time.Hour), "2 days ago"},
	}
	for _, tt := range tests {
		if got := formatSignalAge(tt.last, now); got != tt.want {
			t.Errorf("formatSignalAge(%v) = %q, want %q", tt.last, got, tt.want)
		}
	}
}
