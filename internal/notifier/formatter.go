package notifier

import (
	"fmt"
	"strings"
	"time"

	"UpbitSentinel/internal/model"
)

// FormatAlert builds the notification body for one fired signal.
func FormatAlert(a *model.Analysis, kind model.SignalKind) string {
	name := a.Instrument.DisplayName()
	symbol := a.Instrument.Symbol
	row := a.Row
	ts := a.Timestamp.Format("2006-01-02 15:04:05")

	var b strings.Builder
	switch kind {
	case model.SignalBuy:
		direction := "downward"
		if row.BBPosition > 0.5 {
			direction = "upward"
		}
		b.WriteString("🚀 <b>Bollinger squeeze breakout!</b>\n\n")
		b.WriteString(fmt.Sprintf("Coin: <b>%s</b> (%s)\n", name, symbol))
		b.WriteString(fmt.Sprintf("Price: <b>%s KRW</b>\n", formatPrice(row.Close)))
		b.WriteString(fmt.Sprintf("Breakout direction: <b>%s</b>\n", direction))
		b.WriteString(fmt.Sprintf("RSI: <b>%.1f</b>\n", row.RSI))
		b.WriteString(fmt.Sprintf("BB position: <b>%.2f</b>\n", row.BBPosition))
		b.WriteString(fmt.Sprintf("Volume ratio: <b>%.1fx</b>\n", row.VolumeRatio))
		b.WriteString(fmt.Sprintf("Time: %s\n\n", ts))
		b.WriteString("⚡ Explosive move after volatility compression!")

	case model.SignalSell50:
		b.WriteString("💡 <b>Take-profit signal: sell 50%!</b>\n\n")
		b.WriteString(fmt.Sprintf("Coin: <b>%s</b> (%s)\n", name, symbol))
		b.WriteString(fmt.Sprintf("Price: <b>%s KRW</b>\n", formatPrice(row.Close)))
		b.WriteString(fmt.Sprintf("BB position: <b>%.2f</b> (near upper band)\n", row.BBPosition))
		b.WriteString(fmt.Sprintf("Time: %s\n\n", ts))
		b.WriteString("📈 First profit zone reached!")

	case model.SignalSellAll:
		reason := "lower band exit"
		if row.HasRSI() && row.RSI < 30 {
			reason = "oversold stop"
		}
		b.WriteString("🔴 <b>Sell-all signal!</b>\n\n")
		b.WriteString(fmt.Sprintf("Coin: <b>%s</b> (%s)\n", name, symbol))
		b.WriteString(fmt.Sprintf("Price: <b>%s KRW</b>\n", formatPrice(row.Close)))
		b.WriteString(fmt.Sprintf("Reason: <b>%s</b>\n", reason))
		b.WriteString(fmt.Sprintf("BB position: <b>%.2f</b>\n", row.BBPosition))
		b.WriteString(fmt.Sprintf("RSI: <b>%.1f</b>\n", row.RSI))
		b.WriteString(fmt.Sprintf("Time: %s\n\n", ts))
		b.WriteString("⚠️ Trend reversal or risk-management exit!")
	}
	return b.String()
}

// FormatAnalysis builds the one-shot /ticker reply.
func FormatAnalysis(a *model.Analysis, rsiOverbought float64) string {
	row := a.Row

	rsiStatus := "⚖️ neutral"
	switch {
	case row.HasRSI() && row.RSI >= rsiOverbought:
		rsiStatus = "🔥 overbought"
	case row.HasRSI() && row.RSI <= 30:
		rsiStatus = "❄️ oversold"
	}

	bbStatus := "🟡 mid-band"
	switch {
	case row.HasBBPosition() && row.BBPosition >= 0.8:
		bbStatus = "🔴 upper band"
	case row.HasBBPosition() && row.BBPosition <= 0.2:
		bbStatus = "🟢 lower band"
	}

	var active []string
	if a.Signals.Buy {
		active = append(active, "🚀 BUY")
	}
	if a.Signals.Sell50 {
		active = append(active, "💡 SELL 50%")
	}
	if a.Signals.SellAll {
		active = append(active, "🔴 SELL ALL")
	}
	signalText := "📊 no signals"
	if len(active) > 0 {
		signalText = strings.Join(active, " | ")
	}

	onOff := func(v bool) string {
		if v {
			return "✅ active"
		}
		return "❌ inactive"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Analysis: %s</b> (%s)\n\n", a.Instrument.DisplayName(), a.Instrument.Symbol))
	b.WriteString(fmt.Sprintf("💰 <b>Price:</b> %s KRW\n", formatPrice(row.Close)))
	b.WriteString(fmt.Sprintf("📊 <b>RSI:</b> %.1f (%s)\n", row.RSI, rsiStatus))
	b.WriteString(fmt.Sprintf("📍 <b>BB position:</b> %.2f (%s)\n", row.BBPosition, bbStatus))
	b.WriteString(fmt.Sprintf("🔥 <b>Volatility squeeze:</b> %s\n", onOff(row.Squeeze)))
	b.WriteString(fmt.Sprintf("⚡ <b>Breakout:</b> %s\n", onOff(a.Breakout)))
	b.WriteString(fmt.Sprintf("📊 <b>Volume:</b> %.1fx\n\n", row.VolumeRatio))
	b.WriteString(fmt.Sprintf("🎯 <b>Signals:</b> %s\n\n", signalText))
	b.WriteString(fmt.Sprintf("⏰ <b>Analyzed:</b> %s\n\n", a.Timestamp.Format("2006-01-02 15:04:05")))
	b.WriteString("💡 <b>Bollinger squeeze strategy:</b>\n")
	b.WriteString("• Buy on band breakout after volatility compression\n")
	b.WriteString("• Take 50% profit near the upper band\n")
	b.WriteString("• Sell all near the lower band or RSI &lt; 30")
	return b.String()
}

// FormatHeartbeat builds the hourly liveness notification.
func FormatHeartbeat(stats model.MonitorStats, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>Heartbeat - monitor running</b>\n\n", timeEmoji(now)))
	b.WriteString(fmt.Sprintf("🕐 Time: %s\n", now.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("⏱️ Uptime: %s\n\n", formatDuration(stats.Uptime(now))))
	b.WriteString("📊 <b>Statistics:</b>\n")
	b.WriteString(fmt.Sprintf("   🔍 Scans: %d\n", stats.ScanCount))
	b.WriteString(fmt.Sprintf("   📱 Alerts sent: %d\n", stats.SignalsSent))
	b.WriteString(fmt.Sprintf("   📈 Watched coins: %d\n", stats.WatchlistSize))
	b.WriteString(fmt.Sprintf("   ⏰ Scan interval: %s\n\n", formatDuration(stats.ScanInterval)))
	b.WriteString("🎯 <b>Recent activity:</b>\n")
	b.WriteString(fmt.Sprintf("   Last signal: %s\n", formatSignalAge(stats.LastSignalTime, now)))
	b.WriteString(fmt.Sprintf("   Alert records: %d\n\n", stats.AlertRecords))
	b.WriteString("✅ <b>Status:</b> all systems operating normally")
	return b.String()
}

// FormatStatus builds the /status reply.
func FormatStatus(stats model.MonitorStats, now time.Time) string {
	state := "🔴 stopped"
	if stats.Running {
		state = "🟢 running"
	}

	var b strings.Builder
	b.WriteString("📊 <b>Monitoring status</b>\n\n")
	b.WriteString(fmt.Sprintf("🔄 State: %s\n", state))
	b.WriteString(fmt.Sprintf("⏱️ Uptime: %s\n", formatDuration(stats.Uptime(now))))
	b.WriteString(fmt.Sprintf("🕐 Time: %s\n\n", now.Format("2006-01-02 15:04:05")))
	b.WriteString("📈 <b>Statistics:</b>\n")
	b.WriteString(fmt.Sprintf("   🔍 Scans: %d\n", stats.ScanCount))
	b.WriteString(fmt.Sprintf("   📱 Alerts sent: %d\n", stats.SignalsSent))
	b.WriteString(fmt.Sprintf("   📊 Watched coins: %d\n", stats.WatchlistSize))
	b.WriteString(fmt.Sprintf("   ⏰ Scan interval: %s\n", formatDuration(stats.ScanInterval)))
	b.WriteString(fmt.Sprintf("   🎯 Last signal: %s\n\n", formatSignalAge(stats.LastSignalTime, now)))
	b.WriteString("💡 <b>Commands:</b>\n")
	b.WriteString("   /ticker &lt;symbol&gt; - analyze a coin\n")
	b.WriteString("   /status - show this status\n")
	b.WriteString("   /start - help")
	return b.String()
}

// FormatSummary builds the every-5th-scan status summary.
func FormatSummary(stats model.MonitorStats, now time.Time) string {
	var b strings.Builder
	b.WriteString("📊 <b>Monitoring summary</b>\n\n")
	b.WriteString(fmt.Sprintf("🔢 Scans completed: %d\n", stats.ScanCount))
	b.WriteString(fmt.Sprintf("⏰ Time: %s\n", now.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("🕐 Uptime: %s\n", formatDuration(stats.Uptime(now))))
	b.WriteString(fmt.Sprintf("📈 Watched coins: %d\n", stats.WatchlistSize))
	b.WriteString(fmt.Sprintf("🎯 Alerts sent: %d\n\n", stats.SignalsSent))
	b.WriteString("✅ System operating normally")
	return b.String()
}

// FormatStartup builds the monitoring-started notification.
func FormatStartup(stats model.MonitorStats, now time.Time) string {
	var b strings.Builder
	b.WriteString("🤖 <b>Upbit monitoring started</b>\n\n")
	b.WriteString(fmt.Sprintf("📊 Watched coins: %d (Upbit KRW market)\n", stats.WatchlistSize))
	b.WriteString(fmt.Sprintf("⏰ Scan interval: %s\n", formatDuration(stats.ScanInterval)))
	b.WriteString("💓 Heartbeat: hourly\n")
	b.WriteString(fmt.Sprintf("🕐 Started: %s\n\n", now.Format("2006-01-02 15:04:05")))
	b.WriteString("🎯 Volatility Bollinger strategy active\n")
	b.WriteString("⚡ Signal alerts are delivered immediately\n\n")
	b.WriteString("📱 <b>Commands:</b>\n")
	b.WriteString("• /ticker &lt;symbol&gt; - analyze a coin\n")
	b.WriteString("• /status - monitoring status\n")
	b.WriteString("• /start - help\n\n")
	b.WriteString("💡 <b>Example:</b> /ticker BTC")
	return b.String()
}

// FormatShutdown builds the monitoring-stopped notification.
func FormatShutdown(stats model.MonitorStats, now time.Time) string {
	var b strings.Builder
	b.WriteString("⏹️ <b>Upbit monitoring stopped</b>\n\n")
	b.WriteString(fmt.Sprintf("🕐 Stopped: %s\n", now.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("⏱️ Total uptime: %s\n", formatDuration(stats.Uptime(now))))
	b.WriteString(fmt.Sprintf("🔢 Total scans: %d\n", stats.ScanCount))
	b.WriteString(fmt.Sprintf("🎯 Total alerts: %d\n\n", stats.SignalsSent))
	b.WriteString("✅ Monitoring shut down cleanly.")
	return b.String()
}

// FormatHelp builds the /start reply.
func FormatHelp(stats model.MonitorStats) string {
	state := "🔴 stopped"
	if stats.Running {
		state = "🟢 running"
	}
	var b strings.Builder
	b.WriteString("🤖 <b>Upbit Volatility Bollinger Bot</b>\n\n")
	b.WriteString("📊 Available commands:\n")
	b.WriteString("• /ticker &lt;symbol&gt; - analyze a coin (e.g. /ticker BTC)\n")
	b.WriteString("• /status - monitoring status\n")
	b.WriteString("• /start - this help\n\n")
	b.WriteString(fmt.Sprintf("🔍 Monitoring: %s\n", state))
	b.WriteString(fmt.Sprintf("📈 Watched coins: %d\n", stats.WatchlistSize))
	b.WriteString(fmt.Sprintf("📱 Alerts sent: %d\n\n", stats.SignalsSent))
	b.WriteString("💡 <b>Example:</b> /ticker BTC or /ticker eth")
	return b.String()
}

func formatPrice(p float64) string {
	s := fmt.Sprintf("%.0f", p)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

func formatSignalAge(last, now time.Time) string {
	if last.IsZero() {
		return "none"
	}
	diff := now.Sub(last)
	switch {
	case diff >= 24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours())/24)
	case diff >= time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	case diff >= time.Minute:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	default:
		return "within the last minute"
	}
}

func timeEmoji(now time.Time) string {
	switch h := now.Hour(); {
	case h >= 6 && h < 12:
		return "🌅"
	case h >= 12 && h < 18:
		return "☀️"
	case h >= 18 && h < 22:
		return "🌆"
	default:
		return "🌙"
	}
}
