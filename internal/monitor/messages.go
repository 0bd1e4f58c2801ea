package monitor

import (
	"fmt"
	"strings"
	"time"

	"forex-rsi-alerts/internal/market"
)

func (m *Monitor) startupMessage(now time.Time) string {
	local := now.In(m.window.Location)

	builder := strings.Builder{}
	builder.WriteString("[RSI Monitor Started]\n")
	builder.WriteString(fmt.Sprintf("Watching %d pairs on %d timeframes\n", len(m.pairs), len(market.Timeframes)))
	builder.WriteString(fmt.Sprintf("RSI(%d): oversold <= %.0f, overbought >= %.0f\n", m.period, m.oversold, m.overbought))
	builder.WriteString(fmt.Sprintf("Quiet window: %02d:00-%02d:00 %s\n", m.window.Start, m.window.End, m.window.Location))
	builder.WriteString(fmt.Sprintf("Local time: %s", local.Format("02/01/2006 15:04")))
	return builder.String()
}

func (m *Monitor) sleepMessage(now time.Time) string {
	local := now.In(m.window.Location)
	wake := m.window.WakeTime(now)

	builder := strings.Builder{}
	builder.WriteString("[Quiet Window]\n")
	builder.WriteString(fmt.Sprintf("Pausing at %s\n", local.Format("02/01/2006 15:04")))
	builder.WriteString(fmt.Sprintf("Resuming at %s", wake.Format("02/01/2006 15:04")))
	return builder.String()
}

func (m *Monitor) wakeMessage(now time.Time) string {
	local := now.In(m.window.Location)

	builder := strings.Builder{}
	builder.WriteString("[Monitoring Resumed]\n")
	builder.WriteString(fmt.Sprintf("Back at %s\n", local.Format("02/01/2006 15:04")))
	builder.WriteString(fmt.Sprintf("Watching %d pairs on 1h & 4h candles", len(m.pairs)))
	return builder.String()
}
