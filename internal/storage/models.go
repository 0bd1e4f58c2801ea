package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// RSISample records one evaluated candle close for a pair/timeframe. The
// monitor only ever writes samples; alert decisions never read them back.
type RSISample struct {
	Pair      string
	Timeframe string
	CloseTS   time.Time
	RSI       float64
	Price     decimal.Decimal
	Zone      string
	CreatedAt time.Time
}

// AlertRecord captures a dispatched alert for auditing.
type AlertRecord struct {
	ID        int64
	Pair      string
	Timeframe string
	CloseTS   time.Time
	RSI       float64
	Price     decimal.Decimal
	Zone      string
	CreatedAt time.Time
}
