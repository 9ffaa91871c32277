package models

import "time"

// RealTimeQuote holds a live price quote for a ticker
type RealTimeQuote struct {
	Code          string    `json:"code"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`          // current/last price
	PreviousClose float64   `json:"previous_close"` // previous day's close
	Change        float64   `json:"change"`         // absolute change from previous close
	ChangePct     float64   `json:"change_p"`       // percentage change from previous close
	Volume        int64     `json:"volume"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source,omitempty"`
}

// FeedEventType identifies what changed in a valuation feed event.
type FeedEventType string

const (
	FeedBasketCreated   FeedEventType = "basket_created"
	FeedBasketRefreshed FeedEventType = "basket_refreshed"
	FeedBasketExited    FeedEventType = "basket_exited"
	FeedBasketDeleted   FeedEventType = "basket_deleted"
	FeedPortfolio       FeedEventType = "portfolio"
)

// FeedEvent is pushed to WebSocket subscribers when valuations change.
type FeedEvent struct {
	Type      FeedEventType     `json:"type"`
	BasketID  string            `json:"basket_id,omitempty"`
	Valuation *BasketValuation  `json:"valuation,omitempty"`
	Summary   *PortfolioSummary `json:"summary,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
