package models

import "github.com/shopspring/decimal"

// SalesTotals is the count and revenue of sales inside one period.
type SalesTotals struct {
	Count   int64
	Revenue decimal.Decimal
}

// ShiftSales aggregates sales by time-of-day shift.
type ShiftSales struct {
	Shift   string  `json:"turno"`
	Sales   int64   `json:"vendas"`
	Revenue float64 `json:"faturamento"`
}

// ChannelSales aggregates sales by ordering channel (counter, delivery apps, ...).
type ChannelSales struct {
	Channel string  `json:"canal"`
	Sales   int64   `json:"vendas"`
	Revenue float64 `json:"faturamento"`
	Share   float64 `json:"percentual"`
}

// SeriesPoint is one bucket of a revenue time series.
type SeriesPoint struct {
	Bucket  string  `json:"bucket"`
	Revenue float64 `json:"faturamento"`
}

// SeasonalityPoint is one month-of-year or weekday bucket.
type SeasonalityPoint struct {
	Bucket  int     `json:"bucket"`
	Sales   int64   `json:"vendas"`
	Revenue float64 `json:"faturamento"`
}

// ProductRank is a product and how many times it was sold or removed.
type ProductRank struct {
	ProductID int64  `json:"produto_id"`
	Name      string `json:"nome"`
	Quantity  int64  `json:"quantidade"`
}

// ProductFilters narrows product rankings.
type ProductFilters struct {
	Search *string
	Limit  int
}

// MetricRequestParams holds the query parameters shared by every metric card.
type MetricRequestParams struct {
	Period string `form:"period"` // "mensal" or "anual"
	Year   string `form:"year"`   // number or "todos"
	Month  string `form:"month"`  // number or "todos"
}

// SalesCountResponse is the sales-count card.
type SalesCountResponse struct {
	SalesCount float64 `json:"quantidade_vendas"`
	Previous   float64 `json:"anterior"`
	Delta      float64 `json:"variacao"`
	Period     string  `json:"periodo"`
}

// RevenueResponse is the revenue card.
type RevenueResponse struct {
	Revenue  float64 `json:"faturamento"`
	Previous float64 `json:"anterior"`
	Delta    float64 `json:"variacao"`
	Period   string  `json:"periodo"`
}

// TicketAverageResponse is the average-ticket card.
type TicketAverageResponse struct {
	TicketAverage float64 `json:"ticket_medio"`
	Previous      float64 `json:"anterior"`
	Delta         float64 `json:"variacao"`
	Period        string  `json:"periodo"`
}

// DeliveryTimeResponse is the delivery-time card, in minutes.
type DeliveryTimeResponse struct {
	AverageMinutes float64 `json:"tempo_medio_entrega"`
	Previous       float64 `json:"anterior"`
	Delta          float64 `json:"variacao"`
	Period         string  `json:"periodo"`
}

// ShiftResponse is the sales-by-shift card.
type ShiftResponse struct {
	Shifts []ShiftSales `json:"turnos"`
	Period string       `json:"periodo"`
}

// ChannelResponse is the sales-by-channel card.
type ChannelResponse struct {
	Channels []ChannelSales `json:"canais"`
	Period   string         `json:"periodo"`
}

// GrowthTrendResponse is the growth-trend card.
type GrowthTrendResponse struct {
	Series   []SeriesPoint `json:"serie"`
	Revenue  float64       `json:"faturamento"`
	Previous float64       `json:"anterior"`
	Delta    float64       `json:"variacao"`
	Trend    string        `json:"tendencia"`
	Period   string        `json:"periodo"`
}

// DeviationResponse compares the period revenue with the historical average.
type DeviationResponse struct {
	Revenue           float64 `json:"faturamento"`
	HistoricalAverage float64 `json:"media_historica"`
	Deviation         float64 `json:"desvio"`
	Granularity       string  `json:"granularidade"`
	Period            string  `json:"periodo"`
}

// ProductRankingResponse is the top-product and most-removed-product card.
type ProductRankingResponse struct {
	Product  *string       `json:"produto"`
	Quantity int64         `json:"quantidade"`
	Products []ProductRank `json:"produtos"`
	Period   string        `json:"periodo"`
}

// SeasonalityResponse is the seasonality card.
type SeasonalityResponse struct {
	Points  []SeasonalityPoint `json:"sazonalidade"`
	GroupBy string             `json:"agrupamento"`
	Period  string             `json:"periodo"`
}
