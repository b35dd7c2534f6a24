package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"restaurant_analytics/internal/cache"
	"restaurant_analytics/internal/models"
	"restaurant_analytics/internal/repositories"
	"restaurant_analytics/pkg/datefilter"
	"restaurant_analytics/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultProductLimit = 5
	MaxProductLimit     = 50
)

// Shift names in display order.
var shiftOrder = []string{"madrugada", "manha", "tarde", "noite"}

// Trend labels for the growth-trend card.
const (
	TrendUp     = "alta"
	TrendDown   = "queda"
	TrendStable = "estavel"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "analytics_metric_cache_lookups_total",
	Help: "Metric card cache lookups by card and result.",
}, []string{"metric", "result"})

// MetricsCache is the read-through cache used for metric cards.
type MetricsCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// MetricsService computes the dashboard cards for one restaurant and period.
type MetricsService interface {
	SalesCount(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.SalesCountResponse, error)
	Revenue(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.RevenueResponse, error)
	TicketAverage(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.TicketAverageResponse, error)
	SalesByShift(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.ShiftResponse, error)
	SalesByChannel(ctx context.Context, restaurantID int64, sel datefilter.Selector, channels []string) (*models.ChannelResponse, error)
	GrowthTrend(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.GrowthTrendResponse, error)
	Deviation(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.DeviationResponse, error)
	TopProduct(ctx context.Context, restaurantID int64, sel datefilter.Selector, filters models.ProductFilters) (*models.ProductRankingResponse, error)
	MostRemovedProduct(ctx context.Context, restaurantID int64, sel datefilter.Selector, filters models.ProductFilters) (*models.ProductRankingResponse, error)
	DeliveryTime(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.DeliveryTimeResponse, error)
	Seasonality(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.SeasonalityResponse, error)
}

type metricsService struct {
	repo     repositories.MetricsRepository
	cache    MetricsCache // nil disables caching
	cacheTTL time.Duration
}

// NewMetricsService creates a new instance of MetricsService. c may be nil.
func NewMetricsService(repo repositories.MetricsRepository, c MetricsCache, cacheTTL time.Duration) MetricsService {
	return &metricsService{repo: repo, cache: c, cacheTTL: cacheTTL}
}

// cached runs load unless a fresh value for key is in the cache. Cache failures only log.
func cached[T any](ctx context.Context, s *metricsService, metric string, key string, load func() (*T, error)) (*T, error) {
	if s.cache == nil {
		return load()
	}

	var hit T
	ok, err := s.cache.Get(ctx, key, &hit)
	if err != nil {
		utils.LogError(err, "Metric cache read failed", map[string]interface{}{"key": key})
	}
	if ok {
		cacheLookups.WithLabelValues(metric, "hit").Inc()
		return &hit, nil
	}
	cacheLookups.WithLabelValues(metric, "miss").Inc()

	value, err := load()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		utils.LogError(err, "Metric cache write failed", map[string]interface{}{"key": key})
	}
	return value, nil
}

// cacheKey identifies a card by its predicate. Label already folds every unrecognised period into one value.
func cacheKey(metric string, restaurantID int64, sel datefilter.Selector, extra ...string) string {
	parts := []string{metric, utils.Int64ToStr(restaurantID), sel.Label()}
	return cache.Key(append(parts, extra...)...)
}

// compareTotals loads the current and previous period totals in parallel.
func (s *metricsService) compareTotals(ctx context.Context, restaurantID int64, sel datefilter.Selector) (current, previous models.SalesTotals, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.repo.SalesTotals(gctx, restaurantID, sel.Filter)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.repo.SalesTotals(gctx, restaurantID, sel.PreviousFilter)
		return err
	})
	err = g.Wait()
	return current, previous, err
}

func (s *metricsService) SalesCount(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.SalesCountResponse, error) {
	return cached(ctx, s, "sales_count", cacheKey("sales_count", restaurantID, sel), func() (*models.SalesCountResponse, error) {
		current, previous, err := s.compareTotals(ctx, restaurantID, sel)
		if err != nil {
			return nil, fmt.Errorf("sales count: %w", err)
		}
		cmp := datefilter.Compare(float64(current.Count), float64(previous.Count), datefilter.HigherIsBetter)
		return &models.SalesCountResponse{
			SalesCount: cmp.Current,
			Previous:   cmp.Previous,
			Delta:      datefilter.Round1(cmp.PercentDelta),
			Period:     sel.Label(),
		}, nil
	})
}

func (s *metricsService) Revenue(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.RevenueResponse, error) {
	return cached(ctx, s, "revenue", cacheKey("revenue", restaurantID, sel), func() (*models.RevenueResponse, error) {
		current, previous, err := s.compareTotals(ctx, restaurantID, sel)
		if err != nil {
			return nil, fmt.Errorf("revenue: %w", err)
		}
		cmp := datefilter.Compare(current.Revenue.InexactFloat64(), previous.Revenue.InexactFloat64(), datefilter.HigherIsBetter)
		return &models.RevenueResponse{
			Revenue:  money(current.Revenue),
			Previous: money(previous.Revenue),
			Delta:    datefilter.Round1(cmp.PercentDelta),
			Period:   sel.Label(),
		}, nil
	})
}

// ticketAverage is revenue per sale, zero when there were no sales.
func ticketAverage(t models.SalesTotals) decimal.Decimal {
	if t.Count == 0 {
		return decimal.Zero
	}
	return t.Revenue.DivRound(decimal.NewFromInt(t.Count), 2)
}

func (s *metricsService) TicketAverage(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.TicketAverageResponse, error) {
	return cached(ctx, s, "ticket_average", cacheKey("ticket_average", restaurantID, sel), func() (*models.TicketAverageResponse, error) {
		current, previous, err := s.compareTotals(ctx, restaurantID, sel)
		if err != nil {
			return nil, fmt.Errorf("ticket average: %w", err)
		}
		cur, prev := ticketAverage(current), ticketAverage(previous)
		cmp := datefilter.Compare(cur.InexactFloat64(), prev.InexactFloat64(), datefilter.HigherIsBetter)
		return &models.TicketAverageResponse{
			TicketAverage: money(cur),
			Previous:      money(prev),
			Delta:         datefilter.Round1(cmp.PercentDelta),
			Period:        sel.Label(),
		}, nil
	})
}

func (s *metricsService) SalesByShift(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.ShiftResponse, error) {
	return cached(ctx, s, "sales_by_shift", cacheKey("sales_by_shift", restaurantID, sel), func() (*models.ShiftResponse, error) {
		rows, err := s.repo.SalesByShift(ctx, restaurantID, sel.Filter)
		if err != nil {
			return nil, fmt.Errorf("sales by shift: %w", err)
		}
		byName := make(map[string]models.ShiftSales, len(rows))
		for _, r := range rows {
			byName[r.Shift] = r
		}
		shifts := make([]models.ShiftSales, 0, len(shiftOrder))
		for _, name := range shiftOrder {
			row, ok := byName[name]
			if !ok {
				row = models.ShiftSales{Shift: name}
			}
			shifts = append(shifts, row)
		}
		return &models.ShiftResponse{Shifts: shifts, Period: sel.Label()}, nil
	})
}

func (s *metricsService) SalesByChannel(ctx context.Context, restaurantID int64, sel datefilter.Selector, channels []string) (*models.ChannelResponse, error) {
	key := cacheKey("sales_by_channel", restaurantID, sel, strings.Join(channels, ","))
	return cached(ctx, s, "sales_by_channel", key, func() (*models.ChannelResponse, error) {
		rows, err := s.repo.SalesByChannel(ctx, restaurantID, sel.Filter, channels)
		if err != nil {
			return nil, fmt.Errorf("sales by channel: %w", err)
		}
		var total int64
		for _, r := range rows {
			total += r.Sales
		}
		for i := range rows {
			if total > 0 {
				rows[i].Share = datefilter.Round1(float64(rows[i].Sales) / float64(total) * 100)
			}
		}
		return &models.ChannelResponse{Channels: rows, Period: sel.Label()}, nil
	})
}

// seriesBucket is day granularity for a month-sized selection and month otherwise.
func seriesBucket(sel datefilter.Selector) string {
	if sel.HasMonth() || (!sel.HasYear() && sel.Period == datefilter.PeriodMonthly) {
		return repositories.BucketDay
	}
	return repositories.BucketMonth
}

func trendOf(delta float64) string {
	switch {
	case delta > 0:
		return TrendUp
	case delta < 0:
		return TrendDown
	default:
		return TrendStable
	}
}

func (s *metricsService) GrowthTrend(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.GrowthTrendResponse, error) {
	return cached(ctx, s, "growth_trend", cacheKey("growth_trend", restaurantID, sel), func() (*models.GrowthTrendResponse, error) {
		var (
			series            []models.SeriesPoint
			current, previous models.SalesTotals
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			series, err = s.repo.RevenueSeries(gctx, restaurantID, sel.Filter, seriesBucket(sel))
			return err
		})
		g.Go(func() error {
			var err error
			current, previous, err = s.compareTotals(gctx, restaurantID, sel)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("growth trend: %w", err)
		}

		cmp := datefilter.Compare(current.Revenue.InexactFloat64(), previous.Revenue.InexactFloat64(), datefilter.HigherIsBetter)
		delta := datefilter.Round1(cmp.PercentDelta)
		return &models.GrowthTrendResponse{
			Series:   series,
			Revenue:  money(current.Revenue),
			Previous: money(previous.Revenue),
			Delta:    delta,
			Trend:    trendOf(delta),
			Period:   sel.Label(),
		}, nil
	})
}

// deviationBucket is the granularity the historical average is computed over.
func deviationBucket(sel datefilter.Selector) string {
	if sel.HasMonth() || (!sel.HasYear() && sel.Period == datefilter.PeriodMonthly) {
		return repositories.BucketMonth
	}
	return repositories.BucketYear
}

func (s *metricsService) Deviation(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.DeviationResponse, error) {
	return cached(ctx, s, "deviation", cacheKey("deviation", restaurantID, sel), func() (*models.DeviationResponse, error) {
		bucket := deviationBucket(sel)
		var (
			current models.SalesTotals
			average decimal.Decimal
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			current, err = s.repo.SalesTotals(gctx, restaurantID, sel.Filter)
			return err
		})
		g.Go(func() error {
			var err error
			average, err = s.repo.HistoricalAverageRevenue(gctx, restaurantID, bucket)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("deviation: %w", err)
		}

		delta := datefilter.PercentDelta(current.Revenue.InexactFloat64(), average.InexactFloat64())
		return &models.DeviationResponse{
			Revenue:           money(current.Revenue),
			HistoricalAverage: money(average),
			Deviation:         datefilter.Round1(delta),
			Granularity:       bucket,
			Period:            sel.Label(),
		}, nil
	})
}

func normalizeProductFilters(filters models.ProductFilters) models.ProductFilters {
	if filters.Limit <= 0 {
		filters.Limit = DefaultProductLimit
	}
	if filters.Limit > MaxProductLimit {
		filters.Limit = MaxProductLimit
	}
	return filters
}

func productRanking(ranking []models.ProductRank, sel datefilter.Selector) *models.ProductRankingResponse {
	resp := &models.ProductRankingResponse{Products: ranking, Period: sel.Label()}
	if len(ranking) > 0 {
		name := ranking[0].Name
		resp.Product = &name
		resp.Quantity = ranking[0].Quantity
	}
	return resp
}

func productCacheKey(metric string, restaurantID int64, sel datefilter.Selector, filters models.ProductFilters) string {
	search := ""
	if filters.Search != nil {
		search = strings.ToLower(*filters.Search)
	}
	return cacheKey(metric, restaurantID, sel, search, strconv.Itoa(filters.Limit))
}

func (s *metricsService) TopProduct(ctx context.Context, restaurantID int64, sel datefilter.Selector, filters models.ProductFilters) (*models.ProductRankingResponse, error) {
	filters = normalizeProductFilters(filters)
	return cached(ctx, s, "top_product", productCacheKey("top_product", restaurantID, sel, filters), func() (*models.ProductRankingResponse, error) {
		ranking, err := s.repo.TopProducts(ctx, restaurantID, sel.Filter, filters)
		if err != nil {
			return nil, fmt.Errorf("top product: %w", err)
		}
		return productRanking(ranking, sel), nil
	})
}

func (s *metricsService) MostRemovedProduct(ctx context.Context, restaurantID int64, sel datefilter.Selector, filters models.ProductFilters) (*models.ProductRankingResponse, error) {
	filters = normalizeProductFilters(filters)
	return cached(ctx, s, "most_removed_product", productCacheKey("most_removed_product", restaurantID, sel, filters), func() (*models.ProductRankingResponse, error) {
		ranking, err := s.repo.MostRemovedProducts(ctx, restaurantID, sel.Filter, filters)
		if err != nil {
			return nil, fmt.Errorf("most removed product: %w", err)
		}
		return productRanking(ranking, sel), nil
	})
}

func (s *metricsService) DeliveryTime(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.DeliveryTimeResponse, error) {
	return cached(ctx, s, "delivery_time", cacheKey("delivery_time", restaurantID, sel), func() (*models.DeliveryTimeResponse, error) {
		var current, previous float64
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			current, err = s.repo.AverageDeliveryMinutes(gctx, restaurantID, sel.Filter)
			return err
		})
		g.Go(func() error {
			var err error
			previous, err = s.repo.AverageDeliveryMinutes(gctx, restaurantID, sel.PreviousFilter)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("delivery time: %w", err)
		}

		cmp := datefilter.Compare(current, previous, datefilter.LowerIsBetter).Rounded()
		return &models.DeliveryTimeResponse{
			AverageMinutes: cmp.Current,
			Previous:       cmp.Previous,
			Delta:          cmp.PercentDelta,
			Period:         sel.Label(),
		}, nil
	})
}

// seasonalityGrouping is weekday when one month is selected, month of year otherwise.
func seasonalityGrouping(sel datefilter.Selector) (groupBy string, first, last int) {
	if sel.HasMonth() {
		return repositories.GroupByWeekday, 0, 6
	}
	return repositories.GroupByMonth, 1, 12
}

func (s *metricsService) Seasonality(ctx context.Context, restaurantID int64, sel datefilter.Selector) (*models.SeasonalityResponse, error) {
	return cached(ctx, s, "seasonality", cacheKey("seasonality", restaurantID, sel), func() (*models.SeasonalityResponse, error) {
		groupBy, first, last := seasonalityGrouping(sel)
		rows, err := s.repo.Seasonality(ctx, restaurantID, sel.Filter, groupBy)
		if err != nil {
			return nil, fmt.Errorf("seasonality: %w", err)
		}
		byBucket := make(map[int]models.SeasonalityPoint, len(rows))
		for _, r := range rows {
			byBucket[r.Bucket] = r
		}
		points := make([]models.SeasonalityPoint, 0, last-first+1)
		for b := first; b <= last; b++ {
			p, ok := byBucket[b]
			if !ok {
				p = models.SeasonalityPoint{Bucket: b}
			}
			points = append(points, p)
		}
		return &models.SeasonalityResponse{Points: points, GroupBy: groupBy, Period: sel.Label()}, nil
	})
}

// money rounds a currency amount to cents for the response.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
