package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"restaurant_analytics/internal/models"
	"restaurant_analytics/pkg/datefilter"

	"github.com/lib/pq" // For pq.Array
	"github.com/shopspring/decimal"
)

// PeriodScope builds the date predicate for one period. Selector.Filter and
// Selector.PreviousFilter both satisfy it.
type PeriodScope func(alias string, startIndex int) datefilter.Fragment

// Bucket granularities accepted by RevenueSeries and HistoricalAverageRevenue.
const (
	BucketDay   = "day"
	BucketMonth = "month"
	BucketYear  = "year"
)

// Seasonality groupings.
const (
	GroupByMonth   = "month"
	GroupByWeekday = "weekday"
)

var bucketFormats = map[string]string{
	BucketDay:   "YYYY-MM-DD",
	BucketMonth: "YYYY-MM",
	BucketYear:  "YYYY",
}

var seasonalityFields = map[string]string{
	GroupByMonth:   "MONTH",
	GroupByWeekday: "DOW",
}

// MetricsRepository defines the aggregation queries behind the dashboard cards.
// Every query binds the restaurant id at $1 and the period predicate from $2 on.
type MetricsRepository interface {
	SalesTotals(ctx context.Context, restaurantID int64, scope PeriodScope) (models.SalesTotals, error)
	SalesByShift(ctx context.Context, restaurantID int64, scope PeriodScope) ([]models.ShiftSales, error)
	SalesByChannel(ctx context.Context, restaurantID int64, scope PeriodScope, channels []string) ([]models.ChannelSales, error)
	RevenueSeries(ctx context.Context, restaurantID int64, scope PeriodScope, bucket string) ([]models.SeriesPoint, error)
	HistoricalAverageRevenue(ctx context.Context, restaurantID int64, bucket string) (decimal.Decimal, error)
	TopProducts(ctx context.Context, restaurantID int64, scope PeriodScope, filters models.ProductFilters) ([]models.ProductRank, error)
	MostRemovedProducts(ctx context.Context, restaurantID int64, scope PeriodScope, filters models.ProductFilters) ([]models.ProductRank, error)
	AverageDeliveryMinutes(ctx context.Context, restaurantID int64, scope PeriodScope) (float64, error)
	Seasonality(ctx context.Context, restaurantID int64, scope PeriodScope, groupBy string) ([]models.SeasonalityPoint, error)
}

type metricsRepository struct {
	db SQLExecutor
}

// NewMetricsRepository creates a new instance of MetricsRepository.
func NewMetricsRepository(db SQLExecutor) MetricsRepository {
	return &metricsRepository{db: db}
}

// baseArgs puts the restaurant id in front of the fragment's bound values.
func baseArgs(restaurantID int64, f datefilter.Fragment) []interface{} {
	return append([]interface{}{restaurantID}, f.Args()...)
}

func (r *metricsRepository) SalesTotals(ctx context.Context, restaurantID int64, scope PeriodScope) (models.SalesTotals, error) {
	f := scope("s.", datefilter.DefaultStartIndex)
	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(s.total_amount), 0)
		FROM sales s
		WHERE s.restaurant_id = $1 %s`, f.Clause)

	var totals models.SalesTotals
	err := r.db.QueryRowContext(ctx, query, baseArgs(restaurantID, f)...).Scan(&totals.Count, &totals.Revenue)
	if err != nil {
		return models.SalesTotals{}, fmt.Errorf("%w: sales totals for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return totals, nil
}

func (r *metricsRepository) SalesByShift(ctx context.Context, restaurantID int64, scope PeriodScope) ([]models.ShiftSales, error) {
	f := scope("s.", datefilter.DefaultStartIndex)
	query := fmt.Sprintf(`
		SELECT
			CASE
				WHEN EXTRACT(HOUR FROM s.created_at) < 6 THEN 'madrugada'
				WHEN EXTRACT(HOUR FROM s.created_at) < 12 THEN 'manha'
				WHEN EXTRACT(HOUR FROM s.created_at) < 18 THEN 'tarde'
				ELSE 'noite'
			END AS turno,
			COUNT(*) AS vendas,
			COALESCE(SUM(s.total_amount), 0) AS faturamento
		FROM sales s
		WHERE s.restaurant_id = $1 %s
		GROUP BY turno`, f.Clause)

	rows, err := r.db.QueryContext(ctx, query, baseArgs(restaurantID, f)...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sales by shift: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	shifts := []models.ShiftSales{}
	for rows.Next() {
		var s models.ShiftSales
		var revenue decimal.Decimal
		if err := rows.Scan(&s.Shift, &s.Sales, &revenue); err != nil {
			return nil, fmt.Errorf("%w: scanning shift row: %v", ErrDatabaseError, err)
		}
		s.Revenue = revenue.InexactFloat64()
		shifts = append(shifts, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating shift rows: %v", ErrDatabaseError, err)
	}
	return shifts, nil
}

func (r *metricsRepository) SalesByChannel(ctx context.Context, restaurantID int64, scope PeriodScope, channels []string) ([]models.ChannelSales, error) {
	f := scope("s.", datefilter.DefaultStartIndex)
	args := baseArgs(restaurantID, f)
	channelClause := ""
	if len(channels) > 0 {
		channelClause = " AND s.channel = ANY($" + strconv.Itoa(f.Next()) + ")"
		args = append(args, pq.Array(channels))
	}

	query := fmt.Sprintf(`
		SELECT s.channel, COUNT(*) AS vendas, COALESCE(SUM(s.total_amount), 0) AS faturamento
		FROM sales s
		WHERE s.restaurant_id = $1 %s%s
		GROUP BY s.channel
		ORDER BY vendas DESC, s.channel ASC`, f.Clause, channelClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sales by channel: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	result := []models.ChannelSales{}
	for rows.Next() {
		var c models.ChannelSales
		var revenue decimal.Decimal
		if err := rows.Scan(&c.Channel, &c.Sales, &revenue); err != nil {
			return nil, fmt.Errorf("%w: scanning channel row: %v", ErrDatabaseError, err)
		}
		c.Revenue = revenue.InexactFloat64()
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating channel rows: %v", ErrDatabaseError, err)
	}
	return result, nil
}

func (r *metricsRepository) RevenueSeries(ctx context.Context, restaurantID int64, scope PeriodScope, bucket string) ([]models.SeriesPoint, error) {
	format, ok := bucketFormats[bucket]
	if !ok {
		return nil, fmt.Errorf("unknown series bucket %q", bucket)
	}
	f := scope("s.", datefilter.DefaultStartIndex)
	query := fmt.Sprintf(`
		SELECT TO_CHAR(DATE_TRUNC('%s', s.created_at), '%s') AS bucket,
			COALESCE(SUM(s.total_amount), 0) AS faturamento
		FROM sales s
		WHERE s.restaurant_id = $1 %s
		GROUP BY bucket
		ORDER BY bucket ASC`, bucket, format, f.Clause)

	rows, err := r.db.QueryContext(ctx, query, baseArgs(restaurantID, f)...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying revenue series: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	points := []models.SeriesPoint{}
	for rows.Next() {
		var p models.SeriesPoint
		var revenue decimal.Decimal
		if err := rows.Scan(&p.Bucket, &revenue); err != nil {
			return nil, fmt.Errorf("%w: scanning series row: %v", ErrDatabaseError, err)
		}
		p.Revenue = revenue.InexactFloat64()
		points = append(points, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating series rows: %v", ErrDatabaseError, err)
	}
	return points, nil
}

func (r *metricsRepository) HistoricalAverageRevenue(ctx context.Context, restaurantID int64, bucket string) (decimal.Decimal, error) {
	if _, ok := bucketFormats[bucket]; !ok {
		return decimal.Zero, fmt.Errorf("unknown average bucket %q", bucket)
	}
	query := fmt.Sprintf(`
		SELECT COALESCE(AVG(t.bucket_total), 0)
		FROM (
			SELECT DATE_TRUNC('%s', s.created_at) AS bucket, SUM(s.total_amount) AS bucket_total
			FROM sales s
			WHERE s.restaurant_id = $1
			GROUP BY bucket
		) t`, bucket)

	var avg decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, restaurantID).Scan(&avg); err != nil {
		return decimal.Zero, fmt.Errorf("%w: historical average for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return avg, nil
}

func (r *metricsRepository) TopProducts(ctx context.Context, restaurantID int64, scope PeriodScope, filters models.ProductFilters) ([]models.ProductRank, error) {
	f := scope("s.", datefilter.DefaultStartIndex)
	return r.rankProducts(ctx, `
		SELECT p.id, p.name, COALESCE(SUM(si.quantity), 0) AS total
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.restaurant_id = $1 `, restaurantID, f, filters)
}

func (r *metricsRepository) MostRemovedProducts(ctx context.Context, restaurantID int64, scope PeriodScope, filters models.ProductFilters) ([]models.ProductRank, error) {
	f := scope("ir.", datefilter.DefaultStartIndex)
	return r.rankProducts(ctx, `
		SELECT p.id, p.name, COUNT(*) AS total
		FROM item_removals ir
		JOIN sales s ON s.id = ir.sale_id
		JOIN products p ON p.id = ir.product_id
		WHERE s.restaurant_id = $1 `, restaurantID, f, filters)
}

// likeEscaper escapes LIKE wildcards using the default backslash escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches s literally anywhere in the value.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// rankProducts appends the period fragment, then the optional name search and the limit,
// continuing placeholder numbering after the fragment.
func (r *metricsRepository) rankProducts(ctx context.Context, base string, restaurantID int64, f datefilter.Fragment, filters models.ProductFilters) ([]models.ProductRank, error) {
	args := baseArgs(restaurantID, f)
	argIdx := f.Next()

	query := base + f.Clause
	if filters.Search != nil {
		query += " AND p.name ILIKE $" + strconv.Itoa(argIdx)
		args = append(args, containsPattern(*filters.Search))
		argIdx++
	}
	query += " GROUP BY p.id, p.name ORDER BY total DESC, p.name ASC"
	if filters.Limit > 0 {
		query += " LIMIT $" + strconv.Itoa(argIdx)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying product ranking: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	ranking := []models.ProductRank{}
	for rows.Next() {
		var p models.ProductRank
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Quantity); err != nil {
			return nil, fmt.Errorf("%w: scanning product row: %v", ErrDatabaseError, err)
		}
		ranking = append(ranking, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return ranking, nil
}

func (r *metricsRepository) AverageDeliveryMinutes(ctx context.Context, restaurantID int64, scope PeriodScope) (float64, error) {
	f := scope("d.", datefilter.DefaultStartIndex)
	query := fmt.Sprintf(`
		SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (d.delivered_at - d.dispatched_at)) / 60), 0)
		FROM deliveries d
		JOIN sales s ON s.id = d.sale_id
		WHERE s.restaurant_id = $1
			AND d.delivered_at IS NOT NULL
			AND d.dispatched_at IS NOT NULL %s`, f.Clause)

	var minutes float64
	if err := r.db.QueryRowContext(ctx, query, baseArgs(restaurantID, f)...).Scan(&minutes); err != nil {
		return 0, fmt.Errorf("%w: average delivery time for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return minutes, nil
}

func (r *metricsRepository) Seasonality(ctx context.Context, restaurantID int64, scope PeriodScope, groupBy string) ([]models.SeasonalityPoint, error) {
	field, ok := seasonalityFields[groupBy]
	if !ok {
		return nil, fmt.Errorf("unknown seasonality grouping %q", groupBy)
	}
	f := scope("s.", datefilter.DefaultStartIndex)
	query := fmt.Sprintf(`
		SELECT EXTRACT(%s FROM s.created_at)::int AS bucket,
			COUNT(*) AS vendas,
			COALESCE(SUM(s.total_amount), 0) AS faturamento
		FROM sales s
		WHERE s.restaurant_id = $1 %s
		GROUP BY bucket
		ORDER BY bucket ASC`, field, f.Clause)

	rows, err := r.db.QueryContext(ctx, query, baseArgs(restaurantID, f)...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying seasonality: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	points := []models.SeasonalityPoint{}
	for rows.Next() {
		var p models.SeasonalityPoint
		var revenue decimal.Decimal
		if err := rows.Scan(&p.Bucket, &p.Sales, &revenue); err != nil {
			return nil, fmt.Errorf("%w: scanning seasonality row: %v", ErrDatabaseError, err)
		}
		p.Revenue = revenue.InexactFloat64()
		points = append(points, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating seasonality rows: %v", ErrDatabaseError, err)
	}
	return points, nil
}
