package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	pkgch "FinCast/pkg/clickhouse"
)

// CHForecastArchive stores one row per projected day in the forecasts table.
type CHForecastArchive struct {
	db    *sql.DB
	table string
}

// NewCHForecastArchive creates the archive sink on <database>.forecasts.
func NewCHForecastArchive(ch *pkgch.Client) domrepo.ForecastSink {
	return &CHForecastArchive{db: ch.DB(), table: ch.Database() + ".forecasts"}
}

func (a *CHForecastArchive) Name() string { return "clickhouse" }

func (a *CHForecastArchive) Publish(ctx context.Context, r models.ForecastResult) error {
	if len(r.Path) == 0 {
		return nil
	}
	q, args := forecastInsert(a.table, r)
	if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("archive forecast %s: %w", r.Symbol, err)
	}
	return nil
}

func forecastInsert(table string, r models.ForecastResult) (string, []interface{}) {
	values := make([]string, len(r.Path))
	args := make([]interface{}, 0, len(r.Path)*11)
	for i, p := range r.Path {
		values[i] = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			r.Symbol, r.AsOf, p.Date, uint16(i+1),
			p.Mean, p.Lower, p.Upper,
			string(r.Bias.Direction), r.Bias.Drift,
			r.Indicators.RSI, r.Indicators.Volatility,
		)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (symbol, as_of, day, step, mean, lower, upper, trend, drift, rsi, volatility) VALUES %s",
		table, strings.Join(values, ","),
	)
	return q, args
}
