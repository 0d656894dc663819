package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	pkgch "FinCast/pkg/clickhouse"
	applogger "FinCast/pkg/logger"
)

const insertChunk = 2000

// CHHistoryStore implements HistoryStore on the daily_closes table.
type CHHistoryStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHHistoryStore creates a store on <database>.daily_closes.
func NewCHHistoryStore(ch *pkgch.Client, l *applogger.Logger) domrepo.HistoryStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHHistoryStore{db: ch.DB(), table: ch.Database() + ".daily_closes", l: l}
}

// History returns the stored closes for symbol in [from, to]. FINAL collapses re-ingested days.
func (s *CHHistoryStore) History(ctx context.Context, symbol string, from, to time.Time) (models.PriceHistory, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT day, close
        FROM %s FINAL
        WHERE symbol = ? AND day >= ? AND day <= ?
        ORDER BY day ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, models.TruncateDay(from), models.TruncateDay(to))
	if err != nil {
		s.l.Error("clickhouse history query error", applogger.String("symbol", symbol), applogger.Error(err))
		return models.PriceHistory{}, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	obs := make([]models.PriceObservation, 0, 256)
	for rows.Next() {
		var o models.PriceObservation
		if err := rows.Scan(&o.Date, &o.Close); err != nil {
			return models.PriceHistory{}, fmt.Errorf("scan close: %w", err)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return models.PriceHistory{}, fmt.Errorf("rows: %w", err)
	}
	if len(obs) == 0 {
		return models.PriceHistory{}, fmt.Errorf("%w: %s not in store", models.ErrSymbolNotFound, symbol)
	}
	s.l.Debug("clickhouse history ok",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(obs)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return models.NewPriceHistory(obs)
}

// SaveHistory upserts every observation of h in multi-row inserts.
func (s *CHHistoryStore) SaveHistory(ctx context.Context, symbol string, h models.PriceHistory) error {
	obs := h.Observations()
	for lo := 0; lo < len(obs); lo += insertChunk {
		hi := lo + insertChunk
		if hi > len(obs) {
			hi = len(obs)
		}
		q, args := historyInsert(s.table, symbol, obs[lo:hi])
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse history insert error", applogger.String("symbol", symbol), applogger.Error(err))
			return fmt.Errorf("insert history: %w", err)
		}
	}
	return nil
}

func historyInsert(table, symbol string, obs []models.PriceObservation) (string, []interface{}) {
	values := make([]string, len(obs))
	args := make([]interface{}, 0, len(obs)*3)
	for i, o := range obs {
		values[i] = "(?, ?, ?)"
		args = append(args, symbol, o.Date, o.Close)
	}
	return fmt.Sprintf("INSERT INTO %s (symbol, day, close) VALUES %s", table, strings.Join(values, ",")), args
}
