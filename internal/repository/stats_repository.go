package repository

import (
	"database/sql"

	"cryptoalpha/internal/models"
	"cryptoalpha/pkg/utils"
)

// StatsRepository - агрегация статистики из таблицы trade_positions.
//
// Отдельной таблицы сделок нет: закрытая позиция и есть завершенная
// сделка, все агрегаты считаются по леджеру позиций. Закрытие по SL/TP
// восстанавливается сравнением exit_price с границами позиции.
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository создает новый экземпляр репозитория
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetStats возвращает агрегированную статистику по закрытым позициям
func (r *StatsRepository) GetStats() (*models.Stats, error) {
	stats := &models.Stats{}

	dayStart := utils.GetDayStart()

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM((exit_price - entry_price) * quantity), 0),
			COUNT(*) FILTER (WHERE closed_at >= $1),
			COALESCE(SUM((exit_price - entry_price) * quantity) FILTER (WHERE closed_at >= $1), 0),
			COUNT(*) FILTER (WHERE exit_price > entry_price),
			COUNT(*) FILTER (WHERE exit_price <= entry_price),
			COUNT(*) FILTER (WHERE exit_price <= stop_loss),
			COUNT(*) FILTER (WHERE exit_price >= take_profit)
		FROM trade_positions
		WHERE status = $2`

	err := r.db.QueryRow(query, dayStart, models.PositionStatusClosed).Scan(
		&stats.TotalTrades,
		&stats.TotalPnl,
		&stats.TodayTrades,
		&stats.TodayPnl,
		&stats.WinCount,
		&stats.LossCount,
		&stats.StopLossCount,
		&stats.TakeProfits,
	)
	if err != nil {
		return nil, err
	}

	openQuery := `SELECT COUNT(*) FROM trade_positions WHERE status = $1`
	if err := r.db.QueryRow(openQuery, models.PositionStatusOpen).Scan(&stats.OpenPositions); err != nil {
		return nil, err
	}

	return stats, nil
}

// GetTopAssetsByPnl возвращает топ-N активов по прибыли (убыванию)
func (r *StatsRepository) GetTopAssetsByPnl(limit int) ([]models.AssetStat, error) {
	query := `
		SELECT asset, SUM((exit_price - entry_price) * quantity) AS pnl
		FROM trade_positions
		WHERE status = $1
		GROUP BY asset
		ORDER BY pnl DESC
		LIMIT $2`

	return r.queryAssetStats(query, models.PositionStatusClosed, limit)
}

// GetWorstAssetsByPnl возвращает топ-N активов по убыткам (возрастанию)
func (r *StatsRepository) GetWorstAssetsByPnl(limit int) ([]models.AssetStat, error) {
	query := `
		SELECT asset, SUM((exit_price - entry_price) * quantity) AS pnl
		FROM trade_positions
		WHERE status = $1
		GROUP BY asset
		ORDER BY pnl ASC
		LIMIT $2`

	return r.queryAssetStats(query, models.PositionStatusClosed, limit)
}

// GetPnlByAsset возвращает суммарный P&L по одному активу
func (r *StatsRepository) GetPnlByAsset(asset string) (float64, error) {
	query := `
		SELECT COALESCE(SUM((exit_price - entry_price) * quantity), 0)
		FROM trade_positions
		WHERE status = $1 AND asset = $2`

	var pnl float64
	err := r.db.QueryRow(query, models.PositionStatusClosed, asset).Scan(&pnl)
	if err != nil {
		return 0, err
	}

	return pnl, nil
}

// queryAssetStats выполняет запрос и сканирует список статистик по активам
func (r *StatsRepository) queryAssetStats(query string, args ...interface{}) ([]models.AssetStat, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.AssetStat
	for rows.Next() {
		var stat models.AssetStat
		if err := rows.Scan(&stat.Asset, &stat.Value); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
