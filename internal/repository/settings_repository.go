package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"cryptoalpha/internal/models"
)

// Ошибки репозитория настроек
var (
	ErrSettingsNotFound = errors.New("settings not found")
)

// SettingsRepository - работа с таблицей settings (одна строка, id = 1).
//
// deny-list хранится как jsonb-массив; добавление и удаление символов
// выполняются одним UPDATE с jsonb-операторами, чтобы конкурентные
// писатели (координатор + дашборд) не теряли обновления друг друга.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository создает новый экземпляр репозитория
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get возвращает глобальные настройки (всегда id=1, одна запись)
func (r *SettingsRepository) Get() (*models.Settings, error) {
	query := `
		SELECT id, enable_auto_trading, trade_amount_quote, min_confidence, min_risk_reward, max_signals_per_day, denied_symbols, updated_at
		FROM settings
		WHERE id = 1`

	settings := &models.Settings{}
	var deniedJSON []byte
	err := r.db.QueryRow(query).Scan(
		&settings.ID,
		&settings.EnableAutoTrading,
		&settings.TradeAmountQuote,
		&settings.MinConfidence,
		&settings.MinRiskReward,
		&settings.MaxSignalsPerDay,
		&deniedJSON,
		&settings.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Если записи нет, создаем ее с дефолтными значениями
			return r.createDefault()
		}
		return nil, err
	}

	// Десериализуем deny-list из JSON
	if len(deniedJSON) > 0 {
		if err := json.Unmarshal(deniedJSON, &settings.DeniedSymbols); err != nil {
			return nil, err
		}
	}
	if settings.DeniedSymbols == nil {
		settings.DeniedSymbols = []string{}
	}

	return settings, nil
}

// Update обновляет настройки целиком (кроме deny-list - см. AddDeniedSymbol)
func (r *SettingsRepository) Update(settings *models.Settings) error {
	query := `
		UPDATE settings
		SET enable_auto_trading = $1, trade_amount_quote = $2, min_confidence = $3, min_risk_reward = $4, max_signals_per_day = $5, updated_at = $6
		WHERE id = 1`

	settings.UpdatedAt = time.Now()

	result, err := r.db.Exec(query,
		settings.EnableAutoTrading,
		settings.TradeAmountQuote,
		settings.MinConfidence,
		settings.MinRiskReward,
		settings.MaxSignalsPerDay,
		settings.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSettingsNotFound
	}

	return nil
}

// AddDeniedSymbol атомарно добавляет символ в deny-list.
//
// Один UPDATE с jsonb-конкатенацией: условие NOT (denied_symbols ? $1)
// делает операцию идемпотентной без чтения-изменения-записи на стороне
// приложения. Возвращает true если символ был добавлен, false если уже
// присутствовал.
func (r *SettingsRepository) AddDeniedSymbol(symbol string) (bool, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	query := `
		UPDATE settings
		SET denied_symbols = denied_symbols || to_jsonb($1::text), updated_at = $2
		WHERE id = 1 AND NOT (denied_symbols ? $1)`

	result, err := r.db.Exec(query, symbol, time.Now())
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// RemoveDeniedSymbol атомарно удаляет символ из deny-list
func (r *SettingsRepository) RemoveDeniedSymbol(symbol string) (bool, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	query := `
		UPDATE settings
		SET denied_symbols = denied_symbols - $1, updated_at = $2
		WHERE id = 1 AND (denied_symbols ? $1)`

	result, err := r.db.Exec(query, symbol, time.Now())
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// createDefault создает запись настроек с дефолтными значениями
func (r *SettingsRepository) createDefault() (*models.Settings, error) {
	defaults := defaultSettings()

	query := `
		INSERT INTO settings (id, enable_auto_trading, trade_amount_quote, min_confidence, min_risk_reward, max_signals_per_day, denied_symbols, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	deniedJSON, err := json.Marshal(defaults.DeniedSymbols)
	if err != nil {
		return nil, err
	}

	defaults.UpdatedAt = time.Now()

	_, err = r.db.Exec(query,
		defaults.EnableAutoTrading,
		defaults.TradeAmountQuote,
		defaults.MinConfidence,
		defaults.MinRiskReward,
		defaults.MaxSignalsPerDay,
		deniedJSON,
		defaults.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return defaults, nil
}

// defaultSettings возвращает дефолтные настройки торговли
func defaultSettings() *models.Settings {
	return &models.Settings{
		ID:                1,
		EnableAutoTrading: false,
		TradeAmountQuote:  10.0,
		MinConfidence:     65.0,
		MinRiskReward:     1.5,
		MaxSignalsPerDay:  10,
		DeniedSymbols:     []string{},
	}
}
