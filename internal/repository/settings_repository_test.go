package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// ============================================================
// SettingsRepository Tests
// ============================================================

func TestNewSettingsRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := NewSettingsRepository(db)
	if repo == nil {
		t.Fatal("NewSettingsRepository returned nil")
	}
}

func TestSettingsRepositoryGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	denied, _ := json.Marshal([]string{"SHIBUSDT", "LUNAUSDT"})
	rows := sqlmock.NewRows([]string{
		"id", "enable_auto_trading", "trade_amount_quote", "min_confidence",
		"min_risk_reward", "max_signals_per_day", "denied_symbols", "updated_at",
	}).AddRow(1, true, 25.0, 70.0, 2.0, 5, denied, time.Now())

	mock.ExpectQuery(`SELECT id, enable_auto_trading`).WillReturnRows(rows)

	repo := NewSettingsRepository(db)
	settings, err := repo.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !settings.EnableAutoTrading {
		t.Error("ожидался включенный авто-трейдинг")
	}
	if settings.TradeAmountQuote != 25.0 {
		t.Errorf("TradeAmountQuote = %v, ожидалось 25.0", settings.TradeAmountQuote)
	}
	if len(settings.DeniedSymbols) != 2 {
		t.Errorf("len(DeniedSymbols) = %d, ожидалось 2", len(settings.DeniedSymbols))
	}
	if !settings.IsDenied("shibusdt") {
		t.Error("IsDenied должен находить символ без учета регистра")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// При пустой таблице Get создает запись с дефолтами и возвращает их
func TestSettingsRepositoryGetCreatesDefault(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, enable_auto_trading`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "enable_auto_trading", "trade_amount_quote", "min_confidence",
			"min_risk_reward", "max_signals_per_day", "denied_symbols", "updated_at",
		}))
	mock.ExpectExec(`INSERT INTO settings`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewSettingsRepository(db)
	settings, err := repo.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.EnableAutoTrading {
		t.Error("авто-трейдинг по умолчанию должен быть выключен")
	}
	if settings.MaxSignalsPerDay != 10 {
		t.Errorf("MaxSignalsPerDay = %d, ожидалось 10", settings.MaxSignalsPerDay)
	}
	if settings.DeniedSymbols == nil {
		t.Error("DeniedSymbols не должен быть nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSettingsRepositoryAddDeniedSymbol(t *testing.T) {
	tests := []struct {
		name      string
		symbol    string
		argSymbol string
		rows      int64
		added     bool
	}{
		{
			name:      "new symbol is added",
			symbol:    "shibusdt",
			argSymbol: "SHIBUSDT",
			rows:      1,
			added:     true,
		},
		{
			// повторное добавление: условие NOT (denied_symbols ? $1)
			// не проходит, строка не затронута
			name:      "duplicate is ignored",
			symbol:    "SHIBUSDT",
			argSymbol: "SHIBUSDT",
			rows:      0,
			added:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			mock.ExpectExec(`UPDATE settings`).
				WithArgs(tt.argSymbol, sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			repo := NewSettingsRepository(db)
			added, err := repo.AddDeniedSymbol(tt.symbol)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if added != tt.added {
				t.Errorf("added = %v, ожидалось %v", added, tt.added)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestSettingsRepositoryRemoveDeniedSymbol(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE settings`).
		WithArgs("SHIBUSDT", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSettingsRepository(db)
	removed, err := repo.RemoveDeniedSymbol("shibusdt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !removed {
		t.Error("ожидалось removed = true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSettingsRepositoryUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE settings`).
		WithArgs(true, 50.0, 75.0, 2.5, 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSettingsRepository(db)
	settings := defaultSettings()
	settings.EnableAutoTrading = true
	settings.TradeAmountQuote = 50.0
	settings.MinConfidence = 75.0
	settings.MinRiskReward = 2.5
	settings.MaxSignalsPerDay = 3

	if err := repo.Update(settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
