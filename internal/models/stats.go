package models

// Stats представляет агрегированную статистику торговли.
// Считается по закрытым позициям в леджере.
type Stats struct {
	TotalTrades   int         `json:"total_trades"`
	TotalPnl      float64     `json:"total_pnl"`
	TodayTrades   int         `json:"today_trades"`
	TodayPnl      float64     `json:"today_pnl"`
	WinCount      int         `json:"win_count"`
	LossCount     int         `json:"loss_count"`
	OpenPositions int         `json:"open_positions"`
	StopLossCount int         `json:"stop_loss_count"`    // закрытий по SL за всё время
	TakeProfits   int         `json:"take_profit_count"`  // закрытий по TP за всё время
	TopAssets     []AssetStat `json:"top_assets_by_pnl"`  // топ-5
	WorstAssets   []AssetStat `json:"worst_assets_by_pnl"` // топ-5
}

// AssetStat представляет статистику по одному активу
type AssetStat struct {
	Asset string  `json:"asset"`
	Value float64 `json:"value"` // количество сделок или PNL
}
