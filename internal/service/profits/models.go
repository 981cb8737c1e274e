package profits

// DailyProfit выручка за один день
type DailyProfit struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Amount int64  `json:"amount"`
}

// ProfitListResponse выручка по дням за диапазон и итог
type ProfitListResponse struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Records []DailyProfit `json:"records"`
	Total   int64         `json:"total"`
}
