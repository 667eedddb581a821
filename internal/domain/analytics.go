package domain

// SalesTotals aggregates a sales date range.
type SalesTotals struct {
	TotalSales        float64 `json:"total_sales"`
	TotalTransactions int     `json:"total_transactions"`
	TotalItemsSold    int     `json:"total_items_sold"`
}

// MedicineSales is one medicine's aggregated sales.
type MedicineSales struct {
	MedicineName string  `json:"medicine_name"`
	Quantity     int     `json:"quantity"`
	Revenue      float64 `json:"revenue"`
}

// DailySales is one calendar day's totals.
type DailySales struct {
	Date         string  `json:"date"`
	Total        float64 `json:"total"`
	Transactions int     `json:"transactions"`
}

// PaymentBreakdown is the share of one payment method.
type PaymentBreakdown struct {
	PaymentMethod string  `json:"payment_method"`
	Total         float64 `json:"total"`
	Transactions  int     `json:"transactions"`
}

// MedicineDailySales is one medicine's totals for one calendar day.
type MedicineDailySales struct {
	Date     string  `json:"date"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// HourlySales is one hour-of-day slot. Reports always carry all 24 slots.
type HourlySales struct {
	Hour         int     `json:"hour"`
	Total        float64 `json:"total"`
	Transactions int     `json:"transactions"`
}
