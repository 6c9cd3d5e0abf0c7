package model

// Department is an organizational unit requests are raised under.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Head string `json:"head"`
}

// Category is a spending category used to classify requests.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpendingReport is an aggregated spending summary from the reporting
// service.
type SpendingReport struct {
	Period       string             `json:"period"`
	TotalSpent   float64            `json:"total_spent"`
	RequestCount int                `json:"request_count"`
	OrderCount   int                `json:"order_count"`
	ByDepartment map[string]float64 `json:"by_department"`
	ByCategory   map[string]float64 `json:"by_category"`
}
