package models

// FeeCategorySummary is one line of the financial overview.
type FeeCategorySummary struct {
	Category  string  `json:"category"`
	Billed    float64 `json:"billed"`
	Collected float64 `json:"collected"`
}

// FinancialOverview is the school-wide fee collection summary.
type FinancialOverview struct {
	Term            string               `json:"term"`
	Currency        string               `json:"currency"`
	TotalBilled     float64              `json:"totalBilled"`
	TotalCollected  float64              `json:"totalCollected"`
	Outstanding     float64              `json:"outstanding"`
	CollectionRate  float64              `json:"collectionRate"`
	OverdueAccounts int                  `json:"overdueAccounts"`
	Categories      []FeeCategorySummary `json:"categories"`
}
