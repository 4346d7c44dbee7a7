package dto

type UsageAPIResponse struct {
	Requests int64   `json:"requests"`
	Cost     float64 `json:"cost"`
}

type UsageResponse struct {
	Month      string                      `json:"month"`
	APIs       map[string]UsageAPIResponse `json:"apis"`
	TotalCost  float64                     `json:"total_cost"`
	FreeTier   float64                     `json:"free_tier"`
	Percentage float64                     `json:"percentage"`
	IsWarning  bool                        `json:"is_warning"`
	IsDanger   bool                        `json:"is_danger"`
}
