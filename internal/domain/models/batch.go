package models

// BatchResult holds the outcome of analyzing several symbols. One failure never hides the others.
type BatchResult struct {
	Results  []ForecastResult  `json:"results"`
	Failures map[string]string `json:"failures,omitempty"`
}
