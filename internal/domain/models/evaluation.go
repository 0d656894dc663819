package models

// EvaluationMetrics scores a forecast mean path against realized closes.
type EvaluationMetrics struct {
	MAE                 float64 `json:"mae"`
	RMSE                float64 `json:"rmse"`
	MAPE                float64 `json:"mape"`
	R2                  float64 `json:"r2"`
	DirectionalAccuracy float64 `json:"directional_accuracy"`
	Bias                float64 `json:"bias"`
	NormalizedRMSE      float64 `json:"normalized_rmse"`
	NormalizedMAE       float64 `json:"normalized_mae"`
	DataPoints          int     `json:"data_points"`
	Quality             string  `json:"quality"`
}

// EvaluationReport is a holdout evaluation of one symbol.
type EvaluationReport struct {
	Symbol    string             `json:"symbol"`
	Holdout   int                `json:"holdout"`
	Metrics   EvaluationMetrics  `json:"metrics"`
	Actual    []PriceObservation `json:"actual"`
	Predicted []ForecastPoint    `json:"predicted"`
}
