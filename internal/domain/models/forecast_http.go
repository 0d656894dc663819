package models

// Requests for forecast HTTP endpoints. Defined in domain for reuse by the Kafka handler.

type ForecastRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=16"`
	Overrides
}

type HistoryInput struct {
	Date  string  `json:"date" validate:"required,datetime=2006-01-02"`
	Close float64 `json:"close" validate:"gt=0"`
}

type HistoryForecastRequest struct {
	Symbol    string         `json:"symbol" default:"CUSTOM" validate:"max=16"`
	History   []HistoryInput `json:"history" validate:"required,min=2,dive"`
	Overrides `json:"overrides"`
}

type BatchForecastRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required"`
	Overrides
}

type EvaluateRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required,max=16"`
	Holdout int    `query:"holdout" json:"holdout" default:"10" validate:"gte=1,lte=60"`
}

type AnalyzeRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=16"`
	Overrides
}
