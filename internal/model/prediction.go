package model

// PredictionSource indicates what produced the final category verdict.
type PredictionSource string

// Prediction source constants.
const (
	SourceModel      PredictionSource = "MODEL"
	SourceCorrection PredictionSource = "USER_CORRECTION"
	SourceRule       PredictionSource = "RULE_ADJUSTED"
	SourceFallback   PredictionSource = "FALLBACK"
)

// Alternative is a runner-up category with its predicted probability.
type Alternative struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Prediction is the result of categorizing a single description.
type Prediction struct {
	Category     string           `json:"category"`
	Confidence   float64          `json:"confidence"`
	Alternatives []Alternative    `json:"alternatives"`
	Explanation  string           `json:"explanation"`
	Source       PredictionSource `json:"source"`
	ModelVersion int              `json:"model_version"`
}
