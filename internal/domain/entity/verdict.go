package entity

// Probabilities is the classifier output, one value per class in model index order.
type Probabilities []float64

// QualityVerdict is the result of the pixel statistics checks.
type QualityVerdict struct {
	Passed bool
	Reason string // first violated rule, empty when passed
}

// UncertaintyVerdict describes whether a distribution looks like an unknown input.
type UncertaintyVerdict struct {
	IsUnrelated bool
	Reason      string
	Entropy     float64
}

// Prediction is one ranked class in a ClassificationVerdict.
type Prediction struct {
	ClassName   string     `json:"className"`
	Probability float64    `json:"probability"`
	IssueType   *IssueType `json:"issueType"`
}

// ClassificationVerdict is the final answer returned for one image.
type ClassificationVerdict struct {
	IsValid     bool         `json:"isValid"`
	IsUnrelated bool         `json:"isUnrelated"`
	ClassName   *string      `json:"className"`
	IssueType   *IssueType   `json:"issueType"`
	Confidence  float64      `json:"confidence"`
	Entropy     float64      `json:"entropy"`
	Message     string       `json:"message"`
	Predictions []Prediction `json:"allPredictions"`
}
