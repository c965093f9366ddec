package evaluation

// CriterionReport is the per-criterion detail block of a report.
type CriterionReport struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Indicators    []string  `json:"indicators"`
	Weight        float64   `json:"weight"` // percent of total, 2 decimals
	RawWeight     float64   `json:"rawWeight"`
	MaxScore      int       `json:"maxScore"`
	Score         int       `json:"score"`
	RawScore      int       `json:"rawScore"`
	Strengths     []string  `json:"strengths"`
	Weaknesses    []string  `json:"weaknesses"`
	Actions       []string  `json:"actions"`
	Justification string    `json:"justification"`
	Evidence      []Excerpt `json:"evidence"`
}

// Report is the full competency evaluation for one session. LLMScorePercent
// and WeightedScorePercent are both retained so a later audit can detect
// disagreement between the model's self-reported overall score and the
// criterion-weighted recomputation.
type Report struct {
	ScenarioTitle        string            `json:"scenarioTitle"`
	OverallScorePercent  int               `json:"overallScorePercent"`
	LLMScorePercent      int               `json:"llmScorePercent"`
	WeightedScorePercent int               `json:"weightedScorePercent"`
	Criteria             []CriterionReport `json:"criteria"`
	Strengths            []string          `json:"strengths"`
	Weaknesses           []string          `json:"weaknesses"`
	Recommendations      []string          `json:"recommendations"`
	Summary              string            `json:"summary"`
}
