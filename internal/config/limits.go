package config

const (
	// DefaultPromptMessages bounds how many transcript messages are rendered
	// into one grading prompt when SIMCLINIC_PROMPT_MESSAGES is unset.
	DefaultPromptMessages = 200

	// MaxGradingOutputTokens bounds the grading model's response size.
	MaxGradingOutputTokens = 4096
)
