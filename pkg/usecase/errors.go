package usecase

// Context keys for error values
const (
	RunIDKey    = "run_id"
	QuestionKey = "question"
)
