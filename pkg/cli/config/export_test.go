package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken string) *Slack {
	return &Slack{botToken: botToken}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, geminiProject, anthropicAPIKey, openaiAPIKey string) *LLM {
	return &LLM{
		provider:        provider,
		geminiProject:   geminiProject,
		geminiLocation:  "us-central1",
		anthropicAPIKey: anthropicAPIKey,
		openaiAPIKey:    openaiAPIKey,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, dbPath string) *Repository {
	return &Repository{backend: backend, dbPath: dbPath}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewExtractionForTest returns Extraction flags holding their defaults
func NewExtractionForTest() *Extraction {
	return &Extraction{
		batchSize:    120,
		overlap:      30,
		direction:    "newest-first",
		concurrency:  1,
		contextDepth: 3,
	}
}

// NewQueryForTest returns Query flags holding their defaults
func NewQueryForTest() *Query {
	return &Query{
		maxRows:             500,
		defaultRows:         100,
		rateLimit:           10,
		timeout:             5e9,
		similarityThreshold: 0.8,
	}
}

var ResolveProvider = (*LLM).resolveProvider

// NewTimezoneForTest creates a Timezone config for testing purposes
func NewTimezoneForTest(name string) *Timezone {
	return &Timezone{name: name}
}
