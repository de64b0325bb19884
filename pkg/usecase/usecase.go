package usecase

import (
	"time"

	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/service/extraction"
	"github.com/secmon-lab/tasklens/pkg/service/participant"
	"github.com/secmon-lab/tasklens/pkg/service/translator"
)

type UseCases struct {
	repo         interfaces.Repository
	extractor    extraction.Service
	translator   translator.Service
	participants *participant.Cache
	people       []model.Person
	queryConfig  QueryConfig
	location     *time.Location
	now          func() time.Time

	Extraction *ExtractionUseCase
	Query      *QueryUseCase
	Directory  *DirectoryUseCase
}

type Option func(*UseCases)

// WithExtractor enables RunExtraction
func WithExtractor(svc extraction.Service) Option {
	return func(uc *UseCases) {
		uc.extractor = svc
	}
}

// WithTranslator sets the LLM translator. Without it questions are answered in heuristic mode.
func WithTranslator(svc translator.Service) Option {
	return func(uc *UseCases) {
		uc.translator = svc
	}
}

// WithPeople registers configured names and aliases
func WithPeople(people []model.Person) Option {
	return func(uc *UseCases) {
		uc.people = people
	}
}

func WithQueryConfig(cfg QueryConfig) Option {
	return func(uc *UseCases) {
		uc.queryConfig = cfg
	}
}

// WithLocation sets the time zone used in transcripts and relative date phrases
func WithLocation(loc *time.Location) Option {
	return func(uc *UseCases) {
		if loc != nil {
			uc.location = loc
		}
	}
}

// WithNow replaces the wall clock
func WithNow(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		participants: participant.NewCache(repo.Participant()),
		queryConfig:  DefaultQueryConfig(),
		location:     time.UTC,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Extraction = NewExtractionUseCase(repo, uc.extractor, uc.participants, uc.location, uc.now)
	uc.Query = NewQueryUseCase(repo, uc.translator, uc.participants, uc.people, uc.queryConfig, uc.location, uc.now)
	uc.Directory = NewDirectoryUseCase(repo, uc.participants)

	return uc
}

// Participants returns the shared participant cache so that refresh workers can invalidate it
func (uc *UseCases) Participants() *participant.Cache {
	return uc.participants
}
