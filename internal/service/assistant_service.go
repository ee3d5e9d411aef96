package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/dto"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/unitofwork"
	"github.com/sam-evolv/property-assistant-sub010/pkg/ai/router"
	"github.com/sam-evolv/property-assistant-sub010/pkg/llm"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/executor"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/prompt"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/stream"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QueryRouter decides which layers answer a question.
type QueryRouter interface {
	Route(ctx context.Context, question string, snapshot store.SchemeSnapshot) router.Decision
	Vocabulary() router.Vocabulary
}

// LayerExecutor runs a routing decision against live data and documents.
type LayerExecutor interface {
	Execute(ctx context.Context, scope store.Scope, decision router.Decision) *executor.LayerResult
}

type IAssistantService interface {
	// Ask runs the pipeline up to the first model call and returns the lazy
	// frame stream. An error means nothing may be streamed; every failure
	// after that point surfaces as an Error frame.
	Ask(ctx context.Context, scope store.Scope, req *dto.ChatRequest) (*stream.FrameStream, error)
	Layers() *dto.LayersResponse
	Exchanges(ctx context.Context, scope store.Scope, req *dto.GetExchangesRequest) ([]*dto.ExchangeResponse, error)
}

type assistantService struct {
	scheme       ISchemeService
	router       QueryRouter
	executor     LayerExecutor
	assembler    *prompt.Assembler
	streamer     *stream.Streamer
	publisher    IPublisherService
	uowFactory   unitofwork.RepositoryFactory
	excerptChars int
	tracer       trace.Tracer
	logger       logger.ILogger
}

type AssistantDeps struct {
	Scheme       ISchemeService
	Router       QueryRouter
	Executor     LayerExecutor
	Assembler    *prompt.Assembler
	Streamer     *stream.Streamer
	Publisher    IPublisherService // optional
	UowFactory   unitofwork.RepositoryFactory
	ExcerptChars int
	Logger       logger.ILogger
}

func NewAssistantService(deps AssistantDeps) IAssistantService {
	excerptChars := deps.ExcerptChars
	if excerptChars <= 0 {
		excerptChars = stream.DefaultExcerptChars
	}
	return &assistantService{
		scheme:       deps.Scheme,
		router:       deps.Router,
		executor:     deps.Executor,
		assembler:    deps.Assembler,
		streamer:     deps.Streamer,
		publisher:    deps.Publisher,
		uowFactory:   deps.UowFactory,
		excerptChars: excerptChars,
		tracer:       otel.Tracer("assistant"),
		logger:       deps.Logger,
	}
}

func (s *assistantService) Ask(ctx context.Context, scope store.Scope, req *dto.ChatRequest) (*stream.FrameStream, error) {
	started := time.Now()
	if req.DevelopmentId != nil {
		scope.DevelopmentID = req.DevelopmentId.String()
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "assistant.ask", trace.WithAttributes(
		attribute.String("tenant_id", scope.TenantID),
		attribute.String("development_id", scope.DevelopmentID),
	))
	defer span.End()

	scheme, err := s.loadScheme(ctx, scope)
	if err != nil {
		return nil, err
	}

	_, routeSpan := s.tracer.Start(ctx, "assistant.route")
	decision := s.router.Route(ctx, req.Message, scheme.Snapshot)
	routeSpan.SetAttributes(
		attribute.StringSlice("layers", decision.Layers.Strings()),
		attribute.StringSlice("functions", decision.FunctionNames),
		attribute.String("source", decision.Source),
	)
	routeSpan.End()

	execCtx, execSpan := s.tracer.Start(ctx, "assistant.execute")
	result := s.executor.Execute(execCtx, scope, decision)
	execSpan.SetAttributes(
		attribute.Int("functions_ok", len(result.Functions)),
		attribute.Int("chunks", len(result.Chunks)),
	)
	execSpan.End()

	question := router.Parse(req.Message).CleanPrompt
	if question == "" {
		question = req.Message
	}

	record := &dto.ExchangeCompletedMessage{
		Question:     req.Message,
		Layers:       decision.Layers.Strings(),
		Functions:    functionNames(result),
		RouteSource:  decision.Source,
		IsRegulatory: decision.IsRegulatory,
	}
	record.TenantId, _ = uuid.Parse(scope.TenantID)
	record.UserId, _ = uuid.Parse(scope.UserID)
	record.DevelopmentId = req.DevelopmentId

	assembled, err := s.assembler.Assemble(
		*scheme,
		result.Functions,
		result.Chunks,
		decision.IsRegulatory,
		decision.Has(router.LayerBriefing),
		toMessages(req.History),
		question,
	)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("ASSISTANT", "Prompt assembly failed", map[string]interface{}{
			"tenant_id": scope.TenantID,
			"error":     err.Error(),
		})
		fs := s.streamer.Failed(ctx, err)
		s.recordOnFinish(ctx, fs, record, started)
		return fs, nil
	}

	sources := stream.BuildSources(result.Functions, result.Chunks, s.excerptChars)
	record.SourceCount = len(sources)

	fs := s.streamer.Stream(ctx, stream.Input{
		Messages:     assembled.Messages(),
		Sources:      sources,
		Chart:        result.Chart,
		Actions:      result.Actions,
		IsRegulatory: decision.IsRegulatory,
	})
	s.recordOnFinish(ctx, fs, record, started)
	return fs, nil
}

// loadScheme returns pre-stream errors for scope problems, and for any
// failure while a development is selected. A tenant-wide failure degrades to
// an empty summary so the question is still answered.
func (s *assistantService) loadScheme(ctx context.Context, scope store.Scope) (*store.SchemeContext, error) {
	ctx, span := s.tracer.Start(ctx, "assistant.scheme")
	defer span.End()

	scheme, err := s.scheme.Get(ctx, scope)
	if err == nil {
		return scheme, nil
	}
	if errors.Is(err, ErrDevelopmentNotFound) || errors.Is(err, ErrInvalidDevelopment) || errors.Is(err, store.ErrMissingTenant) {
		return nil, err
	}

	span.RecordError(err)
	// The scheme lookup is the only tenant ownership check on the development.
	// Without it the development corpus must not be searched.
	if scope.HasDevelopment() {
		s.logger.Error("ASSISTANT", "Development ownership could not be verified", map[string]interface{}{
			"tenant_id":      scope.TenantID,
			"development_id": scope.DevelopmentID,
			"error":          err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrScopeUnverified, err)
	}
	s.logger.Warn("ASSISTANT", "Scheme summary unavailable", map[string]interface{}{
		"tenant_id":      scope.TenantID,
		"development_id": scope.DevelopmentID,
		"error":          err.Error(),
	})
	return &store.SchemeContext{Snapshot: store.SchemeSnapshot{
		TenantID:      scope.TenantID,
		DevelopmentID: scope.DevelopmentID,
	}}, nil
}

func (s *assistantService) recordOnFinish(ctx context.Context, fs *stream.FrameStream, record *dto.ExchangeCompletedMessage, started time.Time) {
	if s.publisher == nil {
		return
	}
	pubCtx := context.WithoutCancel(ctx)
	fs.OnFinish(func(answer, outcome string) {
		msg := *record
		msg.Answer = answer
		msg.Outcome = outcome
		msg.CompletedAt = time.Now().UTC()
		msg.DurationMs = time.Since(started).Milliseconds()

		go func() {
			if err := s.publisher.PublishExchangeCompleted(pubCtx, &msg); err != nil {
				s.logger.Warn("ASSISTANT", "Failed to publish exchange", map[string]interface{}{"error": err.Error()})
			}
		}()
	})
}

func (s *assistantService) Layers() *dto.LayersResponse {
	vocab := s.router.Vocabulary()
	return &dto.LayersResponse{
		Layers:    vocab.Layers,
		Functions: vocab.Functions,
		Prefixes: []string{
			router.PrefixBriefing,
			router.PrefixRegulatory,
			router.PrefixDocuments,
			router.PrefixLive,
		},
	}
}

func (s *assistantService) Exchanges(ctx context.Context, scope store.Scope, req *dto.GetExchangesRequest) ([]*dto.ExchangeResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	limit := req.Limit
	switch {
	case limit <= 0:
		limit = dto.DefaultExchangesLimit
	case limit > dto.MaxExchangesLimit:
		limit = dto.MaxExchangesLimit
	}

	specs := []specification.Specification{
		specification.TenantOwnedBy{TenantID: scope.TenantID},
		specification.ByUser{UserID: scope.UserID},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	exchanges, err := uow.AssistantExchangeRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ExchangeResponse, 0, len(exchanges))
	for _, e := range exchanges {
		res = append(res, &dto.ExchangeResponse{
			Id:            e.Id,
			DevelopmentId: e.DevelopmentId,
			Question:      e.Question,
			Answer:        e.Answer,
			Layers:        e.Layers,
			Functions:     e.Functions,
			RouteSource:   e.RouteSource,
			IsRegulatory:  e.IsRegulatory,
			SourceCount:   e.SourceCount,
			Outcome:       e.Outcome,
			DurationMs:    e.DurationMs,
			CreatedAt:     e.CreatedAt,
		})
	}
	return res, nil
}

func functionNames(result *executor.LayerResult) []string {
	names := make([]string, len(result.Functions))
	for i, r := range result.Functions {
		names[i] = r.Name
	}
	return names
}

func toMessages(history []dto.ChatTurnDTO) []llm.Message {
	msgs := make([]llm.Message, len(history))
	for i, h := range history {
		msgs[i] = llm.Message{Role: h.Role, Content: h.Content}
	}
	return msgs
}
