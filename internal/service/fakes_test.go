package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/contract"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/unitofwork"
	"github.com/sam-evolv/property-assistant-sub010/pkg/embedding"
	"github.com/sam-evolv/property-assistant-sub010/pkg/llm"

	"github.com/google/uuid"
)

// memoryDB is an in-memory stand-in for Postgres. Repositories interpret the
// scoping specifications the same way the SQL ones do.
type memoryDB struct {
	mu           sync.Mutex
	developments []*entity.Development
	units        []*entity.Unit
	pipeline     []*entity.SalesPipelineEntry
	counters     []*entity.AnalyticsCounter
	chunks       []*entity.DocumentChunk
	exchanges    []*entity.AssistantExchange

	failPipeline  error
	failExchanges error
	commits       int
	rollbacks     int
}

type filter struct {
	tenant      string
	development string
	user        string
	corpus      string
	id          uuid.UUID
	limit       int
	offset      int
}

func parseSpecs(specs []specification.Specification) filter {
	var f filter
	for _, s := range specs {
		switch v := s.(type) {
		case specification.TenantOwnedBy:
			f.tenant = v.TenantID
		case specification.ByDevelopment:
			f.development = v.DevelopmentID
		case specification.ByUser:
			f.user = v.UserID
		case specification.ByCorpus:
			f.corpus = v.CorpusID
		case specification.ByID:
			f.id = v.ID
		case specification.Pagination:
			f.limit, f.offset = v.Limit, v.Offset
		}
	}
	return f
}

func (f filter) owns(tenant uuid.UUID, development *uuid.UUID) bool {
	if f.tenant != "" && f.tenant != tenant.String() {
		return false
	}
	if f.development != "" && (development == nil || f.development != development.String()) {
		return false
	}
	return true
}

type fakeFactory struct {
	db *memoryDB
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{db: f.db}
}

type fakeUow struct {
	db     *memoryDB
	active bool
}

func (u *fakeUow) Begin(ctx context.Context) error {
	u.active = true
	return nil
}

func (u *fakeUow) Commit() error {
	u.db.mu.Lock()
	u.db.commits++
	u.db.mu.Unlock()
	u.active = false
	return nil
}

func (u *fakeUow) Rollback() error {
	if u.active {
		u.db.mu.Lock()
		u.db.rollbacks++
		u.db.mu.Unlock()
	}
	u.active = false
	return nil
}

func (u *fakeUow) DevelopmentRepository() contract.DevelopmentRepository {
	return &fakeDevelopmentRepo{db: u.db}
}
func (u *fakeUow) UnitRepository() contract.UnitRepository { return &fakeUnitRepo{db: u.db} }
func (u *fakeUow) SalesPipelineRepository() contract.SalesPipelineRepository {
	return &fakePipelineRepo{db: u.db}
}
func (u *fakeUow) AnalyticsCounterRepository() contract.AnalyticsCounterRepository {
	return &fakeCounterRepo{db: u.db}
}
func (u *fakeUow) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &fakeChunkRepo{db: u.db}
}
func (u *fakeUow) AssistantExchangeRepository() contract.AssistantExchangeRepository {
	return &fakeExchangeRepo{db: u.db}
}

type fakeDevelopmentRepo struct{ db *memoryDB }

func (r *fakeDevelopmentRepo) Create(ctx context.Context, d *entity.Development) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.developments = append(r.db.developments, d)
	return nil
}

func (r *fakeDevelopmentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Development, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeDevelopmentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Development, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := parseSpecs(specs)
	var out []*entity.Development
	for _, d := range r.db.developments {
		if f.tenant != "" && f.tenant != d.TenantId.String() {
			continue
		}
		if f.id != uuid.Nil && f.id != d.Id {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

type fakeUnitRepo struct{ db *memoryDB }

func (r *fakeUnitRepo) CreateBulk(ctx context.Context, units []*entity.Unit) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.units = append(r.db.units, units...)
	return nil
}

func (r *fakeUnitRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Unit, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := parseSpecs(specs)
	var out []*entity.Unit
	for _, u := range r.db.units {
		dev := u.DevelopmentId
		if f.owns(u.TenantId, &dev) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUnitRepo) CountByStatus(ctx context.Context, specs ...specification.Specification) ([]contract.StatusTotal, error) {
	units, _ := r.FindAll(ctx, specs...)
	counts := map[string]int{}
	for _, u := range units {
		counts[u.Status]++
	}
	out := make([]contract.StatusTotal, 0, len(counts))
	for status, n := range counts {
		out = append(out, contract.StatusTotal{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (r *fakeUnitRepo) SoldPerWeek(ctx context.Context, since time.Time, specs ...specification.Specification) ([]contract.PeriodTotal, error) {
	units, _ := r.FindAll(ctx, specs...)
	counts := map[string]int{}
	for _, u := range units {
		if u.SoldAt == nil || u.SoldAt.Before(since) {
			continue
		}
		y, w := u.SoldAt.ISOWeek()
		counts[fmt.Sprintf("%d-W%02d", y, w)]++
	}
	out := make([]contract.PeriodTotal, 0, len(counts))
	for p, n := range counts {
		out = append(out, contract.PeriodTotal{Period: p, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (r *fakeUnitRepo) PriceStats(ctx context.Context, specs ...specification.Specification) (*contract.PriceStats, error) {
	units, _ := r.FindAll(ctx, specs...)
	stats := &contract.PriceStats{Currency: "EUR"}
	var sum float64
	for _, u := range units {
		if u.Price <= 0 {
			continue
		}
		if stats.Listed == 0 || u.Price < stats.Min {
			stats.Min = u.Price
		}
		if u.Price > stats.Max {
			stats.Max = u.Price
		}
		stats.Listed++
		sum += u.Price
	}
	if stats.Listed > 0 {
		stats.Average = sum / float64(stats.Listed)
	}
	return stats, nil
}

func (r *fakeUnitRepo) PriceByHouseType(ctx context.Context, specs ...specification.Specification) ([]contract.HouseTypeTotal, error) {
	return nil, nil
}

type fakePipelineRepo struct{ db *memoryDB }

func (r *fakePipelineRepo) Create(ctx context.Context, e *entity.SalesPipelineEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.pipeline = append(r.db.pipeline, e)
	return nil
}

func (r *fakePipelineRepo) CountByStage(ctx context.Context, specs ...specification.Specification) ([]contract.StageTotal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failPipeline != nil {
		return nil, r.db.failPipeline
	}
	f := parseSpecs(specs)
	idx := map[string]int{}
	var out []contract.StageTotal
	for _, e := range r.db.pipeline {
		dev := e.DevelopmentId
		if !f.owns(e.TenantId, &dev) {
			continue
		}
		i, ok := idx[e.Stage]
		if !ok {
			i = len(out)
			idx[e.Stage] = i
			out = append(out, contract.StageTotal{Stage: e.Stage})
		}
		out[i].Count++
		out[i].Value += e.Value
	}
	return out, nil
}

type fakeCounterRepo struct{ db *memoryDB }

func (r *fakeCounterRepo) Create(ctx context.Context, c *entity.AnalyticsCounter) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.counters = append(r.db.counters, c)
	return nil
}

func (r *fakeCounterRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsCounter, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := parseSpecs(specs)
	var out []*entity.AnalyticsCounter
	for _, c := range r.db.counters {
		if f.owns(c.TenantId, c.DevelopmentId) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out, nil
}

type fakeChunkRepo struct{ db *memoryDB }

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.chunks = append(r.db.chunks, chunks...)
	return nil
}

func (r *fakeChunkRepo) DeleteByDocument(ctx context.Context, corpusID string, documentID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.chunks[:0]
	for _, c := range r.db.chunks {
		if c.CorpusId == corpusID && c.DocumentId == documentID {
			continue
		}
		kept = append(kept, c)
	}
	r.db.chunks = kept
	return nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := parseSpecs(specs)
	var n int64
	for _, c := range r.db.chunks {
		if f.corpus == "" || f.corpus == c.CorpusId {
			n++
		}
	}
	return n, nil
}

// SearchSimilarWithScore ranks by insertion order inside the corpus.
func (r *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, emb []float32, corpusID string, limit int, threshold float64) ([]*contract.ScoredDocumentChunk, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*contract.ScoredDocumentChunk
	for _, c := range r.db.chunks {
		if c.CorpusId != corpusID {
			continue
		}
		out = append(out, &contract.ScoredDocumentChunk{Chunk: c, Similarity: 0.9 - 0.01*float64(len(out))})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeExchangeRepo struct{ db *memoryDB }

func (r *fakeExchangeRepo) Create(ctx context.Context, e *entity.AssistantExchange) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failExchanges != nil {
		return r.db.failExchanges
	}
	r.db.exchanges = append(r.db.exchanges, e)
	return nil
}

func (r *fakeExchangeRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssistantExchange, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := parseSpecs(specs)
	var out []*entity.AssistantExchange
	for _, e := range r.db.exchanges {
		if f.tenant != "" && f.tenant != e.TenantId.String() {
			continue
		}
		if f.user != "" && f.user != e.UserId.String() {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.offset < len(out) {
		out = out[f.offset:]
	} else {
		out = nil
	}
	if f.limit > 0 && len(out) > f.limit {
		out = out[:f.limit]
	}
	return out, nil
}

type fakeEmbedder struct {
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}}}, nil
}

type sliceTokens struct {
	chunks []string
	pos    int
	err    error
}

func (s *sliceTokens) Next() bool {
	if s.pos >= len(s.chunks) {
		return false
	}
	s.pos++
	return true
}
func (s *sliceTokens) Current() string { return s.chunks[s.pos-1] }
func (s *sliceTokens) Err() error {
	if s.pos >= len(s.chunks) {
		return s.err
	}
	return nil
}
func (s *sliceTokens) Close() error { return nil }

// recordingLLM streams a fixed answer and keeps the last prompt it was sent.
type recordingLLM struct {
	mu       sync.Mutex
	chunks   []string
	err      error
	messages []llm.Message
	calls    int
}

func (r *recordingLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (r *recordingLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (r *recordingLLM) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (llm.TokenStream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.messages = append([]llm.Message(nil), history...)
	return &sliceTokens{chunks: r.chunks, err: r.err}, nil
}

func (r *recordingLLM) systemPrompt() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	system, _ := llm.SplitSystem(r.messages)
	return system
}
