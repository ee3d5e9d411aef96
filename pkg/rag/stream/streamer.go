package stream

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/metrics"
	"github.com/sam-evolv/property-assistant-sub010/pkg/llm"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/functions"
)

const DefaultErrorMessage = "The assistant could not finish this answer. Please try again."

const (
	OutcomeDone      = "done"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Input is everything the streamer needs besides the model.
type Input struct {
	Messages     []llm.Message
	Sources      []Source
	Chart        *functions.Chart
	Actions      []functions.Action
	IsRegulatory bool
}

type Option func(*Streamer)

// WithErrorMessage sets the text of the Error frame shown to the caller.
func WithErrorMessage(msg string) Option {
	return func(s *Streamer) {
		s.errorMessage = msg
	}
}

// WithGenerationOptions passes provider options to every ChatStream call.
func WithGenerationOptions(opts ...llm.Option) Option {
	return func(s *Streamer) {
		s.genOpts = append(s.genOpts, opts...)
	}
}

type Streamer struct {
	llm          llm.LLMProvider
	logger       logger.ILogger
	errorMessage string
	genOpts      []llm.Option
}

func NewStreamer(provider llm.LLMProvider, log logger.ILogger, opts ...Option) *Streamer {
	s := &Streamer{
		llm:          provider,
		logger:       log,
		errorMessage: DefaultErrorMessage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stream returns a lazy frame iterator. Nothing is sent upstream until the
// first call to Next.
func (s *Streamer) Stream(ctx context.Context, in Input) *FrameStream {
	ctx, cancel := context.WithCancel(ctx)
	return &FrameStream{
		streamer: s,
		ctx:      ctx,
		cancel:   cancel,
		in:       in,
	}
}

// Failed returns a stream that yields a single Error frame for err. It is
// used when the request fails after the caller has committed to streaming.
func (s *Streamer) Failed(ctx context.Context, err error) *FrameStream {
	fs := s.Stream(ctx, Input{})
	fs.initErr = err
	return fs
}

type phase int

const (
	phaseOpen phase = iota
	phaseTokens
	phaseTrailer
)

// FrameStream is a pull iterator over the frames of one answer. The last
// frame is always exactly one Done or one Error, unless the stream was
// cancelled, in which case it simply stops.
//
//	for fs.Next() {
//		f := fs.Frame()
//	}
type FrameStream struct {
	streamer *Streamer
	ctx      context.Context
	cancel   context.CancelFunc
	in       Input
	initErr  error

	mu       sync.Mutex
	phase    phase
	tokens   llm.TokenStream
	trailer  []Frame
	current  Frame
	finished bool
	outcome  string
	answer   strings.Builder
	onFinish func(answer, outcome string)
}

// Next advances to the next frame. It blocks while waiting for the model.
func (fs *FrameStream) Next() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.finished {
		return false
	}
	if fs.ctx.Err() != nil {
		fs.abort()
		return false
	}

	switch fs.phase {
	case phaseOpen:
		if fs.initErr != nil {
			return fs.fail(fs.initErr)
		}
		tokens, err := fs.streamer.llm.ChatStream(fs.ctx, fs.in.Messages, fs.streamer.genOpts...)
		if err != nil {
			if fs.ctx.Err() != nil {
				fs.abort()
				return false
			}
			return fs.fail(err)
		}
		fs.tokens = tokens
		fs.phase = phaseTokens
		fallthrough

	case phaseTokens:
		for fs.tokens.Next() {
			if fs.ctx.Err() != nil {
				fs.abort()
				return false
			}
			chunk := fs.tokens.Current()
			if chunk == "" {
				continue
			}
			fs.answer.WriteString(chunk)
			return fs.emit(TokenFrame(chunk))
		}

		err := fs.tokens.Err()
		fs.closeTokens()
		if fs.ctx.Err() != nil {
			fs.abort()
			return false
		}
		if err != nil {
			return fs.fail(err)
		}
		fs.trailer = fs.buildTrailer()
		fs.phase = phaseTrailer
		fallthrough

	case phaseTrailer:
		f := fs.trailer[0]
		fs.trailer = fs.trailer[1:]
		if f.Type == TypeDone {
			fs.finish(OutcomeDone)
		}
		return fs.emit(f)
	}
	return false
}

// Frame returns the frame produced by the last successful Next.
func (fs *FrameStream) Frame() Frame {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.current
}

// Close cancels the upstream call and stops the stream. It is safe to call
// concurrently with Next and more than once.
func (fs *FrameStream) Close() error {
	fs.cancel()

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.finished {
		fs.abort()
	}
	return nil
}

// OnFinish registers fn to run once when the stream ends, whatever the
// outcome. fn runs with the stream locked and must not call back into it.
func (fs *FrameStream) OnFinish(fn func(answer, outcome string)) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.onFinish = fn
}

// Answer is the text of every Token frame emitted so far.
func (fs *FrameStream) Answer() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.answer.String()
}

// Outcome is done, error or cancelled once the stream has finished, and
// empty before that.
func (fs *FrameStream) Outcome() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.outcome
}

func (fs *FrameStream) buildTrailer() []Frame {
	trailer := make([]Frame, 0, 5)
	if len(fs.in.Sources) > 0 {
		trailer = append(trailer, SourcesFrame(fs.in.Sources))
	}
	if fs.in.Chart != nil {
		trailer = append(trailer, ChartFrame(fs.in.Chart))
	}
	if len(fs.in.Actions) > 0 {
		trailer = append(trailer, ActionsFrame(fs.in.Actions))
	}
	if fs.in.IsRegulatory {
		trailer = append(trailer, DisclaimerFrame())
	}
	return append(trailer, DoneFrame())
}

func (fs *FrameStream) emit(f Frame) bool {
	fs.current = f
	metrics.StreamFrames.WithLabelValues(string(f.Type)).Inc()
	return true
}

// fail ends the stream with a single Error frame. The upstream error is
// logged, never sent to the caller.
func (fs *FrameStream) fail(err error) bool {
	fs.closeTokens()
	fs.streamer.logger.Error("STREAM", "Generation failed", map[string]interface{}{
		"error":         err.Error(),
		"tokens_so_far": fs.answer.Len() > 0,
		"timeout":       errors.Is(err, context.DeadlineExceeded),
	})
	fs.finish(OutcomeError)
	return fs.emit(ErrorFrame(fs.streamer.errorMessage))
}

func (fs *FrameStream) abort() {
	fs.closeTokens()
	fs.finish(OutcomeCancelled)
	fs.streamer.logger.Debug("STREAM", "Stream cancelled", map[string]interface{}{
		"answer_chars": fs.answer.Len(),
	})
}

func (fs *FrameStream) finish(outcome string) {
	fs.finished = true
	fs.outcome = outcome
	fs.cancel()
	metrics.StreamOutcomes.WithLabelValues(outcome).Inc()
	if fs.onFinish != nil {
		fs.onFinish(fs.answer.String(), outcome)
	}
}

func (fs *FrameStream) closeTokens() {
	if fs.tokens == nil {
		return
	}
	if err := fs.tokens.Close(); err != nil {
		fs.streamer.logger.Debug("STREAM", "Closing token stream", map[string]interface{}{"error": err.Error()})
	}
	fs.tokens = nil
}
