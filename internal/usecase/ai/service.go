package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/pkg/jobcontext"
)

// Analysis modes
const (
	ModeJSON = "json"
	ModeText = "text"
)

// Transcriber turns one audio file into text
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// ChatCompleter runs one chat completion
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string, jsonMode bool) (string, error)
}

// Options tune the service
type Options struct {
	// Mode is ModeJSON or ModeText
	Mode  string
	Retry jobcontext.RetryPolicy
}

// Service runs speech-to-text over segments and the framework analysis
// over a transcript
type Service struct {
	transcriber Transcriber
	chat        ChatCompleter
	parser      *Parser
	opts        Options
	logger      *zap.Logger
}

// NewService constructs a new AI service. chat may be nil, which disables
// the framework analysis.
func NewService(transcriber Transcriber, chat ChatCompleter, opts Options, logger *zap.Logger) *Service {
	if opts.Mode == "" {
		opts.Mode = ModeJSON
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		transcriber: transcriber,
		chat:        chat,
		parser:      NewParser(),
		opts:        opts,
		logger:      logger,
	}
}

// Transcribe runs speech-to-text over the segments strictly in order and
// joins the results with a newline. Any segment failure fails the whole run.
func (s *Service) Transcribe(ctx context.Context, segments []entities.TranscriptSegment) (string, error) {
	if s.transcriber == nil {
		return "", fmt.Errorf("speech-to-text is not configured")
	}

	texts := make([]string, 0, len(segments))
	for i := range segments {
		seg := &segments[i]
		start := time.Now()

		text, err := jobcontext.RetryWithResult(ctx, s.opts.Retry, func() (string, error) {
			return s.transcriber.Transcribe(ctx, seg.Path)
		})
		if err != nil {
			return "", fmt.Errorf("segment %d: %w", seg.Index, err)
		}
		seg.Text = text
		texts = append(texts, text)

		s.logger.Info("🎙️ Segment transcribed",
			zap.Int("segment", seg.Index),
			zap.Int("segments_total", len(segments)),
			zap.Int("text_length", len(text)),
			zap.Duration("took", time.Since(start)),
		)
	}

	return strings.Join(texts, "\n"), nil
}

// Enabled reports whether the framework analysis runs
func (s *Service) Enabled() bool {
	return s.chat != nil
}

// Analyze reviews the transcript against the consultation framework. It never
// fails: a model error yields a degraded analysis whose text explains it.
func (s *Service) Analyze(ctx context.Context, transcript string) *entities.ConsultAnalysis {
	if s.chat == nil {
		return nil
	}

	jsonMode := s.opts.Mode == ModeJSON
	system := TextPrompt()
	if jsonMode {
		system = JSONPrompt()
	}

	reply, err := jobcontext.RetryWithResult(ctx, s.opts.Retry, func() (string, error) {
		return s.chat.Complete(ctx, system, transcript, jsonMode)
	})
	if err != nil {
		s.logger.Error("❌ Framework analysis failed",
			zap.String("mode", s.opts.Mode),
			zap.Error(err),
		)
		return entities.NewDegradedAnalysis(err)
	}

	if jsonMode {
		analysis, perr := s.parser.ParseAnalysis(reply)
		if perr == nil {
			if analysis.Provider == "" {
				analysis.Provider = ExtractProvider(reply)
			}
			return analysis
		}
		// Some models ignore the JSON instruction
		s.logger.Warn("⚠️ Analysis reply is not valid JSON, keeping free-form text",
			zap.Error(perr),
			zap.String("raw_response", reply[:min(500, len(reply))]),
		)
	}

	return s.parser.ParseText(reply)
}
