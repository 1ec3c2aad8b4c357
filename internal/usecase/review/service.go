package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/internal/usecase/ai"
	"github.com/johnquangdev/consult-review/internal/usecase/evaluation"
	"github.com/johnquangdev/consult-review/internal/usecase/report"
	"github.com/johnquangdev/consult-review/pkg/metrics"
)

// Pipeline stages, used as metric labels
const (
	StageLookup     = "lookup"
	StageDownload   = "download"
	StageTranscribe = "transcribe"
	StageAnalyze    = "analyze"
	StageRender     = "render"
	StageUpload     = "upload"
	StageNotify     = "notify"
)

// Run outcomes
const (
	OutcomeDelivered = "delivered"
	OutcomeDuplicate = "duplicate"
	OutcomeDegraded  = "degraded"
	OutcomeFailed    = "failed"
)

// Options tune the pipeline
type Options struct {
	// AudioEnabled allows speech-to-text of audio artifacts
	AudioEnabled bool
	// MaxUploadBytes is the largest audio file sent to speech-to-text whole
	MaxUploadBytes int64
	SegmentSeconds int
}

// Service runs one review end to end: lookup, download, transcription,
// evaluation, analysis, rendering and delivery
type Service struct {
	downloader Downloader
	segmenter  Segmenter
	analyzer   Analyzer
	renderer   report.Renderer
	store      ReportStore
	notifier   Notifier
	opts       Options
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires the pipeline collaborators
func NewService(
	downloader Downloader,
	segmenter Segmenter,
	analyzer Analyzer,
	renderer report.Renderer,
	store ReportStore,
	notifier Notifier,
	opts Options,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	if m == nil {
		m = metrics.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		downloader: downloader,
		segmenter:  segmenter,
		analyzer:   analyzer,
		renderer:   renderer,
		store:      store,
		notifier:   notifier,
		opts:       opts,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes one job. Failures are reported through the notifier; the
// returned error only describes why the run stopped.
func (s *Service) Run(ctx context.Context, job *entities.ReviewJob) error {
	log := s.logger.With(
		zap.String("job_id", job.ID.String()),
		zap.String("entity_id", job.Identity.EntityID),
	)
	outcome := OutcomeFailed
	defer func() {
		s.metrics.PipelineRunsTotal.WithLabelValues(outcome).Inc()
	}()

	// Idempotence check runs before any paid call
	job.MarkAs(entities.ReviewJobStatusDownloading)
	var existing []string
	err := s.stage(StageLookup, func() (err error) {
		existing, err = s.store.Find(ctx, report.EntityKey(job.Identity.EntityID))
		return err
	})
	if err != nil {
		return s.fail(ctx, log, job, fmt.Errorf("lookup existing report: %w", err), nil)
	}
	if report.Delivered(existing, job.Identity.EntityID) {
		outcome = OutcomeDuplicate
		job.MarkAsFinished(entities.ReviewJobStatusDuplicate)
		log.Info("⏭️ Report already exists, skipping")
		return nil
	}

	transcript, err := s.transcript(ctx, log, job)
	if err != nil {
		return s.fail(ctx, log, job, err, nil)
	}

	job.MarkAs(entities.ReviewJobStatusAnalyzing)
	result := evaluation.Evaluate(transcript)

	var analysis *entities.ConsultAnalysis
	_ = s.stage(StageAnalyze, func() error {
		analysis = s.analyzer.Analyze(ctx, transcript)
		return nil
	})

	data := report.Data{
		Identity:    job.Identity,
		Evaluation:  result,
		Analysis:    analysis,
		Transcript:  transcript,
		GeneratedAt: s.now(),
	}

	var rep *entities.Report
	err = s.stage(StageRender, func() (err error) {
		rep, err = s.renderer.Render(data)
		return err
	})
	if err != nil {
		return s.fail(ctx, log, job, fmt.Errorf("render report: %w", err), nil)
	}

	job.MarkAs(entities.ReviewJobStatusDelivering)

	var location string
	err = s.stage(StageUpload, func() (err error) {
		location, err = s.store.Upload(ctx, rep)
		return err
	})

	// A degraded report is stored under a failure name that the lookup
	// ignores, so a redelivery can still produce the real report
	if data.Degraded() {
		outcome = OutcomeDegraded
		if err != nil {
			log.Error("❌ Failed to upload failure report", zap.Error(err))
		}
		s.notifyFailure(ctx, log, job, "analysis failed: "+analysis.Error, rep)
		job.MarkAsFinished(entities.ReviewJobStatusDegraded)
		log.Warn("⚠️ Review degraded, failure report delivered",
			zap.String("reason", analysis.Error),
			zap.String("filename", rep.Filename),
			zap.String("location", location),
		)
		return nil
	}
	if err != nil {
		return s.fail(ctx, log, job, fmt.Errorf("upload report: %w", err), rep)
	}

	_ = s.stage(StageNotify, func() error {
		if err := s.notifier.NotifySuccess(ctx, job.Identity, rep, location); err != nil {
			log.Error("❌ Failed to send success mail", zap.Error(err))
		}
		return nil
	})

	outcome = OutcomeDelivered
	job.MarkAsFinished(entities.ReviewJobStatusCompleted)
	log.Info("✅ Review delivered",
		zap.String("filename", rep.Filename),
		zap.String("location", location),
		zap.Bool("proceed", result.Proceed),
		zap.Int("issues", len(result.Issues)),
		zap.Duration("took", job.Elapsed()),
	)
	return nil
}

// transcript downloads the artifact and turns it into text
func (s *Service) transcript(ctx context.Context, log *zap.Logger, job *entities.ReviewJob) (string, error) {
	ref := job.Download
	if ref.FileType.IsAudio() && !s.opts.AudioEnabled {
		return "", fmt.Errorf("%w: audio transcription disabled", entities.ErrNoRecordingFile)
	}

	var artifact *entities.Artifact
	err := s.stage(StageDownload, func() (err error) {
		artifact, err = s.downloader.Fetch(ctx, ref)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", entities.ErrDownloadFailed, err)
	}
	defer os.Remove(artifact.Path)

	log.Info("📥 Artifact downloaded",
		zap.String("file_type", string(artifact.FileType)),
		zap.Int64("size", artifact.Size),
	)

	if artifact.IsText() {
		raw, err := os.ReadFile(artifact.Path)
		if err != nil {
			return "", fmt.Errorf("read transcript: %w", err)
		}
		text := ai.CleanTranscript(string(raw))
		if text == "" {
			return "", entities.ErrEmptyTranscript
		}
		return text, nil
	}

	segments := []entities.TranscriptSegment{{Index: 0, Path: artifact.Path}}
	if s.opts.MaxUploadBytes > 0 && artifact.Size > s.opts.MaxUploadBytes {
		split, cleanup, err := s.segmenter.Split(ctx, artifact.Path, s.opts.SegmentSeconds)
		if err != nil {
			return "", fmt.Errorf("%w: %w", entities.ErrSegmentationFailed, err)
		}
		defer cleanup()
		segments = split

		log.Info("✂️ Artifact split",
			zap.Int("segments", len(segments)),
			zap.Int("segment_seconds", s.opts.SegmentSeconds),
		)
	}

	var text string
	err = s.stage(StageTranscribe, func() (err error) {
		text, err = s.analyzer.Transcribe(ctx, segments)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	if text == "" {
		return "", entities.ErrEmptyTranscript
	}
	return text, nil
}

func (s *Service) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return err
}

func (s *Service) fail(ctx context.Context, log *zap.Logger, job *entities.ReviewJob, err error, rep *entities.Report) error {
	job.MarkAsFailed(err.Error())
	log.Error("❌ Review failed", zap.Error(err))
	s.notifyFailure(ctx, log, job, err.Error(), rep)
	return err
}

func (s *Service) notifyFailure(ctx context.Context, log *zap.Logger, job *entities.ReviewJob, reason string, rep *entities.Report) {
	// The job context may already be done; the failure mail still goes out
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
	}
	if err := s.notifier.NotifyFailure(ctx, job.Identity, reason, rep); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("❌ Failed to send failure mail", zap.Error(err))
	}
}
