package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/consult-review/internal/infrastructure/cache"
	"github.com/johnquangdev/consult-review/internal/infrastructure/external/gdrive"
	"github.com/johnquangdev/consult-review/internal/infrastructure/external/oauth"
	"github.com/johnquangdev/consult-review/internal/infrastructure/external/zoom"
	"github.com/johnquangdev/consult-review/internal/infrastructure/mail"
	"github.com/johnquangdev/consult-review/internal/infrastructure/media"
	"github.com/johnquangdev/consult-review/internal/infrastructure/storage"
	aiuse "github.com/johnquangdev/consult-review/internal/usecase/ai"
	"github.com/johnquangdev/consult-review/internal/usecase/report"
	"github.com/johnquangdev/consult-review/internal/usecase/review"
	pkgai "github.com/johnquangdev/consult-review/pkg/ai"
	"github.com/johnquangdev/consult-review/pkg/config"
	"github.com/johnquangdev/consult-review/pkg/jobcontext"
	"github.com/johnquangdev/consult-review/pkg/metrics"
)

// registryGrace outlives the job timeout so a claim never expires under a
// running job
const registryGrace = 5 * time.Minute

type dependencies struct {
	registry review.Registry
	pipeline *review.Service
	closers  []func() error
}

// Close releases long-lived clients
func (d *dependencies) Close() {
	for _, c := range d.closers {
		c()
	}
}

func buildDependencies(ctx context.Context, cfg *config.Config, m *metrics.Metrics, zl *zap.Logger) (*dependencies, error) {
	deps := &dependencies{}
	retry := jobcontext.DefaultRetryPolicy(cfg.Pipeline.RetryMaxElapsed)

	registry, err := newRegistry(ctx, cfg, deps, zl)
	if err != nil {
		return nil, err
	}
	deps.registry = registry

	credentials, err := zoom.NewCredentialProvider(cfg.Zoom)
	if err != nil {
		return nil, err
	}
	downloader := zoom.NewDownloader(credentials, cfg.Pipeline.TempDir, cfg.Pipeline.DownloadTimeout, retry, zl)
	segmenter := media.NewSegmenter(cfg.Pipeline.FFmpegPath, cfg.Pipeline.TempDir, zl)

	analyzer := newAnalyzer(cfg, retry, zl)

	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report timezone: %w", err)
	}
	renderer, err := report.NewRenderer(cfg.Report.Format, cfg.Report.TemplatePath, loc)
	if err != nil {
		return nil, err
	}

	store, err := newReportStore(ctx, cfg, zl)
	if err != nil {
		return nil, err
	}

	var notifier review.Notifier = mail.NewNoopNotifier(zl)
	if cfg.Mail.Enabled() {
		notifier = mail.NewSMTPNotifier(cfg.Mail, zl)
	}

	deps.pipeline = review.NewService(downloader, segmenter, analyzer, renderer, store, notifier, review.Options{
		AudioEnabled:   cfg.Pipeline.AudioEnabled,
		MaxUploadBytes: cfg.Pipeline.MaxUploadBytes,
		SegmentSeconds: cfg.Pipeline.SegmentSeconds,
	}, m, zl)

	zl.Info("✅ Dependencies initialized",
		zap.String("stt_provider", cfg.Pipeline.STTProvider),
		zap.Bool("analysis_enabled", cfg.Analysis.Enabled),
		zap.String("report_format", cfg.Report.Format),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Bool("mail_enabled", cfg.Mail.Enabled()),
	)
	return deps, nil
}

func newRegistry(ctx context.Context, cfg *config.Config, deps *dependencies, zl *zap.Logger) (review.Registry, error) {
	ttl := cfg.Pipeline.JobTimeout + registryGrace
	if cfg.Redis.Addr == "" {
		zl.Info("📦 Using in-memory in-flight registry")
		return cache.NewMemoryRegistry(ttl), nil
	}

	zl.Info("📦 Connecting to Redis...", zap.String("addr", cfg.Redis.Addr))
	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	deps.closers = append(deps.closers, client.Close)
	return cache.NewRedisRegistry(client, ttl), nil
}

func newAnalyzer(cfg *config.Config, retry jobcontext.RetryPolicy, zl *zap.Logger) *aiuse.Service {
	var transcriber aiuse.Transcriber
	var chat aiuse.ChatCompleter

	if cfg.OpenAI.APIKey != "" {
		cli := pkgai.NewOpenAIClient(cfg.OpenAI)
		if cfg.Pipeline.STTProvider == "openai" {
			transcriber = pkgai.NewWhisperTranscriber(cli, cfg.OpenAI.WhisperModel)
		}
		if cfg.Analysis.Enabled {
			chat = pkgai.NewChatClient(cli, cfg.OpenAI.ChatModel, cfg.Analysis.Temperature, cfg.Analysis.MaxTokens)
		}
	}
	if cfg.Pipeline.STTProvider == "assemblyai" {
		transcriber = pkgai.NewAssemblyAITranscriber(cfg.Assembly.APIKey, "")
	}

	return aiuse.NewService(transcriber, chat, aiuse.Options{
		Mode:  cfg.Analysis.Mode,
		Retry: retry,
	}, zl)
}

func newReportStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (review.ReportStore, error) {
	switch cfg.Storage.Backend {
	case "minio":
		zl.Info("🪣 Using MinIO report store", zap.String("bucket", cfg.Storage.BucketName))
		return storage.NewMinIOStore(ctx, cfg.Storage, zl)
	case "drive":
		var (
			ts  oauth2.TokenSource
			err error
		)
		if cfg.Drive.RefreshToken != "" {
			ts = oauth.NewGoogleProvider(cfg.Drive.ClientID, cfg.Drive.ClientSecret, gdrive.Scope).
				TokenSource(context.Background(), cfg.Drive.RefreshToken)
		} else {
			ts, err = oauth.ServiceAccountTokenSource(context.Background(), cfg.Drive.ServiceAccountFile, gdrive.Scope)
			if err != nil {
				return nil, err
			}
		}
		if err := oauth.CheckTokenSource(ts); err != nil {
			return nil, err
		}
		zl.Info("☁️ Using Google Drive report store")
		return gdrive.NewStore(context.Background(), ts, cfg.Drive.FolderID, zl)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}
