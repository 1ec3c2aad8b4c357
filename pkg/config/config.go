package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Zoom     ZoomConfig
	OpenAI   OpenAIConfig
	Assembly AssemblyAIConfig
	Analysis AnalysisConfig
	Pipeline PipelineConfig
	Report   ReportConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Mail     MailConfig
	Redis    RedisConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// ZoomConfig holds webhook and download credential settings for the
// conferencing platform
type ZoomConfig struct {
	WebhookSecret    string        `envconfig:"ZOOM_WEBHOOK_SECRET"`
	VerifySignature  bool          `envconfig:"ZOOM_VERIFY_SIGNATURE" default:"true"`
	SignatureMaxSkew time.Duration `envconfig:"ZOOM_SIGNATURE_MAX_SKEW" default:"5m"`
	Events           []string      `envconfig:"ZOOM_EVENTS" default:"recording.transcript_completed,recording.completed"`
	AuthMode         string        `envconfig:"ZOOM_AUTH_MODE" default:"payload"` // "payload" or "oauth"
	AccountID        string        `envconfig:"ZOOM_ACCOUNT_ID"`
	ClientID         string        `envconfig:"ZOOM_CLIENT_ID"`
	ClientSecret     string        `envconfig:"ZOOM_CLIENT_SECRET"`
	TokenURL         string        `envconfig:"ZOOM_TOKEN_URL" default:"https://zoom.us/oauth/token"`
}

// OpenAIConfig holds settings for the OpenAI-compatible endpoint used for
// Whisper transcription and chat analysis
type OpenAIConfig struct {
	APIKey       string `envconfig:"OPENAI_API_KEY"`
	BaseURL      string `envconfig:"OPENAI_BASE_URL"`
	ChatModel    string `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o"`
	WhisperModel string `envconfig:"OPENAI_WHISPER_MODEL" default:"whisper-1"`
}

// AssemblyAIConfig holds AssemblyAI settings
type AssemblyAIConfig struct {
	APIKey string `envconfig:"ASSEMBLYAI_API_KEY"`
}

// AnalysisConfig controls the framework prompt call
type AnalysisConfig struct {
	Enabled     bool    `envconfig:"ANALYSIS_ENABLED" default:"true"`
	Mode        string  `envconfig:"ANALYSIS_MODE" default:"json"` // "json" or "text"
	Temperature float32 `envconfig:"ANALYSIS_TEMPERATURE" default:"0.5"`
	MaxTokens   int     `envconfig:"ANALYSIS_MAX_TOKENS" default:"1500"`
}

// PipelineConfig controls background processing
type PipelineConfig struct {
	STTProvider     string        `envconfig:"STT_PROVIDER" default:"openai"` // "openai" or "assemblyai"
	AudioEnabled    bool          `envconfig:"PIPELINE_AUDIO_ENABLED" default:"true"`
	MaxUploadBytes  int64         `envconfig:"PIPELINE_MAX_UPLOAD_BYTES" default:"26214400"`
	SegmentSeconds  int           `envconfig:"PIPELINE_SEGMENT_SECONDS" default:"300"`
	FFmpegPath      string        `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	TempDir         string        `envconfig:"PIPELINE_TEMP_DIR"`
	Workers         int           `envconfig:"PIPELINE_WORKERS" default:"2"`
	QueueSize       int           `envconfig:"PIPELINE_QUEUE_SIZE" default:"32"`
	JobTimeout      time.Duration `envconfig:"PIPELINE_JOB_TIMEOUT" default:"30m"`
	RetryMaxElapsed time.Duration `envconfig:"PIPELINE_RETRY_MAX_ELAPSED" default:"30s"`
	DownloadTimeout time.Duration `envconfig:"PIPELINE_DOWNLOAD_TIMEOUT" default:"5m"`
}

// ReportConfig controls report rendering
type ReportConfig struct {
	Format       string `envconfig:"REPORT_FORMAT" default:"text"` // "text", "html" or "xlsx"
	TemplatePath string `envconfig:"REPORT_TEMPLATE_PATH"`
	Timezone     string `envconfig:"REPORT_TIMEZONE" default:"UTC"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Backend         string `envconfig:"STORAGE_BACKEND" default:"drive"` // "drive" or "minio"
	Endpoint        string `envconfig:"STORAGE_ENDPOINT"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY"`
	BucketName      string `envconfig:"STORAGE_BUCKET"`
	Prefix          string `envconfig:"STORAGE_PREFIX" default:"reports/"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"true"`
}

// DriveConfig holds Google Drive destination and credentials
type DriveConfig struct {
	FolderID           string `envconfig:"DRIVE_FOLDER_ID"`
	ClientID           string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret       string `envconfig:"GOOGLE_CLIENT_SECRET"`
	RefreshToken       string `envconfig:"GOOGLE_REFRESH_TOKEN"`
	ServiceAccountFile string `envconfig:"GOOGLE_SERVICE_ACCOUNT_FILE"`
}

// MailConfig holds SMTP relay settings; mail is disabled when Host is empty
type MailConfig struct {
	Host       string   `envconfig:"SMTP_HOST"`
	Port       int      `envconfig:"SMTP_PORT" default:"587"`
	Username   string   `envconfig:"SMTP_USERNAME"`
	Password   string   `envconfig:"SMTP_PASSWORD"`
	From       string   `envconfig:"MAIL_FROM"`
	Recipients []string `envconfig:"MAIL_RECIPIENTS"`
}

// RedisConfig holds Redis configuration; the in-memory registry is used
// when Addr is empty
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	return FromEnv()
}

// FromEnv reads and validates configuration from the process environment
// without touching .env files
func FromEnv() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Zoom.WebhookSecret == "" {
		return fmt.Errorf("ZOOM_WEBHOOK_SECRET is required")
	}

	switch c.Zoom.AuthMode {
	case "payload":
	case "oauth":
		if c.Zoom.AccountID == "" || c.Zoom.ClientID == "" || c.Zoom.ClientSecret == "" {
			return fmt.Errorf("ZOOM_ACCOUNT_ID, ZOOM_CLIENT_ID and ZOOM_CLIENT_SECRET are required when ZOOM_AUTH_MODE=oauth")
		}
	default:
		return fmt.Errorf("ZOOM_AUTH_MODE must be payload or oauth, got %q", c.Zoom.AuthMode)
	}

	switch c.Pipeline.STTProvider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	case "assemblyai":
		if c.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required when STT_PROVIDER=assemblyai")
		}
		if c.Analysis.Enabled && c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when ANALYSIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("STT_PROVIDER must be openai or assemblyai, got %q", c.Pipeline.STTProvider)
	}

	if c.Analysis.Mode != "json" && c.Analysis.Mode != "text" {
		return fmt.Errorf("ANALYSIS_MODE must be json or text, got %q", c.Analysis.Mode)
	}

	switch c.Report.Format {
	case "text", "html", "xlsx":
	default:
		return fmt.Errorf("REPORT_FORMAT must be text, html or xlsx, got %q", c.Report.Format)
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE is invalid: %w", err)
	}

	switch c.Storage.Backend {
	case "drive":
		if c.Drive.FolderID == "" {
			return fmt.Errorf("DRIVE_FOLDER_ID is required")
		}
		hasRefresh := c.Drive.ClientID != "" && c.Drive.ClientSecret != "" && c.Drive.RefreshToken != ""
		if !hasRefresh && c.Drive.ServiceAccountFile == "" {
			return fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN (or GOOGLE_SERVICE_ACCOUNT_FILE) are required")
		}
	case "minio":
		if c.Storage.Endpoint == "" || c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" || c.Storage.BucketName == "" {
			return fmt.Errorf("STORAGE_ENDPOINT, STORAGE_ACCESS_KEY, STORAGE_SECRET_KEY and STORAGE_BUCKET are required when STORAGE_BACKEND=minio")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be drive or minio, got %q", c.Storage.Backend)
	}

	if c.Mail.Enabled() {
		if c.Mail.From == "" {
			return fmt.Errorf("MAIL_FROM is required when SMTP_HOST is set")
		}
		if len(c.Mail.Recipients) == 0 {
			return fmt.Errorf("MAIL_RECIPIENTS is required when SMTP_HOST is set")
		}
	}

	if c.Pipeline.SegmentSeconds <= 0 {
		return fmt.Errorf("PIPELINE_SEGMENT_SECONDS must be positive")
	}
	if c.Pipeline.Workers <= 0 || c.Pipeline.QueueSize <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS and PIPELINE_QUEUE_SIZE must be positive")
	}

	return nil
}

// Enabled reports whether an SMTP relay is configured
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.Host) != ""
}

// GetServerAddr returns the listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
