// Package gdrive stores reports in a shared Google Drive folder
package gdrive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
)

// Scope lets the service list and create files in the destination folder
const Scope = drive.DriveScope

// findPageSize caps one lookup; a session has at most a few reports
const findPageSize = 50

// Store uploads reports into one Drive folder
type Store struct {
	files    *drive.FilesService
	folderID string
	logger   *zap.Logger
}

// NewStore creates a Drive client authenticated by ts
func NewStore(ctx context.Context, ts oauth2.TokenSource, folderID string, logger *zap.Logger, opts ...option.ClientOption) (*Store, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	return newStore(ctx, folderID, logger, opts...)
}

func newStore(ctx context.Context, folderID string, logger *zap.Logger, opts ...option.ClientOption) (*Store, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{files: srv.Files, folderID: folderID, logger: logger}, nil
}

// Find returns the names of non-trashed files in the folder whose name has a
// term starting with entityKey
func (s *Store) Find(ctx context.Context, entityKey string) ([]string, error) {
	if entityKey == "" {
		return nil, nil
	}
	q := fmt.Sprintf("name contains '%s' and '%s' in parents and trashed = false",
		escapeQuery(entityKey), escapeQuery(s.folderID))

	list, err := s.files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(findPageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search drive: %w", err)
	}

	names := make([]string, 0, len(list.Files))
	for _, f := range list.Files {
		names = append(names, f.Name)
	}
	return names, nil
}

// Upload creates the report in the folder and returns its web link
func (s *Store) Upload(ctx context.Context, report *entities.Report) (string, error) {
	file := &drive.File{
		Name:     report.Filename,
		Parents:  []string{s.folderID},
		MimeType: report.MimeType,
	}

	created, err := s.files.Create(file).
		Media(bytes.NewReader(report.Body), googleapi.ContentType(report.MimeType)).
		Fields("id, webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload to drive: %w", err)
	}

	s.logger.Info("☁️ Report uploaded to drive",
		zap.String("file_id", created.Id),
		zap.String("filename", report.Filename),
	)

	if created.WebViewLink != "" {
		return created.WebViewLink, nil
	}
	return "https://drive.google.com/file/d/" + created.Id + "/view", nil
}

// escapeQuery escapes a literal for the Drive query language
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
