package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mhs-edu/scheduler-api/internal/dto"
	"github.com/mhs-edu/scheduler-api/pkg/config"
	appErrors "github.com/mhs-edu/scheduler-api/pkg/errors"
	"github.com/mhs-edu/scheduler-api/pkg/storage"
)

type termScheduleExporter interface {
	ExportTermSchedule(ctx context.Context, termID, format string) ([]byte, string, string, error)
}

// ExportArchiveService stores rendered timetable exports on disk and hands
// out signed, expiring download tokens. Stale files are swept on the link
// TTL cadence.
type ExportArchiveService struct {
	exporter termScheduleExporter
	store    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	linkTTL  time.Duration
}

// NewExportArchiveService builds the service and starts the cleanup sweep.
func NewExportArchiveService(ctx context.Context, exporter termScheduleExporter, cfg config.ExportConfig, logger *zap.Logger) (*ExportArchiveService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := storage.NewLocalStorage(cfg.Dir)
	if err != nil {
		return nil, err
	}
	s := &ExportArchiveService{
		exporter: exporter,
		store:    store,
		signer:   storage.NewSignedURLSigner(cfg.SignSecret, cfg.LinkTTL),
		logger:   logger,
		linkTTL:  cfg.LinkTTL,
	}
	go s.sweep(ctx)
	return s, nil
}

// Archive renders the term timetable, stores it and returns a signed token.
func (s *ExportArchiveService) Archive(ctx context.Context, termID, format string) (*dto.ExportArchiveView, error) {
	payload, filename, _, err := s.exporter.ExportTermSchedule(ctx, termID, format)
	if err != nil {
		return nil, err
	}

	relPath := path.Join(termID, fmt.Sprintf("%d-%s", time.Now().Unix(), filename))
	if _, err := s.store.Save(relPath, payload); err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	token, expiresAt, err := s.signer.Generate(uuid.NewString(), relPath)
	if err != nil {
		return nil, fmt.Errorf("sign export link: %w", err)
	}
	return &dto.ExportArchiveView{
		Token:     token,
		Filename:  filename,
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve validates a download token and returns the stored file's absolute
// path with its display name and content type.
func (s *ExportArchiveService) Resolve(token string) (filePath, filename, contentType string, err error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", "", "", appErrors.Clone(appErrors.ErrNotFound, "download link is invalid or expired")
	}
	filename = path.Base(relPath)
	if i := strings.Index(filename, "-"); i >= 0 && i+1 < len(filename) {
		filename = filename[i+1:]
	}
	contentType = "application/octet-stream"
	switch path.Ext(relPath) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	return s.store.Path(relPath), filename, contentType, nil
}

func (s *ExportArchiveService) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.linkTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.CleanupOlderThan(s.linkTTL)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
			}
		}
	}
}
