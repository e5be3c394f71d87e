package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/model"
	"github.com/rmedina/placepix/internal/storage"
)

// ErrInvalidPick marks a pick request rejected before any network or file
// I/O: required fields are missing. Checked with errors.Is.
var ErrInvalidPick = errors.New("invalid pick")

// PickRequest describes one operator pick: the record being assigned and the
// chosen candidate.
type PickRequest struct {
	City     string
	Country  string
	Provider string
	Image    model.SearchResult
}

// validate rejects incomplete requests before any I/O happens.
func (r PickRequest) validate() error {
	switch {
	case r.City == "":
		return fmt.Errorf("%w: city is required", ErrInvalidPick)
	case r.Country == "":
		return fmt.Errorf("%w: country is required", ErrInvalidPick)
	case r.Image.ID == "":
		return fmt.Errorf("%w: image id is required", ErrInvalidPick)
	case r.Image.DownloadURL() == "":
		return fmt.Errorf("%w: image has no downloadable url", ErrInvalidPick)
	}
	return nil
}

// AssignmentService executes a pick end to end: download the image, store it
// locally, write the filename back into the record table, and append an
// audit event. History writes are best-effort; a failed audit insert never
// fails the assignment.
type AssignmentService struct {
	downloader *Downloader
	images     *storage.ImageStore
	records    *storage.RecordStore
	history    storage.HistoryRepository
	logger     *zap.Logger
}

// NewAssignmentService wires the assignment pipeline. history may be nil
// when auditing is disabled.
func NewAssignmentService(
	downloader *Downloader,
	images *storage.ImageStore,
	records *storage.RecordStore,
	history storage.HistoryRepository,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		downloader: downloader,
		images:     images,
		records:    records,
		history:    history,
		logger:     logger,
	}
}

// Assign performs the full pick pipeline and returns the stored filename.
func (s *AssignmentService) Assign(ctx context.Context, req PickRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	start := time.Now()
	sourceURL := req.Image.DownloadURL()
	filename := model.ImageFilename(req.City, req.Country, req.Image.ID, sourceURL)

	data, err := s.downloader.Fetch(ctx, sourceURL)
	if err != nil {
		s.audit(ctx, req, sourceURL, "", start, err)
		return "", err
	}

	if s.images.Exists(filename) {
		s.logger.Info("replacing existing image file", zap.String("filename", filename))
	}
	if err := s.images.Write(filename, data); err != nil {
		s.audit(ctx, req, sourceURL, filename, start, err)
		return "", err
	}

	if err := s.records.SetFilename(req.City, req.Country, filename); err != nil {
		s.audit(ctx, req, sourceURL, filename, start, err)
		return "", fmt.Errorf("persisting filename: %w", err)
	}

	s.audit(ctx, req, sourceURL, filename, start, nil)
	s.logger.Info("image assigned",
		zap.String("city", req.City),
		zap.String("country", req.Country),
		zap.String("provider", req.Provider),
		zap.String("filename", filename),
	)
	return filename, nil
}

func (s *AssignmentService) audit(ctx context.Context, req PickRequest, sourceURL, filename string, start time.Time, opErr error) {
	if s.history == nil {
		return
	}

	duration := time.Since(start).Milliseconds()
	ev := &storage.AssignmentEvent{
		City:       req.City,
		Country:    req.Country,
		Provider:   req.Provider,
		ImageID:    req.Image.ID,
		SourceURL:  sourceURL,
		Filename:   filename,
		Success:    opErr == nil,
		DurationMs: &duration,
	}
	if opErr != nil {
		msg := opErr.Error()
		ev.ErrorMessage = &msg
	}

	if err := s.history.Record(ctx, ev); err != nil {
		s.logger.Warn("recording assignment event", zap.Error(err))
	}
}
