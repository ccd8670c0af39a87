package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"campusbot/app/config"
	"campusbot/app/service/catalog"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/oops"
)

type Service struct {
	dir     string
	maxSize int64
	repo    *catalog.Repo[catalog.Upload]
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	catalogSvc := do.MustInvoke[*catalog.Service](di)

	return NewService(cfg.Uploads, catalogSvc.Uploads)
}

func NewService(cfg config.Uploads, repo *catalog.Repo[catalog.Upload]) (*Service, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, oops.In("upload").With("dir", cfg.Dir).Wrapf(err, "failed to create uploads directory")
	}

	return &Service{
		dir:     cfg.Dir,
		maxSize: cfg.MaxSize,
		repo:    repo,
	}, nil
}

// Save copies the uploaded file to disk under a random name and records it.
func (s *Service) Save(ctx context.Context, header *multipart.FileHeader) (*catalog.Upload, error) {
	errb := oops.In("upload").With("filename", header.Filename, "size", header.Size)

	if header.Size > s.maxSize {
		return nil, errb.Code(catalog.CodeInvalid).Errorf("file exceeds %d bytes", s.maxSize)
	}

	originalName := filepath.Base(header.Filename)
	if originalName == "." || originalName == string(filepath.Separator) {
		return nil, errb.Code(catalog.CodeInvalid).Errorf("file name is required")
	}

	src, err := header.Open()
	if err != nil {
		return nil, errb.Wrapf(err, "failed to open uploaded file")
	}
	defer src.Close()

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.dir, storedName)

	size, err := s.write(path, src)
	if err != nil {
		return nil, errb.Wrapf(err, "failed to store uploaded file")
	}

	item := &catalog.Upload{
		OriginalName: originalName,
		StoredName:   storedName,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         size,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			slog.Error("Failed to remove orphaned upload",
				"path", path,
				"error", rmErr)
		}
		return nil, err
	}

	slog.Info("File uploaded",
		"id", item.ID,
		"name", originalName,
		"size", size)

	return item, nil
}

func (s *Service) write(path string, src io.Reader) (int64, error) {
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, fmt.Errorf("os.OpenFile: %w", err)
	}

	// one extra byte detects bodies that lie about their size
	size, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	closeErr := dst.Close()

	switch {
	case err != nil:
		err = fmt.Errorf("io.Copy: %w", err)
	case closeErr != nil:
		err = fmt.Errorf("dst.Close: %w", closeErr)
	case size > s.maxSize:
		err = oops.Code(catalog.CodeInvalid).Errorf("file exceeds %d bytes", s.maxSize)
	}

	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}

	return size, nil
}

func (s *Service) List(ctx context.Context) ([]catalog.Upload, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*catalog.Upload, error) {
	return s.repo.Get(ctx, id)
}

// Path returns the upload record and the location of its file on disk.
func (s *Service) Path(ctx context.Context, id int64) (*catalog.Upload, string, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	return item, filepath.Join(s.dir, item.StoredName), nil
}
