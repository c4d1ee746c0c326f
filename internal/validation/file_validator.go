package validation

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "nutricli/internal/errors"
)

// CSVExtensions is accepted for files written by an earlier stage
var CSVExtensions = []string{".csv"}

// FileValidator checks stage inputs and outputs before any work starts
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that path is a readable regular file with one of
// the given extensions. An empty extension list accepts any file.
func (v *FileValidator) ValidateInputFile(ctx context.Context, path string, extensions []string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.ErrorContext(ctx, "Input file does not exist",
			slog.String("file", path))
		return apperrors.NewNotFoundError(path)
	}
	if err != nil {
		v.logger.ErrorContext(ctx, "Failed to stat input file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to stat "+path, err)
	}
	if info.IsDir() {
		v.logger.ErrorContext(ctx, "Input path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewValidationError(path + " is a directory, not a file")
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.WarnContext(ctx, "Refusing temporary Excel file",
			slog.String("file", path))
		return apperrors.NewValidationError(path + " is a temporary Excel file")
	}

	if len(extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		if !contains(extensions, ext) {
			v.logger.ErrorContext(ctx, "Unsupported input file type",
				slog.String("file", path),
				slog.String("extension", ext))
			return apperrors.NewValidationError("unsupported file type "+ext).
				WithContext("file", path).
				WithContext("accepted", strings.Join(extensions, ","))
		}
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.ErrorContext(ctx, "Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(path+" is not readable", err)
	}
	file.Close()

	v.logger.DebugContext(ctx, "Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputFile ensures the directory holding path exists and is
// writable, and that path itself is not a directory
func (v *FileValidator) ValidateOutputFile(ctx context.Context, path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		v.logger.ErrorContext(ctx, "Output path is a directory",
			slog.String("path", path))
		return apperrors.NewValidationError(path + " is a directory, not a file")
	}
	return v.ValidateOutputDirectory(ctx, filepath.Dir(path))
}

// ValidateOutputDirectory ensures dir exists or can be created and is
// writable
func (v *FileValidator) ValidateOutputDirectory(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.ErrorContext(ctx, "Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to create output directory "+dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.ErrorContext(ctx, "Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory "+dir+" is not writable", err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.DebugContext(ctx, "Output directory validated",
		slog.String("directory", dir))
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
