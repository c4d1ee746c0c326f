package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the resolved pipeline paths.
// This is the single source of truth for file locations shared between stages.
type Paths struct {
	WorkDir           string
	LogsDir           string
	CleanedCSV        string
	InsightsCSV       string
	ReportTXT         string
	VisualizationsDir string
}

// GetPaths resolves the configured paths against the working directory.
// An empty WorkDir means the current directory, matching how the stages are
// normally launched from the dataset folder.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	workDir := cfg.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	p := &Paths{WorkDir: workDir}
	p.LogsDir = p.Resolve(orDefault(cfg.LogsDir, DefaultLogsDir))
	p.CleanedCSV = p.Resolve(orDefault(cfg.CleanedCSV, DefaultCleanedCSV))
	p.InsightsCSV = p.Resolve(orDefault(cfg.InsightsCSV, DefaultInsightsCSV))
	p.ReportTXT = p.Resolve(orDefault(cfg.ReportTXT, DefaultReportTXT))
	p.VisualizationsDir = p.Resolve(orDefault(cfg.VisualizationsDir, DefaultVisualizationsDir))

	return p, nil
}

// Resolve returns path unchanged when absolute, otherwise joined to WorkDir
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.WorkDir, path)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetChartPath returns the full path for a chart image
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.VisualizationsDir, filename)
}

// EnsureDirectories creates the directories every stage may write into.
// The visualizations directory is created by the visualizer itself.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.WorkDir,
		p.LogsDir,
		filepath.Dir(p.CleanedCSV),
		filepath.Dir(p.InsightsCSV),
		filepath.Dir(p.ReportTXT),
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution",
		slog.String("work_dir", p.WorkDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("cleaned_csv", p.CleanedCSV),
		slog.Bool("cleaned_csv_exists", FileExists(p.CleanedCSV)),
		slog.String("insights_csv", p.InsightsCSV),
		slog.Bool("insights_csv_exists", FileExists(p.InsightsCSV)),
		slog.String("report_txt", p.ReportTXT),
		slog.String("visualizations_dir", p.VisualizationsDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
