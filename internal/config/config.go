package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "nutricli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Insights  InsightsConfig  `yaml:"insights" envconfig:"INSIGHTS"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration.
// An empty FilePath means the stage's fixed log file under Paths.LogsDir.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration.
// Relative entries resolve against WorkDir, which defaults to the current directory.
type PathsConfig struct {
	WorkDir           string `yaml:"work_dir" envconfig:"WORK_DIR"`
	LogsDir           string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	CleanedCSV        string `yaml:"cleaned_csv" envconfig:"CLEANED_CSV" validate:"required"`
	InsightsCSV       string `yaml:"insights_csv" envconfig:"INSIGHTS_CSV" validate:"required"`
	ReportTXT         string `yaml:"report_txt" envconfig:"REPORT_TXT" validate:"required"`
	VisualizationsDir string `yaml:"visualizations_dir" envconfig:"VISUALIZATIONS_DIR" validate:"required"`
}

// CleaningConfig tunes the cleaner stage
type CleaningConfig struct {
	IQRMultiplier float64  `yaml:"iqr_multiplier" envconfig:"IQR_MULTIPLIER" validate:"gt=0"`
	NullTokens    []string `yaml:"null_tokens" envconfig:"NULL_TOKENS"`
	// Sheet selects the worksheet of an XLSX input; empty means the first
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// InsightsConfig tunes the insights stage
type InsightsConfig struct {
	CategoryColumn  string   `yaml:"category_column" envconfig:"CATEGORY_COLUMN" validate:"required"`
	CalorieColumn   string   `yaml:"calorie_column" envconfig:"CALORIE_COLUMN" validate:"required"`
	NutrientColumns []string `yaml:"nutrient_columns" envconfig:"NUTRIENT_COLUMNS" validate:"min=1,dive,required"`
	XLSXPath        string   `yaml:"xlsx_path" envconfig:"XLSX_PATH"`
}

// ChartsConfig tunes the visualizer stage. Sizes are in inches.
type ChartsConfig struct {
	BarWidth      float64 `yaml:"bar_width" envconfig:"BAR_WIDTH" validate:"gt=0"`
	BarHeight     float64 `yaml:"bar_height" envconfig:"BAR_HEIGHT" validate:"gt=0"`
	Width         float64 `yaml:"width" envconfig:"WIDTH" validate:"gt=0"`
	Height        float64 `yaml:"height" envconfig:"HEIGHT" validate:"gt=0"`
	HistogramBins int     `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS" validate:"min=1"`
	DPI           int     `yaml:"dpi" envconfig:"DPI" validate:"min=10"`
}

// TelemetryConfig controls tracing and metrics output.
// Both are off unless a destination is configured.
type TelemetryConfig struct {
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceFile     string  `yaml:"trace_file" envconfig:"TRACE_FILE" validate:"required_if=EnableTracing true"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	MetricsDir    string  `yaml:"metrics_dir" envconfig:"METRICS_DIR" validate:"required_if=EnableMetrics true"`
}

// Load builds the configuration from defaults, then the YAML file if one
// exists, then environment variables. Later sources win.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("path", configFile)
		}
	}

	// Fields have no default tags so envconfig only touches what is set
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML configuration on top of cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate normalizes and validates the configuration
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	// JSON is the only supported format
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if len(c.Cleaning.NullTokens) == 0 {
		c.Cleaning.NullTokens = append([]string(nil), DefaultNullTokens...)
	}

	v := validator.New()
	if err := v.Struct(c); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"nutricli.yaml",
		"configs/nutricli.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: DefaultLogOutput,
		},
		Paths: PathsConfig{
			LogsDir:           DefaultLogsDir,
			CleanedCSV:        DefaultCleanedCSV,
			InsightsCSV:       DefaultInsightsCSV,
			ReportTXT:         DefaultReportTXT,
			VisualizationsDir: DefaultVisualizationsDir,
		},
		Cleaning: CleaningConfig{
			IQRMultiplier: DefaultIQRMultiplier,
			NullTokens:    append([]string(nil), DefaultNullTokens...),
		},
		Insights: InsightsConfig{
			CategoryColumn:  ColumnCategory,
			CalorieColumn:   ColumnCalories,
			NutrientColumns: append([]string(nil), DefaultNutrientColumns...),
		},
		Charts: ChartsConfig{
			BarWidth:      10,
			BarHeight:     6,
			Width:         8,
			Height:        6,
			HistogramBins: DefaultHistogramBins,
			DPI:           DefaultChartDPI,
		},
		Telemetry: TelemetryConfig{
			Environment: "development",
			SampleRatio: 1.0,
		},
	}
}
