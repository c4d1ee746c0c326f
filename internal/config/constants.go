package config

// Application constants - hardcoded values shared by every stage
const (
	// Application Info
	AppName    = "nutricli"
	AppVersion = "1.0.0"

	// EnvPrefix is the envconfig namespace, e.g. NUTRI_LOGGING_LEVEL
	EnvPrefix = "NUTRI"
	// ConfigFileEnv points at an explicit YAML config file
	ConfigFileEnv = "NUTRI_CONFIG"

	// Well-known data files (relative to the working directory)
	DefaultCleanedCSV        = "Nutrical_Datasetacoutput.csv"
	DefaultInsightsCSV       = "nutrition_insights.csv"
	DefaultReportTXT         = "nutrition_analysis_report.txt"
	DefaultVisualizationsDir = "visualizations"
	DefaultLogsDir           = "."

	// Per-stage log files, appended across runs
	CleanerLogFile    = "clean_csv.log"
	InsightsLogFile   = "nutrition_insights.log"
	EDALogFile        = "eda_analysis.log"
	VisualizerLogFile = "data_visualization.log"
	ReportLogFile     = "documentation_report.log"
	PipelineLogFile   = "pipeline.log"

	// Known dataset columns
	ColumnCalories      = "calories"
	ColumnCategory      = "category"
	ColumnTotalFat      = "total_fat"
	ColumnFat           = "fat"
	ColumnProtein       = "protein"
	ColumnCarbohydrates = "carbohydrates"

	// Cleaning
	DefaultIQRMultiplier = 1.5

	// Charts
	DefaultHistogramBins = 30
	DefaultChartDPI      = 100

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "both"
)

// DefaultNutrientColumns is the nutrient set averaged per category by the
// insights stage and plotted by the visualizer.
var DefaultNutrientColumns = []string{
	ColumnCalories,
	ColumnTotalFat,
	ColumnProtein,
	ColumnCarbohydrates,
}

// DefaultEDANutrientColumns is the nutrient set described by the EDA stage.
var DefaultEDANutrientColumns = []string{
	ColumnFat,
	ColumnProtein,
	ColumnCarbohydrates,
}

// DefaultPairPlotColumns are the variables of the scatter matrix.
var DefaultPairPlotColumns = []string{
	ColumnCalories,
	ColumnFat,
	ColumnProtein,
	ColumnCarbohydrates,
}

// DefaultNullTokens are cell values read as missing.
var DefaultNullTokens = []string{
	"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "null", "NULL", "None", "#N/A", "<NA>",
}
