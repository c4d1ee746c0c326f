// Package config provides centralized configuration management for the
// nutrition pipeline stages.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file (nutricli.yaml, configs/nutricli.yaml or $NUTRI_CONFIG)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern NUTRI_<SECTION>_<FIELD>:
//
//	NUTRI_LOGGING_LEVEL=debug
//	NUTRI_PATHS_WORK_DIR=/data/nutrition
//	NUTRI_CLEANING_IQR_MULTIPLIER=3
//	NUTRI_INSIGHTS_NUTRIENT_COLUMNS=calories,protein
//	NUTRI_TELEMETRY_ENABLE_METRICS=true
//	NUTRI_TELEMETRY_METRICS_DIR=metrics
//
// # Path Management
//
// Paths resolves every well-known file (cleaned CSV, insights CSV, report,
// charts directory, logs) against a single working directory:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	logFile := paths.GetLogPath(config.CleanerLogFile)
package config
