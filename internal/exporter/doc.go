// Package exporter writes tabular results to disk.
//
// CSVWriter: CSV output with optional UTF-8 BOM and a streaming writer for
// row-at-a-time output.
//
// XLSXWriter: single-sheet Excel workbooks through excelize.
//
// FormatFloat and TimeLayout keep numbers and datetimes in the textual form
// the downstream stages and the analysis tooling read back unchanged.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteCSV("nutrition_insights.csv", exporter.WriteOptions{
//		Headers: []string{"category", "calories"},
//		Records: [][]string{{"Breakfast", "526.67"}},
//	})
package exporter
