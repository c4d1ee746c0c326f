// Package validation holds the preflight checks every stage binary runs on
// its input and output paths before loading data.
package validation
