// Package cleaning implements the cleaner stage.
//
// A run loads a raw CSV (or XLSX) table and applies, in order:
//
//  1. column names trimmed, lowercased, spaces replaced with underscores
//  2. missing text cells filled with the column mode, missing numeric cells
//     with the column median
//  3. exact duplicate rows dropped, first occurrence kept
//  4. text columns converted to datetimes when every value parses
//  5. numeric values clamped to [Q1 - k*IQR, Q3 + k*IQR], k = 1.5 by default
//
// The cleaned table is written as CSV. Mode ties resolve to the
// lexicographically smallest value.
package cleaning
