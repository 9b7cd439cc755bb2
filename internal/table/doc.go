// Package table models the spreadsheet being translated: an ordered list of
// rows keyed by column name, with typed cells. Row order and row count are
// never changed by the translation pass.
package table
