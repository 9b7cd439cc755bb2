// Package sheet reads input spreadsheets into tables and assembles the
// downloadable artifact from a translated table.
//
// Three artifact formats exist. xlsx is the default and keeps numeric cells
// numeric; csv writes every cell as text; sqlite writes a single-file
// database holding one "translations" table whose columns mirror the
// table's columns. Every format has a fixed file name and content type.
package sheet
