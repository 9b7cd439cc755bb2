// Package batch runs the translation of a table for a set of target
// languages.
//
// Tasks are processed sequentially: the outer loop walks the selected
// languages in selection order, the inner loop walks the rows in table
// order. Every task writes exactly one cell of the language's
// "Translation - <Language>" column. Blank prompts produce an empty cell
// without a call; failed calls produce an "[ERROR] <reason>" marker and the
// run continues. Only a missing prompt column (before any task) or
// cancellation of the context stops a run early.
package batch
