// Package scoring composes hazard, exposure and vulnerability scores into
// integrated risk and annual average loss.
//
// All scores are on a 0-100 scale and share the severity bands of
// domain.LevelForScore. Rule tables are explicit configuration structs; the
// Default constructors return the built-in tables.
package scoring
