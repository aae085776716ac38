// Package engine implements the semantic compliance matching pipeline.
//
// A document is chunked, its chunks and the checklist variants are embedded in
// one batch per side, every variant is scored against every chunk by cosine
// similarity, and the best variant per requirement is normalised against the
// requirement threshold into a status.
//
// Everything here except Engine.ScoreChecklist is pure and safe for concurrent use.
package engine
