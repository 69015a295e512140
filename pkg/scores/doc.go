// Package scores implements the normalization-and-merge core of scoremerge.
//
// A month folder holds one source file per scoring category. Each file is
// reduced to a CategoryTable of (entity id, entity name, score) by resolving
// its header (Resolver), canonicalizing identifiers (NormalizeID) and
// coercing locale formatted numbers (NumberParser). Merge then outer-joins
// every CategoryTable of the month into a MonthTable with one score column
// per category and a derived total, sorted by that total. JoinMetadata
// optionally enriches a MonthTable with registration dates.
//
// Malformed values never stop the pipeline: identifiers without digits fall
// back to the sentinel key "0" (and the row is flagged as not reconciled),
// unparseable scores count as zero.
package scores
