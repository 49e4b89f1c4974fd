// Package search provides the bounded top-K selection used to rank
// similarity candidates.
//
// The engine streams every scored entry through a CandidateSet, which keeps
// only the best K in one pass; the final ranking comes out of Entries,
// already sorted by score descending.
package search
