// Package ratetable holds the historical per-hour, per-segment statistics
// derived offline from base entry/exit logs: the number of trucks present
// at the base (occupancy) and the tool-wait duration. Tables are immutable
// once built and safe for concurrent reads.
//
// A lookup miss is a designed fallback and reported through the boolean
// result, never as an error.
package ratetable
