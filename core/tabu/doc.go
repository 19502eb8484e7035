// Package tabu implements the tabu search that assigns trucks to time
// segments.
//
// A search starts from a uniformly random schedule (solution zero) and runs
// a fixed number of iterations. Each iteration draws neighbours of the
// current schedule, orders them by score and accepts the first one absent
// from the tabu memory, whether or not it improves on the current schedule.
// The best schedule only changes on a strictly lower total, or on an equal
// total with an earlier finishing segment. Accepted schedules enter a FIFO
// memory bounded by the tabu tenure.
package tabu
