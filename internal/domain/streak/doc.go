// Package streak is the habit completion engine.
//
// Every function here is pure: records go in, new records come out, and
// "today" is always supplied by the caller. Persistence, locking and change
// propagation belong to the service layer.
package streak
