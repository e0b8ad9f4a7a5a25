// Package voting owns the vote ledger, the comment reaction ledger and the
// aggregate counters derived from them.
//
// A request flows through Service.Cast: the target row is locked inside a
// transaction, the matching ledger is mutated, and for like/dislike votes the
// Maintainer recomputes likes, dislikes and net score from the ledger before
// commit. The Maintainer is the only code that writes those columns.
package voting
