// Package credential is the persistence boundary to the credential store.
//
// Each record holds at most one live refresh secret, stored only as a salted
// one-way hash next to its absolute expiry. Because the hash is salted it
// cannot serve as a lookup key: FindByRefreshSecret scans every record with
// a non-null hash and verifies candidates one by one. That O(active-sessions)
// scan is a property of the design, acceptable while the active-session
// count stays small; a deterministic secondary lookup key (keyed hash used
// for indexing only) is the known escape hatch if scale ever demands O(1).
package credential
