// Package session implements the authentication orchestrator: login issues
// an access-token/refresh-secret pair, refresh rotates the pair, revoke
// terminates the session. A user's session state lives entirely in the
// refresh fields of their credential record: absent (no session), set with a
// future expiry (active), or set with a past expiry (expired, inert until
// overwritten).
package session
