// Package password implements the one-way hashing scheme shared by user
// passwords and refresh secrets: Argon2id with a random per-hash salt,
// encoded as a PHC string.
//
// Because the salt makes hashing non-deterministic, stored hashes cannot be
// used as lookup keys; callers that need to find a record by secret must
// verify candidates one by one (see the credential package).
package password
