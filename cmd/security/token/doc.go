// Package token issues and verifies the short-lived HS256 access tokens.
//
// Access tokens are stateless: validity is determined entirely by signature,
// issuer, audience and expiry at verification time, so they cannot be
// revoked individually. Session termination is handled by revoking the
// refresh secret (see the auth session service).
package token
