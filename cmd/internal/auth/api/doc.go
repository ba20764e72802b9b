// Package authapi exposes the authentication endpoints over HTTP JSON:
// /auth/login, /auth/refresh and /auth/logout. Handlers validate and decode
// the request, delegate to the session service, and map its sentinel errors
// onto statuses. Every unauthorized outcome produces the same generic body
// so callers cannot probe which part of a credential was wrong.
package authapi
