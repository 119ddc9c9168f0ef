// Package auth provides optional bearer-token authentication for the
// console API: HS256 JWTs signed with a configured secret, a middleware
// that guards the API routes, and bcrypt hashing for the operator password
// exchanged at the login endpoint. Leaving auth.jwt_secret unset disables
// all of it.
package auth
