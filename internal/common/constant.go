// Package common contains shared constants and sentinel errors used across
// Pitstop components.
package common

// AuthorizationHeaderName is the HTTP header carrying "<scheme> <token>".
const AuthorizationHeaderName = "Authorization"

// DefaultUserStatus is assigned to freshly registered users.
const DefaultUserStatus = "I am new!"
