// Package auth implements authentication and authorization for the server:
// password hashing, access token issue and validation, login checks,
// per-request identity resolution and the ownership guard.
package auth
