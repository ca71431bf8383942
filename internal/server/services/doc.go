// Package services contains server-side business logic: registration,
// login and logout, self-service account changes, and task management with
// ownership checks. Services return sentinel errors from internal/common;
// mapping them to transport codes is left to the caller.
package services
