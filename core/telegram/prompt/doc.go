// Package prompt collects exactly one reply from a (chat, user) pair within a
// bounded time window. A session resolves to a tagged Outcome instead of an error,
// and opening a new session for the same key supersedes the waiting one.
package prompt
