// Package gitrepo contains helpers for interrogating Git repositories and
// their remotes.
//
// It parses and formats remote URLs in both SSH and HTTPS form and detects
// the repository an invocation refers to, either from the environment or from
// the origin remote of the current working tree.
package gitrepo
