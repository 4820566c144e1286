// Package foldertree holds the public types shared by the folder tree engine
// and its entrypoints. The tree itself lives in package tree and is driven
// through a session.Session.
package foldertree

// Version of the foldertree module reported by the cli
const Version = "0.3.0"
