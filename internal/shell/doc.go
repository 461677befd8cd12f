// Package shell is the interactive command loop of dbxshell.
//
// A Shell reads one line at a time, tokenizes it, resolves the command name
// through the alias table and runs the handler against the session. Remote
// commands act on the Dropbox working directory, the l-prefixed variants on
// the local one. All output goes through the session's transcript recorder.
package shell
