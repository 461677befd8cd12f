// Package paths resolves the tokens a user types into absolute paths for the
// two virtual working directories the shell keeps.
//
// The remote side is a slash path where the empty string is the account root.
// The local side is an OS path rooted at "/" with a separate home directory
// (the directory the process started in).
//
// # Remote rules
//
//	""  "." "/"   -> root ("")
//	".."          -> parent of cwd, StatusAtRoot when cwd is already root
//	"/abs/path"   -> returned unchanged
//	"name"        -> cwd + "/" + name ("/name" at root)
//
// # Local rules
//
//	""            -> home directory
//	"."           -> cwd
//	".."          -> parent of cwd, StatusNoSuchPath above the OS root
//	"/abs/path"   -> cleaned
//	"name"        -> cwd joined with name
//
// # Usage
//
//	abs, status := paths.ResolveRemote("docs", "/work")   // "/work/docs", StatusOK
//	fmt.Println(paths.DisplayRemote(""))                   // "/"
//
// Every function here is pure: existence and type checks are the caller's job.
package paths
