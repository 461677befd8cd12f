package paths

import (
	"path/filepath"
	"strings"
)

// Status reports the outcome of a resolution that is not an ordinary path.
type Status int

const (
	// StatusOK means the returned path is usable.
	StatusOK Status = iota
	// StatusAtRoot means ".." was requested while already at the remote root.
	StatusAtRoot
	// StatusNoSuchPath means ".." was requested above the local OS root.
	StatusNoSuchPath
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAtRoot:
		return "already at root"
	case StatusNoSuchPath:
		return "no such path"
	default:
		return "unknown"
	}
}

// RemoteRoot is the internal representation of the remote root directory.
const RemoteRoot = ""

// LocalRoot is the OS root directory.
const LocalRoot = "/"

const (
	current = "."
	parent  = ".."
	sep     = "/"
)

// ResolveRemote turns token into an absolute remote path relative to cwd.
// cwd must be RemoteRoot or start with "/".
func ResolveRemote(token, cwd string) (string, Status) {
	switch token {
	case "", current, sep:
		return RemoteRoot, StatusOK
	case parent:
		if cwd == RemoteRoot {
			return RemoteRoot, StatusAtRoot
		}
		return remoteParent(cwd), StatusOK
	}

	if strings.HasPrefix(token, sep) {
		return token, StatusOK
	}
	if cwd == RemoteRoot {
		return sep + token, StatusOK
	}
	return cwd + sep + token, StatusOK
}

func remoteParent(cwd string) string {
	last := strings.LastIndex(cwd, sep)
	if last <= 0 {
		return RemoteRoot
	}
	return cwd[:last]
}

// CleanRemote normalizes a resolved remote path so it can be stored as a
// working directory: no trailing slash, and "/" collapses to RemoteRoot.
func CleanRemote(p string) string {
	p = strings.TrimRight(p, sep)
	if p == "" {
		return RemoteRoot
	}
	return p
}

// DisplayRemote renders a remote working directory for the user.
func DisplayRemote(cwd string) string {
	if cwd == RemoteRoot {
		return sep
	}
	return cwd
}

// ResolveLocal turns token into an absolute local path relative to cwd.
// An empty token resets to home.
func ResolveLocal(token, cwd, home string) (string, Status) {
	switch token {
	case "":
		return home, StatusOK
	case current:
		return cwd, StatusOK
	case parent:
		if isLocalRoot(cwd) {
			return cwd, StatusNoSuchPath
		}
		return filepath.Dir(cwd), StatusOK
	}

	if filepath.IsAbs(token) {
		return filepath.Clean(token), StatusOK
	}
	return filepath.Join(cwd, token), StatusOK
}

func isLocalRoot(p string) bool {
	return filepath.Dir(p) == p
}

// Base returns the last element of a remote or local path token.
func Base(token string) string {
	return filepath.Base(strings.TrimRight(token, sep))
}
