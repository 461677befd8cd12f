// Package remotetest provides in-memory and mock remote.Service
// implementations for tests.
package remotetest

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
)

type node struct {
	entry   remote.Entry
	content []byte
}

// Fake is an in-memory remote.Service backed by a flat path map.
type Fake struct {
	mu       sync.Mutex
	nodes    map[string]*node
	calls    map[string]int
	failures map[string]error
	nextID   int

	Account *remote.Account
	Usage   *remote.SpaceUsage
	Now     func() time.Time
}

// NewFake creates an empty account with a basic-tier user.
func NewFake() *Fake {
	return &Fake{
		nodes:    make(map[string]*node),
		calls:    make(map[string]int),
		failures: make(map[string]error),
		Account: &remote.Account{
			ID:              "dbid:fake",
			Type:            remote.AccountBasic,
			DisplayName:     "Fake User",
			AbbreviatedName: "FU",
			Email:           "fake@example.com",
			Country:         "US",
			Locale:          "en",
		},
		Usage: &remote.SpaceUsage{Used: 1 << 20, IndividualAllocated: 2 << 30, TeamAllocated: 1 << 40},
		Now: func() time.Time {
			return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

// Connector returns a remote.Connector that always yields f.
func (f *Fake) Connector() remote.Connector {
	return func(ctx context.Context, appName, token string) (remote.Service, error) {
		return f, nil
	}
}

// AddFolder creates a folder (and its parents).
func (f *Fake) AddFolder(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mkdirAll(p)
}

// AddFile creates a file (and its parent folders).
func (f *Fake) AddFile(p string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mkdirAll(path.Dir(p))
	f.put(p, remote.KindFile, content)
}

// Content returns the stored bytes of a file.
func (f *Fake) Content(p string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[p]
	if !ok || n.entry.Kind != remote.KindFile {
		return nil, false
	}
	return append([]byte(nil), n.content...), true
}

// Exists reports whether p is present.
func (f *Fake) Exists(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.nodes[p]
	return ok
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// FailNext makes the next call to op return err.
func (f *Fake) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

func (f *Fake) enter(op string) error {
	f.calls[op]++
	if err, ok := f.failures[op]; ok {
		delete(f.failures, op)
		return err
	}
	return nil
}

func (f *Fake) mkdirAll(p string) {
	if p == "" || p == "/" || p == "." {
		return
	}
	f.mkdirAll(path.Dir(p))
	if _, ok := f.nodes[p]; !ok {
		f.put(p, remote.KindFolder, nil)
	}
}

func (f *Fake) put(p string, kind remote.EntryKind, content []byte) *node {
	f.nextID++
	n := &node{
		entry: remote.Entry{
			Kind:           kind,
			ID:             "id:" + strings.Repeat("x", f.nextID%7+1) + p,
			Name:           path.Base(p),
			PathLower:      strings.ToLower(p),
			PathDisplay:    p,
			Rev:            "015f",
			Size:           int64(len(content)),
			ClientModified: f.Now(),
			ServerModified: f.Now(),
		},
		content: content,
	}
	f.nodes[p] = n
	return n
}

func (f *Fake) subtree(p string) []string {
	var keys []string
	for k := range f.nodes {
		if k == p || strings.HasPrefix(k, p+"/") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func entryCopy(n *node) *remote.Entry {
	e := n.entry
	return &e
}

// CurrentAccount implements remote.Service.
func (f *Fake) CurrentAccount(ctx context.Context) (*remote.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("account"); err != nil {
		return nil, err
	}
	a := *f.Account
	return &a, nil
}

// SpaceUsage implements remote.Service.
func (f *Fake) SpaceUsage(ctx context.Context) (*remote.SpaceUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("space"); err != nil {
		return nil, err
	}
	u := *f.Usage
	return &u, nil
}

// ListFolder implements remote.Service.
func (f *Fake) ListFolder(ctx context.Context, p string) ([]remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("list"); err != nil {
		return nil, err
	}
	if p != "" {
		n, ok := f.nodes[p]
		if !ok {
			return nil, remote.NewLookupError(remote.LookupNotFound, "path/not_found/")
		}
		if n.entry.Kind != remote.KindFolder {
			return nil, remote.NewLookupError(remote.LookupNotFolder, "path/not_folder/")
		}
	}
	parent := p
	if parent == "" {
		parent = "/"
	}
	var out []remote.Entry
	for k, n := range f.nodes {
		if path.Dir(k) == parent {
			out = append(out, n.entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PathLower < out[j].PathLower })
	return out, nil
}

// Metadata implements remote.Service.
func (f *Fake) Metadata(ctx context.Context, p string) (*remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("metadata"); err != nil {
		return nil, err
	}
	if p == "" {
		return nil, remote.NewLookupError(remote.LookupMalformed, "path/malformed_path/")
	}
	n, ok := f.nodes[p]
	if !ok {
		return nil, remote.NewLookupError(remote.LookupNotFound, "path/not_found/")
	}
	return entryCopy(n), nil
}

// Search implements remote.Service.
func (f *Fake) Search(ctx context.Context, p, query string) ([]remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("search"); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []remote.Entry
	for k, n := range f.nodes {
		if p != "" && !strings.HasPrefix(k, p+"/") {
			continue
		}
		if strings.Contains(strings.ToLower(n.entry.Name), q) {
			out = append(out, n.entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PathLower < out[j].PathLower })
	return out, nil
}

func (f *Fake) relocate(from, to string, keep bool) (*remote.Entry, error) {
	if _, ok := f.nodes[from]; !ok {
		return nil, remote.NewRelocationError("from_lookup/not_found/")
	}
	if _, ok := f.nodes[to]; ok {
		return nil, remote.NewRelocationError("to/conflict/file/")
	}
	if strings.HasPrefix(to, from+"/") {
		return nil, remote.NewRelocationError("cant_nest_shared_folder/")
	}
	f.mkdirAll(path.Dir(to))
	for _, k := range f.subtree(from) {
		src := f.nodes[k]
		dst := to + strings.TrimPrefix(k, from)
		f.put(dst, src.entry.Kind, append([]byte(nil), src.content...))
		if !keep {
			delete(f.nodes, k)
		}
	}
	return entryCopy(f.nodes[to]), nil
}

// Copy implements remote.Service.
func (f *Fake) Copy(ctx context.Context, from, to string) (*remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("copy"); err != nil {
		return nil, err
	}
	return f.relocate(from, to, true)
}

// Move implements remote.Service.
func (f *Fake) Move(ctx context.Context, from, to string) (*remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("move"); err != nil {
		return nil, err
	}
	return f.relocate(from, to, false)
}

// Delete implements remote.Service.
func (f *Fake) Delete(ctx context.Context, p string) (*remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("delete"); err != nil {
		return nil, err
	}
	n, ok := f.nodes[p]
	if !ok {
		return nil, remote.NewLookupError(remote.LookupNotFound, "path_lookup/not_found/")
	}
	e := entryCopy(n)
	for _, k := range f.subtree(p) {
		delete(f.nodes, k)
	}
	return e, nil
}

// CreateFolder implements remote.Service.
func (f *Fake) CreateFolder(ctx context.Context, p string) (*remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("create_folder"); err != nil {
		return nil, err
	}
	if _, ok := f.nodes[p]; ok {
		return nil, remote.NewWriteError(remote.WriteConflict, "path/conflict/folder/")
	}
	f.mkdirAll(p)
	return entryCopy(f.nodes[p]), nil
}

// Upload implements remote.Service.
func (f *Fake) Upload(ctx context.Context, p string, r io.Reader) (*remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("upload"); err != nil {
		return nil, err
	}
	if _, ok := f.nodes[p]; ok {
		return nil, remote.NewWriteError(remote.WriteConflict, "path/conflict/file/")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.mkdirAll(path.Dir(p))
	return entryCopy(f.put(p, remote.KindFile, data)), nil
}

// Download implements remote.Service.
func (f *Fake) Download(ctx context.Context, p string, w io.Writer) (*remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("download"); err != nil {
		return nil, err
	}
	n, ok := f.nodes[p]
	if !ok {
		return nil, remote.NewLookupError(remote.LookupNotFound, "path/not_found/")
	}
	if n.entry.Kind != remote.KindFile {
		return nil, remote.NewLookupError(remote.LookupOther, "path/not_file/")
	}
	if _, err := io.Copy(w, bytes.NewReader(n.content)); err != nil {
		return nil, err
	}
	return entryCopy(n), nil
}
