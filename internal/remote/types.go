package remote

import (
	"context"
	"io"
	"time"
)

// EntryKind distinguishes files from folders.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindFolder
)

// String returns the string representation of the kind
func (k EntryKind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Entry is metadata for one remote file or folder.
type Entry struct {
	Kind           EntryKind `json:"kind"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PathLower      string    `json:"path_lower"`
	PathDisplay    string    `json:"path_display"`
	Rev            string    `json:"rev,omitempty"`
	Size           int64     `json:"size,omitempty"`
	ClientModified time.Time `json:"client_modified,omitempty"`
	ServerModified time.Time `json:"server_modified,omitempty"`
}

// IsFolder reports whether the entry is a folder.
func (e *Entry) IsFolder() bool {
	return e != nil && e.Kind == KindFolder
}

// IsFile reports whether the entry is a file.
func (e *Entry) IsFile() bool {
	return e != nil && e.Kind == KindFile
}

// AccountType is the tier of the connected account.
type AccountType string

const (
	AccountBasic    AccountType = "basic"
	AccountPro      AccountType = "pro"
	AccountBusiness AccountType = "business"
)

// Account describes the connected user.
type Account struct {
	ID              string      `json:"account_id"`
	Type            AccountType `json:"account_type"`
	DisplayName     string      `json:"display_name"`
	AbbreviatedName string      `json:"abbreviated_name"`
	Email           string      `json:"email"`
	Country         string      `json:"country"`
	Locale          string      `json:"locale"`
}

// IsTeam reports whether space should be read from the team allocation.
func (a *Account) IsTeam() bool {
	return a != nil && a.Type != AccountBasic
}

// SpaceUsage reports storage utilization in bytes.
type SpaceUsage struct {
	Used                int64 `json:"used"`
	IndividualAllocated int64 `json:"individual_allocated"`
	TeamAllocated       int64 `json:"team_allocated"`
}

// Allocated returns the allocation that applies to the account tier.
func (s *SpaceUsage) Allocated(team bool) int64 {
	if team {
		return s.TeamAllocated
	}
	return s.IndividualAllocated
}

// Service is the remote storage capability the shell drives.
type Service interface {
	CurrentAccount(ctx context.Context) (*Account, error)
	SpaceUsage(ctx context.Context) (*SpaceUsage, error)

	ListFolder(ctx context.Context, path string) ([]Entry, error)
	Metadata(ctx context.Context, path string) (*Entry, error)
	Search(ctx context.Context, path, query string) ([]Entry, error)

	Copy(ctx context.Context, from, to string) (*Entry, error)
	Move(ctx context.Context, from, to string) (*Entry, error)
	Delete(ctx context.Context, path string) (*Entry, error)
	CreateFolder(ctx context.Context, path string) (*Entry, error)

	Upload(ctx context.Context, path string, r io.Reader) (*Entry, error)
	Download(ctx context.Context, path string, w io.Writer) (*Entry, error)
}

// Connector builds a Service for an app identity and access token.
type Connector func(ctx context.Context, appName, token string) (Service, error)
