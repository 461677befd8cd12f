package dropbox

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
)

// metadata is the union returned for files, folders and deleted entries.
type metadata struct {
	Tag            string    `json:".tag"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PathLower      string    `json:"path_lower"`
	PathDisplay    string    `json:"path_display"`
	Rev            string    `json:"rev"`
	Size           int64     `json:"size"`
	ClientModified time.Time `json:"client_modified"`
	ServerModified time.Time `json:"server_modified"`
}

func (m *metadata) entry() remote.Entry {
	kind := remote.KindFile
	if m.Tag == "folder" {
		kind = remote.KindFolder
	}
	return remote.Entry{
		Kind:           kind,
		ID:             m.ID,
		Name:           m.Name,
		PathLower:      m.PathLower,
		PathDisplay:    m.PathDisplay,
		Rev:            m.Rev,
		Size:           m.Size,
		ClientModified: m.ClientModified,
		ServerModified: m.ServerModified,
	}
}

type pathArg struct {
	Path string `json:"path"`
}

type listFolderArg struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
	Limit     uint32 `json:"limit,omitempty"`
}

type listFolderContinueArg struct {
	Cursor string `json:"cursor"`
}

type listFolderResult struct {
	Entries []metadata `json:"entries"`
	Cursor  string     `json:"cursor"`
	HasMore bool       `json:"has_more"`
}

type relocationArg struct {
	FromPath   string `json:"from_path"`
	ToPath     string `json:"to_path"`
	Autorename bool   `json:"autorename"`
}

type createFolderArg struct {
	Path       string `json:"path"`
	Autorename bool   `json:"autorename"`
}

// metadataResult wraps the entry returned by the *_v2 mutation endpoints.
type metadataResult struct {
	Metadata metadata `json:"metadata"`
}

type searchOptions struct {
	Path       string `json:"path,omitempty"`
	MaxResults uint64 `json:"max_results,omitempty"`
}

type searchArg struct {
	Query   string        `json:"query"`
	Options searchOptions `json:"options"`
}

type searchContinueArg struct {
	Cursor string `json:"cursor"`
}

type searchMatch struct {
	Metadata struct {
		Tag      string   `json:".tag"`
		Metadata metadata `json:"metadata"`
	} `json:"metadata"`
}

type searchResult struct {
	Matches []searchMatch `json:"matches"`
	HasMore bool          `json:"has_more"`
	Cursor  string        `json:"cursor"`
}

type uploadArg struct {
	Path       string `json:"path"`
	Mode       string `json:"mode"`
	Autorename bool   `json:"autorename"`
	Mute       bool   `json:"mute"`
}

type tag struct {
	Tag string `json:".tag"`
}

type account struct {
	AccountID string `json:"account_id"`
	Name      struct {
		DisplayName     string `json:"display_name"`
		AbbreviatedName string `json:"abbreviated_name"`
	} `json:"name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Locale      string `json:"locale"`
	AccountType tag    `json:"account_type"`
}

func (a *account) account() *remote.Account {
	return &remote.Account{
		ID:              a.AccountID,
		Type:            remote.AccountType(a.AccountType.Tag),
		DisplayName:     a.Name.DisplayName,
		AbbreviatedName: a.Name.AbbreviatedName,
		Email:           a.Email,
		Country:         a.Country,
		Locale:          a.Locale,
	}
}

type spaceUsage struct {
	Used       int64 `json:"used"`
	Allocation struct {
		Tag       string `json:".tag"`
		Allocated int64  `json:"allocated"`
		// team allocations also report the member's own cap
		UserWithinTeamSpaceAllocated int64 `json:"user_within_team_space_allocated"`
	} `json:"allocation"`
}

func (s *spaceUsage) usage() *remote.SpaceUsage {
	u := &remote.SpaceUsage{Used: s.Used}
	switch s.Allocation.Tag {
	case "team":
		u.TeamAllocated = s.Allocation.Allocated
		u.IndividualAllocated = s.Allocation.UserWithinTeamSpaceAllocated
	default:
		u.IndividualAllocated = s.Allocation.Allocated
	}
	return u
}

// apiArg encodes v for the Dropbox-API-Arg header. HTTP headers must be
// ASCII, so every non-ASCII rune is written as a \u escape.
func apiArg(v interface{}) (string, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r < utf8.RuneSelf {
			buf.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			r -= 0x10000
			fmt.Fprintf(&buf, `\u%04x\u%04x`, 0xD800+(r>>10), 0xDC00+(r&0x3FF))
			continue
		}
		fmt.Fprintf(&buf, `\u%04x`, r)
	}
	return buf.String(), nil
}
