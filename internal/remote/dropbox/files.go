package dropbox

import (
	"context"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
)

const searchPageSize = 100

// ListFolder returns the direct children of path, following cursors.
func (c *Client) ListFolder(ctx context.Context, path string) ([]remote.Entry, error) {
	var page listFolderResult
	if err := c.rpcCall(ctx, "list_folder", "/files/list_folder", familyLookup,
		listFolderArg{Path: path}, &page); err != nil {
		return nil, err
	}

	entries := make([]remote.Entry, 0, len(page.Entries))
	for {
		for i := range page.Entries {
			entries = append(entries, page.Entries[i].entry())
		}
		if !page.HasMore {
			return entries, nil
		}
		cursor := page.Cursor
		page = listFolderResult{}
		if err := c.rpcCall(ctx, "list_folder", "/files/list_folder/continue", familyLookup,
			listFolderContinueArg{Cursor: cursor}, &page); err != nil {
			return nil, err
		}
	}
}

// Metadata returns the entry at path. The root has no metadata.
func (c *Client) Metadata(ctx context.Context, path string) (*remote.Entry, error) {
	var m metadata
	if err := c.rpcCall(ctx, "get_metadata", "/files/get_metadata", familyLookup,
		pathArg{Path: path}, &m); err != nil {
		return nil, err
	}
	e := m.entry()
	return &e, nil
}

// Search finds entries under path whose names match query.
func (c *Client) Search(ctx context.Context, path, query string) ([]remote.Entry, error) {
	var page searchResult
	arg := searchArg{Query: query, Options: searchOptions{Path: path, MaxResults: searchPageSize}}
	if err := c.rpcCall(ctx, "search", "/files/search_v2", familyLookup, arg, &page); err != nil {
		return nil, err
	}

	var entries []remote.Entry
	for {
		for _, match := range page.Matches {
			entries = append(entries, match.Metadata.Metadata.entry())
		}
		if !page.HasMore || page.Cursor == "" {
			return entries, nil
		}
		cursor := page.Cursor
		page = searchResult{}
		if err := c.rpcCall(ctx, "search", "/files/search/continue_v2", familyLookup,
			searchContinueArg{Cursor: cursor}, &page); err != nil {
			return nil, err
		}
	}
}

// Copy copies a file or folder; the target must not exist.
func (c *Client) Copy(ctx context.Context, from, to string) (*remote.Entry, error) {
	return c.mutate(ctx, "copy", "/files/copy_v2", familyRelocation, relocationArg{FromPath: from, ToPath: to})
}

// Move moves or renames a file or folder; the target must not exist.
func (c *Client) Move(ctx context.Context, from, to string) (*remote.Entry, error) {
	return c.mutate(ctx, "move", "/files/move_v2", familyRelocation, relocationArg{FromPath: from, ToPath: to})
}

// Delete removes a file or a folder with its contents.
func (c *Client) Delete(ctx context.Context, path string) (*remote.Entry, error) {
	return c.mutate(ctx, "delete", "/files/delete_v2", familyDelete, pathArg{Path: path})
}

// CreateFolder creates a folder at path.
func (c *Client) CreateFolder(ctx context.Context, path string) (*remote.Entry, error) {
	return c.mutate(ctx, "create_folder", "/files/create_folder_v2", familyWrite, createFolderArg{Path: path})
}

func (c *Client) mutate(ctx context.Context, op, endpoint string, family errorFamily, arg interface{}) (*remote.Entry, error) {
	var res metadataResult
	if err := c.rpcCall(ctx, op, endpoint, family, arg, &res); err != nil {
		return nil, err
	}
	e := res.Metadata.entry()
	if op == "create_folder" {
		// create_folder_v2 omits the .tag
		e.Kind = remote.KindFolder
	}
	return &e, nil
}
