// ABOUTME: Google Drive client for the snapshot sync backend
// ABOUTME: Named-file list/upload/update/download scoped to one folder
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/harperreed/rigsync/sync"
)

const fileFields = "id, name, modifiedTime"

// DriveClient implements the snapshot backend over the Drive v3 API. All
// operations are scoped to a single folder when folderID is set.
type DriveClient struct {
	svc      *drive.Service
	folderID string
}

// NewDriveClient creates an authenticated Drive client.
func NewDriveClient(ctx context.Context, token *oauth2.Token, folderID string) (*DriveClient, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	config := NewOAuthConfig()
	client := config.Client(ctx, token)

	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &DriveClient{svc: svc, folderID: folderID}, nil
}

// ListFiles returns files with the given name inside the sync folder.
func (d *DriveClient) ListFiles(ctx context.Context, name string) ([]sync.FileMeta, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name))
	if d.folderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", d.folderID)
	}

	res, err := d.svc.Files.List().
		Q(query).
		Fields(googleapi.Field("files(" + fileFields + ")")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapDriveErr("list files", err)
	}

	metas := make([]sync.FileMeta, 0, len(res.Files))
	for _, f := range res.Files {
		metas = append(metas, toMeta(f))
	}
	return metas, nil
}

// UploadFile creates a new file in the sync folder.
func (d *DriveClient) UploadFile(ctx context.Context, name string, content []byte, mimeType string) (*sync.FileMeta, error) {
	file := &drive.File{
		Name:     name,
		MimeType: mimeType,
	}
	if d.folderID != "" {
		file.Parents = []string{d.folderID}
	}

	created, err := d.svc.Files.Create(file).
		Media(bytes.NewReader(content)).
		Fields(fileFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapDriveErr("upload file", err)
	}

	meta := toMeta(created)
	return &meta, nil
}

// UpdateFile overwrites an existing file's content in place.
func (d *DriveClient) UpdateFile(ctx context.Context, fileID, name string, content []byte, mimeType string) (*sync.FileMeta, error) {
	file := &drive.File{
		Name:     name,
		MimeType: mimeType,
	}

	updated, err := d.svc.Files.Update(fileID, file).
		Media(bytes.NewReader(content)).
		Fields(fileFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapDriveErr("update file", err)
	}

	meta := toMeta(updated)
	return &meta, nil
}

// DownloadFile returns a file's content.
func (d *DriveClient) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	res, err := d.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, wrapDriveErr("download file", err)
	}
	defer func() { _ = res.Body.Close() }()

	content, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read download: %v", sync.ErrNetwork, err)
	}
	return content, nil
}

func toMeta(f *drive.File) sync.FileMeta {
	meta := sync.FileMeta{ID: f.Id, Name: f.Name}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			meta.ModifiedTime = t
		}
	}
	return meta
}

// escapeQuery escapes single quotes and backslashes for Drive query strings.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// wrapDriveErr maps Drive API failures onto the sync error taxonomy.
func wrapDriveErr(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 403) {
		return fmt.Errorf("%w: %s: %v", sync.ErrAuthRequired, op, err)
	}
	return fmt.Errorf("%w: %s: %v", sync.ErrNetwork, op, err)
}
