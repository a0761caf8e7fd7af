package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"3tcapital/ms_service_documents/internal/core/document"
)

// Drive archives files into a Google Drive folder using a service account.
type Drive struct {
	files    *drive.FilesService
	folderID string
}

// NewDrive authenticates with the service account credentials file.
func NewDrive(ctx context.Context, credentialsPath, folderID string, opts ...option.ClientOption) (*Drive, error) {
	if folderID == "" {
		return nil, fmt.Errorf("drive folder id is required")
	}
	if credentialsPath != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(credentialsPath)}, opts...)
	}
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create drive client: %w", err)
	}
	return &Drive{files: srv.Files, folderID: folderID}, nil
}

func (d *Drive) Name() string { return "drive" }

// Store uploads the file and returns its web link, or its id when Drive
// does not report a link.
func (d *Drive) Store(ctx context.Context, file document.File) (string, error) {
	meta := &drive.File{
		Name:     file.Name,
		MimeType: file.ContentType,
		Parents:  []string{d.folderID},
	}

	created, err := d.files.Create(meta).
		Media(bytes.NewReader(file.Bytes)).
		SupportsAllDrives(true).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload %s to drive: %w", file.Name, err)
	}

	if created.WebViewLink != "" {
		return created.WebViewLink, nil
	}
	return "drive://" + created.Id, nil
}

// Remove deletes an uploaded file given the location Store returned.
func (d *Drive) Remove(ctx context.Context, location string) error {
	id := driveFileID(location)
	if id == "" {
		return fmt.Errorf("unrecognized drive location %q", location)
	}
	if err := d.files.Delete(id).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete %s from drive: %w", id, err)
	}
	return nil
}

// driveFileID accepts "drive://{id}" and web links of the form
// https://drive.google.com/file/d/{id}/view.
func driveFileID(location string) string {
	if id, ok := strings.CutPrefix(location, "drive://"); ok {
		return id
	}
	_, rest, ok := strings.Cut(location, "/file/d/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	id, _, _ = strings.Cut(id, "?")
	return id
}
