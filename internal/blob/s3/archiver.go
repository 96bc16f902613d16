package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// multipartWriter is implemented by writers that can stream large objects
// in parts.
type multipartWriter interface {
	PutMultipart(ctx context.Context, path string, data io.Reader, contentType string, partSize int64) error
}

// Archiver implements domain.SnapshotArchiver by serializing each snapshot
// to JSON and uploading it under snapshots/YYYY/MM/DD/<id>.json. Snapshots
// at or above the multipart threshold go through PutMultipart when the
// writer supports it.
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates an Archiver that uploads through writer.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveSnapshot uploads snap and returns the object key.
func (a *Archiver) ArchiveSnapshot(ctx context.Context, snap domain.Snapshot) (string, error) {
	if snap.ID == "" {
		return "", fmt.Errorf("s3blob: archive snapshot: empty id")
	}
	buf, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive snapshot marshal: %w", err)
	}

	path := snapshotPath(snap)
	const contentType = "application/json"

	if mw, ok := a.writer.(multipartWriter); ok && int64(len(buf)) >= minPartSize {
		err = mw.PutMultipart(ctx, path, bytes.NewReader(buf), contentType, minPartSize)
	} else {
		err = a.writer.Put(ctx, path, bytes.NewReader(buf), contentType)
	}
	if err != nil {
		return "", fmt.Errorf("s3blob: archive snapshot upload: %w", err)
	}
	return path, nil
}

// snapshotPath partitions archives by the UTC day the snapshot was generated.
//
//	snapshots/2025/01/31/6f1c....json
func snapshotPath(snap domain.Snapshot) string {
	return fmt.Sprintf("snapshots/%s/%s.json", snap.GeneratedAt.UTC().Format("2006/01/02"), snap.ID)
}

// Compile-time interface check.
var _ domain.SnapshotArchiver = (*Archiver)(nil)
