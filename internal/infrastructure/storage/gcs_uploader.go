package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/Dheerajaldak/lms-backend/internal/application"
	"github.com/Dheerajaldak/lms-backend/pkg/helpers"
)

// GCSUploader stores media objects in a Google Cloud Storage bucket. The
// object path doubles as the public id, so Delete works from the id alone.
type GCSUploader struct {
	Client *gcs.Client
	Bucket string
}

func NewGCSUploader(client *gcs.Client, bucket string) *GCSUploader {
	return &GCSUploader{Client: client, Bucket: bucket}
}

func (u *GCSUploader) Upload(ctx context.Context, localPath string, opts application.UploadOptions) (application.UploadResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return application.UploadResult{}, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	ext := strings.ToLower(filepath.Ext(localPath))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectPath := path.Join(opts.Folder, uuid.NewString()+ext)
	wc := u.Client.Bucket(u.Bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0
	wc.Metadata = transformMetadata(opts)
	if _, err := io.Copy(wc, f); err != nil {
		_ = wc.Close()
		return application.UploadResult{}, err
	}
	if err := wc.Close(); err != nil {
		return application.UploadResult{}, err
	}
	return application.UploadResult{
		PublicID:  objectPath,
		SecureURL: helpers.PublicURL(u.Bucket, objectPath),
	}, nil
}

func (u *GCSUploader) Delete(ctx context.Context, publicID string) error {
	return helpers.DeleteObject(ctx, u.Client, u.Bucket, publicID)
}

// transformMetadata records the requested crop so a downstream image proxy
// can apply it; GCS itself stores the original bytes.
func transformMetadata(opts application.UploadOptions) map[string]string {
	md := map[string]string{}
	if opts.Width > 0 {
		md["width"] = strconv.Itoa(opts.Width)
	}
	if opts.Height > 0 {
		md["height"] = strconv.Itoa(opts.Height)
	}
	if opts.Gravity != "" {
		md["gravity"] = opts.Gravity
	}
	if opts.Crop != "" {
		md["crop"] = opts.Crop
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

var _ application.MediaUploader = (*GCSUploader)(nil)
