package application

import "context"

// Notifier delivers outbound email synchronously. The auth service needs a
// synchronous send for the reset flow so delivery failures can roll back the
// stored reset state.
type Notifier interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// UploadOptions mirror the media provider's transform parameters.
type UploadOptions struct {
	Folder  string
	Width   int
	Height  int
	Gravity string
	Crop    string
}

// UploadResult is the stored-object handle: an opaque id for later deletion
// and a retrievable URL for clients.
type UploadResult struct {
	PublicID  string
	SecureURL string
}

// MediaUploader is the media-storage collaborator. Upload reads a local file;
// callers own the temp file and remove it after the attempt.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string, opts UploadOptions) (UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}
