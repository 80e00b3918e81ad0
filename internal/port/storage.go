package port

import "context"

// DocumentURLSigner resolves a stored file location into a URL a signing
// provider can fetch. Locations that are already public URLs pass through
// unchanged; s3:// locations are presigned.
type DocumentURLSigner interface {
	SignedURL(ctx context.Context, fileLocation string) (string, error)
}
