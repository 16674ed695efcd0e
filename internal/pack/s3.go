package pack

import (
	"context"

	infraS3 "tintcore/internal/infra/pack/s3"
)

// S3Config re-exports the infra S3 configuration.
type S3Config = infraS3.Config

// NewS3 opens a pack mirrored to an S3 bucket.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infraS3.New(ctx, cfg)
}
