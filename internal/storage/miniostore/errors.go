package miniostore

import (
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"

	"github.com/S-Muro0526/wasabi/internal/errors"
)

// classify maps a minio-go error onto the downloader's sentinel errors while
// keeping the original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchVersion", "NotFound":
		return fmt.Errorf("%w: %w", errors.ErrObjectNotFound, err)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %w", errors.ErrBucketNotFound, err)
	case "AccessDenied":
		return fmt.Errorf("%w: %w", errors.ErrAccessDenied, err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", errors.ErrObjectNotFound, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", errors.ErrAccessDenied, err)
	}
	return err
}

func classifyListing(err error, versions bool) error {
	if versions && minio.ToErrorResponse(err).Code == "InvalidRequest" {
		return fmt.Errorf("%w: %w", errors.ErrVersioningUnsupported, err)
	}
	return classify(err)
}
