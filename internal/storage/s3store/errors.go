package s3store

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	wserrors "github.com/S-Muro0526/wasabi/internal/errors"
)

// S3 error code constants
const (
	codeNotFound       = "NotFound"
	codeNoSuchKey      = "NoSuchKey"
	codeNoSuchVersion  = "NoSuchVersion"
	codeNoSuchBucket   = "NoSuchBucket"
	codeAccessDenied   = "AccessDenied"
	codeForbidden      = "Forbidden"
	codeInvalidRequest = "InvalidRequest"
)

// classify maps an SDK error onto the downloader's sentinel errors while
// keeping the original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case codeNotFound, codeNoSuchKey, codeNoSuchVersion:
			return fmt.Errorf("%w: %w", wserrors.ErrObjectNotFound, err)
		case codeNoSuchBucket:
			return fmt.Errorf("%w: %w", wserrors.ErrBucketNotFound, err)
		case codeAccessDenied, codeForbidden:
			return fmt.Errorf("%w: %w", wserrors.ErrAccessDenied, err)
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", wserrors.ErrObjectNotFound, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %w", wserrors.ErrAccessDenied, err)
		}
	}

	return err
}

// classifyVersionListing is classify plus the InvalidRequest response object
// stores send when the bucket does not keep versions.
func classifyVersionListing(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == codeInvalidRequest {
		return fmt.Errorf("%w: %w", wserrors.ErrVersioningUnsupported, err)
	}
	return classify(err)
}
