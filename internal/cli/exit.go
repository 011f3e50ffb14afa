package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/S-Muro0526/wasabi/internal/downloader"
	"github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/transfer"
)

// errIncomplete marks a batch that finished with failed objects.
var errIncomplete = stderrors.New("some objects failed to download")

func (a *App) execute(
	ctx context.Context,
	root *rootOptions,
	svc *downloader.Service,
	plan *downloader.Plan,
	label string,
) (*transfer.Tally, error) {
	opts := transfer.BatchOptions{}
	if a.progressEnabled(root) {
		bar := newBatchBar(a.Stderr, plan.Count(), label)
		defer bar.Finish()
		opts.Files = bar.Files()
		opts.Bytes = bar.Bytes()
	}
	return svc.Execute(ctx, plan, opts)
}

func batchResult(tally *transfer.Tally) error {
	if tally.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d of %d", errIncomplete, tally.Failed, tally.Total())
}

// exitCode reports err on stderr and maps it to a process exit code.
func (a *App) exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, errIncomplete):
		return ExitPartial
	default:
		fmt.Fprintf(a.Stderr, "Error: %s\n", message(err))
		return ExitFatal
	}
}

// message renders err for the user.
func message(err error) string {
	var e *errors.Error
	hasContext := errors.As(err, &e)

	switch {
	case stderrors.Is(err, errors.ErrMFAFailed):
		return "MFA authentication failed. The OTP may be incorrect or expired. (" + err.Error() + ")"
	case errors.IsObjectNotFound(err) && hasContext && e.Key != "":
		return fmt.Sprintf("Source file '%s' not found in bucket '%s'.", e.Key, e.Bucket)
	case errors.IsVersioningUnsupported(err) && hasContext:
		return fmt.Sprintf("Bucket '%s' may not have versioning enabled, which is required for this command.", e.Bucket)
	case errors.IsLocalIO(err):
		return "Could not write the destination: " + err.Error()
	case stderrors.Is(err, context.Canceled):
		return "interrupted"
	default:
		return err.Error()
	}
}
