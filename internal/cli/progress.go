package cli

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/schollz/progressbar/v3"

	"github.com/S-Muro0526/wasabi/internal/transfer"
)

const refreshRate = 100 * time.Millisecond

// byteBar reports a single transfer on a byte progress bar.
type byteBar struct {
	bar *progressbar.ProgressBar
}

func newByteBar(w io.Writer, size int64, description string) *byteBar {
	return &byteBar{bar: progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(refreshRate),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
	)}
}

func (b *byteBar) Add(n int64) {
	_ = b.bar.Add64(n)
}

func (b *byteBar) Finish() {
	_ = b.bar.Finish()
}

// byteBars returns a factory creating one byteBar per object.
func byteBars(w io.Writer) transfer.ProgressFactory {
	return func(target transfer.Target, size int64) transfer.Progress {
		return newByteBar(w, size, describe(target))
	}
}

// describe labels a transfer with its file name and abbreviated version.
func describe(target transfer.Target) string {
	desc := path.Base(target.Key)
	if target.VersionID != "" {
		id := target.VersionID
		if len(id) > 7 {
			id = id[:7]
		}
		desc += fmt.Sprintf(" (ver: %s)", id)
	}
	return desc
}

// batchBar counts finished objects and shows the bytes written so far.
type batchBar struct {
	bar   *progressbar.ProgressBar
	label string
	bytes int64
}

func newBatchBar(w io.Writer, count int, label string) *batchBar {
	return &batchBar{
		label: label,
		bar: progressbar.NewOptions(count,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetItsString("file"),
			progressbar.OptionShowIts(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(refreshRate),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		),
	}
}

// Files returns the sink advanced once per finished object.
func (b *batchBar) Files() transfer.Progress {
	return progressFunc(func(n int64) {
		_ = b.bar.Add64(n)
	})
}

// Bytes returns the sink that accumulates bytes across the batch.
func (b *batchBar) Bytes() transfer.Progress {
	return progressFunc(func(n int64) {
		b.bytes += n
		b.bar.Describe(fmt.Sprintf("%s [%s]", b.label, humanSize(b.bytes)))
	})
}

func (b *batchBar) Finish() {
	_ = b.bar.Finish()
}

type progressFunc func(n int64)

func (f progressFunc) Add(n int64) {
	f(n)
}

func humanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return datasize.ByteSize(uint64(n)).HumanReadable()
}
