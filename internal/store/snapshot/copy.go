package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/barikyo/ciallo/internal/store"
)

// copyFile copies the live file src to the new file dst. src is opened with
// the widest sharing the platform offers so an owner holding it open for
// writing does not block the copy. dst must not exist.
func copyFile(ctx context.Context, src, dst string) error {
	in, err := openShared(src)
	if err != nil {
		if isBusy(err) {
			return fmt.Errorf("%w: %v", store.ErrSourceBusy, err)
		}
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create copy: %w", err)
	}

	if _, err := io.Copy(out, &ctxReader{ctx: ctx, r: in}); err != nil {
		out.Close()
		if isBusy(err) {
			return fmt.Errorf("%w: %v", store.ErrSourceBusy, err)
		}
		return fmt.Errorf("failed to copy source: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	return nil
}

// ctxReader stops a copy once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
