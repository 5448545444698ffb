package cli

import (
	"context"
	"io"
)

func RunWithIO(ctx context.Context, argv []string, stdin io.Reader, stdout io.Writer) *Error {
	return run(ctx, argv, stdin, stdout)
}
