package imageopt

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

const CWEBP_BINARY = "cwebp"

// CwebpEncoder runs the cwebp binary found in PATH.
type CwebpEncoder struct {
	Quality int
}

func (e CwebpEncoder) Encode(ctx context.Context, src, dst string) error {
	binary, err := exec.LookPath(CWEBP_BINARY)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, binary, "-quiet", "-q", strconv.Itoa(e.Quality), src, "-o", dst)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", CWEBP_BINARY, err, output)
	}
	return nil
}
