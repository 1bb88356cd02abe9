package mountctl

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Unmount invokes the host unmount utility on an already-validated path
// (spec §4.G: "POST /api/unmount with {mount_path}... Invoke the host
// unmount utility").
func Unmount(ctx context.Context, mountPath string) error {
	cmd := exec.CommandContext(ctx, "umount", mountPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("umount %s: %w: %s", mountPath, err, stderr.String())
	}
	return nil
}
