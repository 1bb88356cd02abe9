package mountctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/afero"
)

var errNotYetMounted = errors.New("mountctl: mount not yet visible in mount table")

// Mounter invokes the host OS's WebDAV mount utilities. Fs is used only
// for the `mkdir -p` of the mount point directory, matching the
// teacher's habit of taking an afero.Fs rather than calling os directly
// (internal/webdav/server.go takes afero.Fs for exactly this reason: it
// makes the directory-creation side effect swappable in tests).
type Mounter struct {
	Fs afero.Fs
}

// NewMounter builds a Mounter backed by the real filesystem.
func NewMounter() *Mounter {
	return &Mounter{Fs: afero.NewOsFs()}
}

// strategyResult captures one mount attempt's outcome, so a final
// all-strategies-failed error can report exit codes.
type strategyResult struct {
	name     string
	err      error
	exitCode int
	stderr   string
}

// Mount attempts the three strategies from spec §4.G in order, returning
// the mount point actually used (which, for strategy 3, may differ from
// the requested path — the Finder decides where it lands) and the
// WebDAV URL that was mounted.
func (m *Mounter) Mount(ctx context.Context, plainPort, tlsPort int, clientID, requestedMountPoint string) (mountPoint, webdavURL string, err error) {
	if err := m.Fs.MkdirAll(requestedMountPoint, 0o755); err != nil {
		return "", "", fmt.Errorf("mkdir -p %s: %w", requestedMountPoint, err)
	}

	httpURL := fmt.Sprintf("http://127.0.0.1:%d/webdav/%s/", plainPort, clientID)
	httpsURL := fmt.Sprintf("https://127.0.0.1:%d/webdav/%s/", tlsPort, clientID)

	results := make([]strategyResult, 0, 3)

	// Strategy 1: host mount utility over loopback HTTP.
	if r := runMountWebdav(ctx, httpURL, requestedMountPoint); r.err == nil {
		return requestedMountPoint, httpURL, nil
	} else {
		results = append(results, r)
	}

	// Strategy 2: host mount utility over loopback HTTPS.
	if r := runMountWebdav(ctx, httpsURL, requestedMountPoint); r.err == nil {
		return requestedMountPoint, httpsURL, nil
	} else {
		results = append(results, r)
	}

	// Strategy 3: Finder's "mount volume" scripting bridge, then poll the
	// system mount table to discover where it actually landed.
	r := runFinderMount(ctx, httpURL)
	if r.err == nil {
		actual, pollErr := pollForMount(ctx, clientID, plainPort, tlsPort)
		if pollErr == nil {
			return actual, httpURL, nil
		}
		r.err = pollErr
	}
	results = append(results, r)

	// All three failed. Spec §9 flags this as ambiguous in the original:
	// the error message uses strategy 1's exit code and stderr, not
	// strategy 3's (the last one tried) — preserved as-is, see
	// DESIGN.md's Open Question decision.
	first := results[0]
	return "", "", fmt.Errorf(
		"all mount strategies failed: %s (exit %d): %s",
		first.name, first.exitCode, first.stderr,
	)
}

func runMountWebdav(ctx context.Context, webdavURL, mountPoint string) strategyResult {
	cmd := exec.CommandContext(ctx, "mount_webdav", "-S", webdavURL, mountPoint)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return strategyResult{
		name:     "mount_webdav " + webdavURL,
		err:      err,
		exitCode: exitCodeOf(err),
		stderr:   stderr.String(),
	}
}

func runFinderMount(ctx context.Context, webdavURL string) strategyResult {
	script := fmt.Sprintf(`tell application "Finder" to mount volume %q`, webdavURL)
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return strategyResult{
		name:     "osascript mount volume " + webdavURL,
		err:      err,
		exitCode: exitCodeOf(err),
		stderr:   stderr.String(),
	}
}

// pollForMount polls the system mount table for a volume matching the
// client id or the "/webdav/" marker, using retry-go (up to 10 attempts
// at a fixed 500ms delay) the way the teacher's
// internal/usenet/usenet_reader.go retries a flaky resource instead of
// hand-rolling a poll loop.
func pollForMount(ctx context.Context, clientID string, plainPort, tlsPort int) (string, error) {
	var found string
	err := retry.Do(
		func() error {
			entries, err := readMountTable(ctx)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if strings.Contains(e.raw, clientID) || strings.Contains(e.raw, "/webdav/") {
					found = e.mountPoint
					return nil
				}
			}
			return errNotYetMounted
		},
		retry.Attempts(10),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			slog.DebugContext(ctx, "waiting for Finder mount to register", "attempt", n+1)
		}),
	)
	if err != nil {
		return "", err
	}
	return found, nil
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
