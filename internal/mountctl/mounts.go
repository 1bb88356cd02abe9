package mountctl

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// MountEntry is one line of the system mount table that looks relevant
// to this relay (spec §4.G: "GET /api/mounts enumerates the system mount
// table and filters lines that mention webdav, the plaintext port, the
// TLS port, or /webdav/").
type MountEntry struct {
	URL        string `json:"url"`
	MountPoint string `json:"mount_point"`
	Raw        string `json:"raw"`
}

type mountTableEntry struct {
	url        string
	mountPoint string
	raw        string
}

// readMountTable shells out to `mount` and parses every line into a
// mountTableEntry, the way original_source/server/src/mount.rs's
// find_webdav_mount / list_mounts split on " on " and " (".
func readMountTable(ctx context.Context) ([]mountTableEntry, error) {
	cmd := exec.CommandContext(ctx, "mount")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("mount: %w: %s", err, stderr.String())
	}

	lines := strings.Split(stdout.String(), "\n")
	entries := make([]mountTableEntry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, parseMountLine(line))
	}
	return entries, nil
}

// parseMountLine parses a line of the form
// "<url> on <mount point> (<options>)" into its parts. Any segment this
// doesn't find simply stays empty; callers only act on whichever of
// url/mountPoint/raw they need.
func parseMountLine(line string) mountTableEntry {
	entry := mountTableEntry{raw: line}

	onIdx := strings.Index(line, " on ")
	if onIdx < 0 {
		return entry
	}
	entry.url = strings.TrimSpace(line[:onIdx])

	rest := line[onIdx+len(" on "):]
	parenIdx := strings.Index(rest, " (")
	if parenIdx < 0 {
		entry.mountPoint = strings.TrimSpace(rest)
		return entry
	}
	entry.mountPoint = strings.TrimSpace(rest[:parenIdx])
	return entry
}

// List filters the system mount table the way spec §4.G describes,
// matching lines that mention "webdav", the plaintext port, the TLS
// port, or the literal substring "/webdav/".
func List(ctx context.Context, plainPort, tlsPort int) ([]MountEntry, error) {
	entries, err := readMountTable(ctx)
	if err != nil {
		return nil, err
	}

	plainMarker := fmt.Sprintf(":%d", plainPort)
	tlsMarker := fmt.Sprintf(":%d", tlsPort)

	out := make([]MountEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(e.raw, "webdav") ||
			strings.Contains(e.raw, plainMarker) ||
			strings.Contains(e.raw, tlsMarker) ||
			strings.Contains(e.raw, "/webdav/") {
			out = append(out, MountEntry{URL: e.url, MountPoint: e.mountPoint, Raw: e.raw})
		}
	}
	return out, nil
}
