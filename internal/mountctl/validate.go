// Package mountctl implements the mount-control HTTP endpoints (spec
// §4.G): validating inputs, invoking the host OS's WebDAV mount/unmount
// utilities through a three-strategy fallback, and listing the system
// mount table, grounded on original_source/server/src/mount.rs.
package mountctl

import (
	"fmt"
	"strings"

	"github.com/snowcode-jp/ljc-server/internal/config"
)

// ValidateMountPath expands a leading "~", rejects any ".." segment, and
// requires the expanded path to have the expanded allowed base as a
// prefix (spec §4.G, §8: "the expanded path has the expanded allowed
// base as a prefix and contains no '..' segment").
func ValidateMountPath(allowedBase, mountPath string) (string, error) {
	if strings.Contains(mountPath, "..") {
		return "", errTraversal
	}

	expanded, err := config.ExpandTilde(mountPath)
	if err != nil {
		return "", err
	}

	expandedBase, err := config.ExpandTilde(allowedBase)
	if err != nil {
		return "", err
	}

	if !hasPathPrefix(expanded, expandedBase) {
		return "", errOutsideBase
	}

	return expanded, nil
}

// ValidateUnmountPath requires the path to contain "/ljc-" (the marker
// every mount point this relay created carries), to lie under the
// allowed base, and to contain no ".." (spec §4.G).
func ValidateUnmountPath(allowedBase, mountPath string) (string, error) {
	if strings.Contains(mountPath, "..") {
		return "", errTraversal
	}
	if !strings.Contains(mountPath, "/ljc-") {
		return "", errNotOurMount
	}

	expanded, err := config.ExpandTilde(mountPath)
	if err != nil {
		return "", err
	}
	expandedBase, err := config.ExpandTilde(allowedBase)
	if err != nil {
		return "", err
	}
	if !hasPathPrefix(expanded, expandedBase) {
		return "", errOutsideBase
	}

	return expanded, nil
}

// hasPathPrefix reports whether child lies under base, trimming trailing
// slashes from both sides first so "~/Public/mount/" and
// "~/Public/mount" are equivalent (spec §8: "Mount-path validation is
// idempotent under ~ expansion").
func hasPathPrefix(child, base string) bool {
	child = strings.TrimRight(child, "/")
	base = strings.TrimRight(base, "/")
	if child == base {
		return true
	}
	return strings.HasPrefix(child, base+"/")
}

// mountPointFor builds {base}/ljc-{first8(clientID)} (spec §4.G).
func mountPointFor(expandedBase, clientID string) string {
	first8 := clientID
	if len(first8) > 8 {
		first8 = first8[:8]
	}
	return fmt.Sprintf("%s/ljc-%s", strings.TrimRight(expandedBase, "/"), first8)
}
