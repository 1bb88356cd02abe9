package mountctl

import "errors"

var (
	errTraversal   = errors.New("mount path contains a \"..\" segment")
	errOutsideBase = errors.New("mount path is not under the allowed base")
	errNotOurMount = errors.New("path does not look like a mount this relay created")
)
