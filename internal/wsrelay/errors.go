package wsrelay

import "errors"

var errBadToken = errors.New("registration token mismatch")
