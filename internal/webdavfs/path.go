package webdavfs

import "strings"

// decodePath percent-decodes a path the way the Rust prototype's
// url_decode did (original_source/server/src/webdav_bridge.rs):
// malformed escapes pass through verbatim rather than erroring, because
// the host file browser must never see a 400 for a path it already
// considers well-formed. Go's net/http has usually already decoded
// r.URL.Path by the time it reaches us; this is applied defensively to
// any path handed to the adapter from outside that pipeline (spec §4.E:
// "malformed escape pass through verbatim").
func decodePath(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for i := 0; i < len(raw); i++ {
		if raw[i] != '%' || i+2 >= len(raw) {
			b.WriteByte(raw[i])
			continue
		}
		hi, okHi := hexVal(raw[i+1])
		lo, okLo := hexVal(raw[i+2])
		if !okHi || !okLo {
			b.WriteByte(raw[i])
			continue
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}

	return b.String()
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// normalizePath ensures a path starts with "/", matching the adapter's
// contract (spec §4.E: "normalised to start with '/'").
func normalizePath(name string) string {
	name = decodePath(name)
	if name == "" {
		return "/"
	}
	if name[0] != '/' {
		return "/" + name
	}
	return name
}
