package encode

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aticu/pre/internal/contract"
)

// fieldName mangles a clause's canonical encoding into a marker field name.
// Alphanumeric bytes pass through; every other byte, underscores included,
// becomes _ plus exactly two hex digits. Fixed-width escapes keep the
// mapping injective: a _ in the output always starts a three-byte escape,
// so the original encoding can be read back unambiguously.
func fieldName(p contract.Precondition) string {
	var b strings.Builder
	b.WriteByte('_')
	for _, c := range []byte(contract.Canonical(p)) {
		switch {
		case c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02x", c)
		}
	}
	return b.String()
}

// setHash digests a canonically sorted clause list. Used by the nominal
// strategy, whose marker type names must cover the whole set.
func setHash(sorted []contract.Precondition) string {
	h := sha256.New()
	for _, p := range sorted {
		h.Write([]byte(contract.Canonical(p)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:8]
}
