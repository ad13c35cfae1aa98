package screening

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newReportID builds a unique screening report identifier of the form
// AML-<base36 millisecond timestamp>-<6 random base36 chars>, uppercased.
func newReportID(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)

	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand never fails on supported platforms; keep the
			// ID well-formed anyway.
			suffix[i] = base36Alphabet[i]
			continue
		}
		suffix[i] = base36Alphabet[n.Int64()]
	}
	return strings.ToUpper("AML-" + ts + "-" + string(suffix))
}
