package accounting

import (
	"fmt"
	"regexp"
	"strconv"
)

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// NextNumber derives the next document number for a family from the last
// issued number. With no prior number the sequence starts at
// "{prefix}-000001". Otherwise the trailing run of digits is incremented and
// zero-padded to 6 digits, preserving any non-numeric head verbatim; a last
// number without trailing digits restarts the sequence.
//
// The function only computes the next value from a caller-supplied last
// number; serializing issuance per family is the persistence layer's job (the
// repositories advance a sequence row locked inside the same transaction that
// inserts the document).
func NextNumber(prefix string, lastIssued string) string {
	if lastIssued == "" {
		return fmt.Sprintf("%s-%06d", prefix, 1)
	}

	loc := trailingDigits.FindStringIndex(lastIssued)
	if loc == nil {
		return fmt.Sprintf("%s-%06d", prefix, 1)
	}

	n, err := strconv.ParseInt(lastIssued[loc[0]:loc[1]], 10, 64)
	if err != nil {
		// Digit run too long to parse; treat like a missing sequence.
		return fmt.Sprintf("%s-%06d", prefix, 1)
	}

	return fmt.Sprintf("%s%06d", lastIssued[:loc[0]], n+1)
}
