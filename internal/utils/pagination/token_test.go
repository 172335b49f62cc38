package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The document, journal and payment listings all cursor on a (date, created_at)
// tuple; the token must carry both timestamps without losing precision.
func TestEncodeDecodeToken_TupleCursor(t *testing.T) {
	tests := []struct {
		name      string
		issueDate time.Time
		createdAt time.Time
	}{
		{
			name:      "invoice issued at midnight, created mid-day",
			issueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			createdAt: time.Date(2025, 3, 1, 14, 30, 45, 123456789, time.UTC),
		},
		{
			name:      "payment date equals creation instant",
			issueDate: time.Date(2025, 6, 17, 9, 5, 0, 0, time.UTC),
			createdAt: time.Date(2025, 6, 17, 9, 5, 0, 0, time.UTC),
		},
		{
			name:      "zero times",
			issueDate: time.Time{},
			createdAt: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := EncodeToken(tt.issueDate, tt.createdAt)
			require.NotEmpty(t, token)

			decodedDate, decodedCreatedAt, err := DecodeToken(token)
			require.NoError(t, err)
			assert.True(t, tt.issueDate.Equal(decodedDate), "issue date should survive the round trip")
			assert.True(t, tt.createdAt.Equal(decodedCreatedAt), "created_at should survive the round trip")
		})
	}
}

func TestDecodeToken_Invalid(t *testing.T) {
	// Not base64 at all.
	_, _, err := DecodeToken("not a token!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	// Valid base64 but a single field; a tuple cursor needs two.
	singleField := EncodeMultiFieldToken("2025-03-01T00:00:00Z")
	_, _, err = DecodeToken(singleField)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	// Two fields but the first is not a timestamp.
	badDate := EncodeMultiFieldToken("INV-000001", "2025-03-01T14:30:45.123456789Z")
	_, _, err = DecodeToken(badDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date parse")
}

// The per-account ledger listing cursors on (posted_at, ledger_entry_id); the
// second field is an opaque ID, so it rides in a multi-field token.
func TestMultiFieldToken_LedgerCursor(t *testing.T) {
	postedAt := time.Date(2025, 4, 2, 16, 45, 30, 987654321, time.UTC)
	ledgerEntryID := "5f0c9e1a-7b3d-4a2e-9c8f-1d6e2b4a8c0d"

	token := EncodeMultiFieldToken(postedAt.Format(time.RFC3339Nano), ledgerEntryID)

	fields, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	require.Len(t, fields, 2)

	decodedPostedAt, err := time.Parse(time.RFC3339Nano, fields[0])
	require.NoError(t, err)
	assert.True(t, postedAt.Equal(decodedPostedAt), "posted_at should survive the round trip")
	assert.Equal(t, ledgerEntryID, fields[1])
}

func TestDecodeMultiFieldToken_Invalid(t *testing.T) {
	_, err := DecodeMultiFieldToken("!!!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	// The separator is a pipe, so fields containing one split apart; cursor
	// fields are timestamps and UUIDs, which never carry pipes.
	token := EncodeMultiFieldToken("a|b", "c")
	fields, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Len(t, fields, 3)
}
