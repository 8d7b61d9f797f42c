package bronze

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "medallion/pkg/errors"
)

func writeExtract(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadDelimitedSkipsHeader(t *testing.T) {
	path := writeExtract(t, "cust.csv",
		"cid,cntry\nAW-00011000,United States\nAW-00011001,Germany\n")

	rows, err := ReadDelimited(path, ',', 1, 2)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, []interface{}{"AW-00011000", "United States"}, rows[0])
	assert.Equal(t, []interface{}{"AW-00011001", "Germany"}, rows[1])
}

func TestReadDelimitedPadsAndTruncates(t *testing.T) {
	path := writeExtract(t, "ragged.csv",
		"AW-00011000\nAW-00011001,Germany,extra\n")

	rows, err := ReadDelimited(path, ',', 0, 2)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	// Narrow record padded with a null
	assert.Equal(t, []interface{}{"AW-00011000", nil}, rows[0])
	// Wide record truncated to the landing width
	assert.Equal(t, []interface{}{"AW-00011001", "Germany"}, rows[1])
}

func TestReadDelimitedBlankFieldsBecomeNulls(t *testing.T) {
	path := writeExtract(t, "blanks.csv", "1,,M\n")

	rows, err := ReadDelimited(path, ',', 0, 3)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, []interface{}{"1", nil, "M"}, rows[0])
}

func TestReadDelimitedCustomDelimiter(t *testing.T) {
	path := writeExtract(t, "pipes.csv", "CO-RF-FR|Road Frames\n")

	rows, err := ReadDelimited(path, '|', 0, 2)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, []interface{}{"CO-RF-FR", "Road Frames"}, rows[0])
}

func TestReadDelimitedMissingFileIsFatal(t *testing.T) {
	_, err := ReadDelimited(filepath.Join(t.TempDir(), "absent.csv"), ',', 0, 2)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSourceNotFound, apperrors.GetErrorCode(err))
}

func TestReadDelimitedUnreadableSourceIsFatal(t *testing.T) {
	// A directory opens fine but cannot be read as records.
	_, err := ReadDelimited(t.TempDir(), ',', 0, 2)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSourceMalformed, apperrors.GetErrorCode(err))
}

func TestReadDelimitedEmptyFile(t *testing.T) {
	path := writeExtract(t, "empty.csv", "")

	rows, err := ReadDelimited(path, ',', 1, 2)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
