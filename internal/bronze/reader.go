package bronze

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"medallion/internal/common"
	apperrors "medallion/pkg/errors"
)

// ReadDelimited reads one raw extract into positional rows ready for bulk
// insert. The first skipHeader records are discarded. Rows narrower than
// want are padded with nulls and wider rows are truncated; the raw layer
// lands what the source system sent, cleansing happens in silver. Blank
// fields become SQL nulls.
//
// A file that cannot be opened or parsed is fatal to the batch: no
// skip-and-continue semantics exist.
func ReadDelimited(path string, delimiter rune, skipHeader, want int) ([][]interface{}, error) {
	cleaned, err := common.CleanPath(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceNotFound, "Invalid source path").
			WithContext("source", path)
	}

	file, err := os.Open(cleaned) // #nosec G304 - path is validated
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceNotFound, "Failed to open source extract").
			WithContext("source", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = delimiter
	// Column drift is handled by padding/truncation below.
	reader.FieldsPerRecord = -1
	// Real-world extracts are sloppy about quoting.
	reader.LazyQuotes = true

	var rows [][]interface{}
	record := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.IngestError("Malformed source record", path, err).
				WithContext("record", record+1)
		}
		record++
		if record <= skipHeader {
			continue
		}

		row := make([]interface{}, want)
		for i := 0; i < want; i++ {
			if i < len(fields) && fields[i] != "" {
				row[i] = fields[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
