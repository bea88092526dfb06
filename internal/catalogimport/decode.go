package catalogimport

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	scanBufferSize = 64 * 1024
	maxLineSize    = 1024 * 1024
	cancelCheck    = 1000
)

// readRecords decodes a gzipped NDJSON stream. Blank lines are skipped but
// still counted so that reported line numbers match the file.
func readRecords(ctx context.Context, r io.Reader) ([]Record, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, scanBufferSize), maxLineSize)

	var records []Record
	line := 0
	for scanner.Scan() {
		line++
		if line%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		record := Record{Line: line}
		if err := json.Unmarshal([]byte(text), &record.Request); err != nil {
			record.Err = fmt.Errorf("invalid JSON: %w", err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read line %d: %w", line+1, err)
	}

	return records, nil
}
