package converter

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"ai-docchat-be/internal/apperr"
)

// CSVLoader flattens a csv file into one comma-joined line per record.
type CSVLoader struct{}

func (l *CSVLoader) CanHandle(ext string) bool {
	return ext == ".csv"
}

func (l *CSVLoader) Load(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open csv %s: %v", apperr.ErrConversion, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv %s: %v", apperr.ErrConversion, path, err)
	}

	lines := make([]string, len(records))
	for i, row := range records {
		lines[i] = strings.Join(row, ", ")
	}

	return []Document{{
		Content:  strings.Join(lines, "\n"),
		Metadata: map[string]interface{}{"source": path},
	}}, nil
}
