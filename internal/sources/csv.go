package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cinelake/internal/services"
)

// Row is one CSV record addressed by header name.
type Row struct {
	header map[string]int
	fields []string
}

// Get returns the named field, or "" when the column or field is absent.
func (r Row) Get(name string) string {
	i, ok := r.header[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// ReadCSV streams the records of path to fn. The header must contain every
// column in required.
func ReadCSV(path string, required []string, fn func(Row) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "transform", "open csv", path, err)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeCSV(f, required, fn)
}

// DecodeCSV is ReadCSV over an arbitrary reader.
func DecodeCSV(r io.Reader, required []string, fn func(Row) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := readHeader(reader)
	if err != nil {
		return err
	}
	var missing []string
	for _, name := range required {
		if _, ok := header[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrValidation, "transform", "decode csv",
			"missing columns: "+strings.Join(missing, ", "), nil)
	}

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return services.Wrap(services.ErrValidation, "transform", "decode csv", "malformed record", err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if err := fn(Row{header: header, fields: fields}); err != nil {
			return err
		}
	}
}

func readHeader(reader *csv.Reader) (map[string]int, error) {
	names, err := reader.Read()
	if err == io.EOF {
		return nil, services.Wrap(services.ErrValidation, "transform", "decode csv", "empty file", nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transform", "decode csv", "malformed header", err)
	}
	header := make(map[string]int, len(names))
	for i, name := range names {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}
	return header, nil
}
