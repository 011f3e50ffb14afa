package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/S-Muro0526/wasabi/internal/errors"
)

// ReadCSV reads a two-column key,value file. A first row of exactly
// "key,value" is treated as a header. Lines starting with '#' are comments,
// a row with no value column sets the key to the empty string, and later rows
// override earlier ones.
func ReadCSV(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewError("readConfig", errors.ErrInvalidConfig).WithMessage(err.Error())
	}
	defer f.Close()

	values, err := parseCSV(f)
	if err != nil {
		return nil, errors.NewError("readConfig", errors.ErrInvalidConfig).
			WithMessage(fmt.Sprintf("parse %q: %v", path, err))
	}
	return values, nil
}

func parseCSV(r io.Reader) (map[string]any, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	values := make(map[string]any)
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff")))
		value := ""
		if len(record) > 1 {
			value = strings.TrimSpace(record[1])
		}
		if first {
			first = false
			if key == "key" && strings.EqualFold(value, "value") {
				continue
			}
		}
		if key == "" {
			continue
		}
		values[key] = value
	}
	return values, nil
}
