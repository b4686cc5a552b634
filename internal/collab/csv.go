package collab

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pkt.systems/repostamp/schema"
)

var csvFields = []Field{
	{Name: "path", Info: "CSV file, one row per repository, one login per cell (required)"},
}

// CSV reads lists from a file each time Produce is called.
type CSV struct {
	Path string
}

func newCSV(params map[string]string) (Source, error) {
	path := strings.TrimSpace(params["path"])
	if path == "" {
		return nil, fmt.Errorf("%w: csv path is required", schema.ErrInvalidSource)
	}
	return CSV{Path: os.ExpandEnv(path)}, nil
}

// Produce implements Source.
func (s CSV) Produce(count int) ([][]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidSource, err)
	}
	defer func() { _ = f.Close() }()
	rows, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	return fit(rows, count)
}

// ReadCSV parses collaborator rows. Lines starting with '#' are comments.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schema.ErrInvalidSource, err)
		}
		row := make([]string, 0, len(record))
		for _, cell := range record {
			if login := strings.TrimSpace(cell); login != "" {
				row = append(row, login)
			}
		}
		rows = append(rows, row)
	}
}
