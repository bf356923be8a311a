package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/okian/handicap/internal/domain/model"
)

// CSVParser reads comma separated rounds with a header row.
type CSVParser struct {
	cfg config
}

// Parse implements Parser.
func (p *CSVParser) Parse(data []byte) ([]model.Round, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return parseTable(records, p.cfg)
}
