package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// DocumentDataset flattens a sectioned Document into a three column
// dataset (section, field, value), one row per labelled field. Lets the
// CSV export carry the same content as the PDF rendition.
func DocumentDataset(doc Document) Dataset {
	dataset := Dataset{Headers: []string{"section", "field", "value"}}
	for _, section := range doc.Sections {
		for _, field := range section.Fields {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"section": section.Heading,
				"field":   field.Label,
				"value":   field.Value,
			})
		}
	}
	return dataset
}

// Render produces CSV encoded bytes for the dataset. Output starts with
// a UTF-8 BOM so spreadsheet tools detect the encoding.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	buf.WriteString("\uFEFF")
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
