package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// Tabular is implemented by result types that can render themselves as a
// table. CSV output requires it.
type Tabular interface {
	Header() []string
	Rows() [][]string
}

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter formats output as plain text. Tabular data renders as
// tab-separated rows; everything else falls back to fmt.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	if t, ok := data.(Tabular); ok {
		out := ""
		for _, row := range t.Rows() {
			line := ""
			for i, cell := range row {
				if i > 0 {
					line += "\t"
				}
				line += cell
			}
			out += line + "\n"
		}
		return []byte(out), nil
	}
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	b, err := f.Format(data)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter formats output as CSV. The data must implement Tabular.
type CSVFormatter struct{}

// Format converts data to CSV format.
func (f *CSVFormatter) Format(data interface{}) ([]byte, error) {
	var buf writerBuffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.b, nil
}

// FormatTo writes data to writer in CSV format.
func (f *CSVFormatter) FormatTo(w io.Writer, data interface{}) error {
	t, ok := data.(Tabular)
	if !ok {
		return fmt.Errorf("CSV output requires tabular data, got %T", data)
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if header := t.Header(); len(header) > 0 {
		if err := csvWriter.Write(header); err != nil {
			return err
		}
	}
	for _, row := range t.Rows() {
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}
	return csvWriter.Error()
}

type writerBuffer struct {
	b []byte
}

func (wb *writerBuffer) Write(p []byte) (int, error) {
	wb.b = append(wb.b, p...)
	return len(p), nil
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}
