package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const DateLayout = "2006-01-02"

type seedFile struct {
	Records []Record `yaml:"records"`
}

// Loader reads the corpus from a seed file. YAML files hold records directly,
// RSS files are read as Google Merchant product feeds.
type Loader struct {
	path        string
	mockRecords int
	parser      *Parser
}

func NewLoader(path string, mockRecords int) *Loader {
	return &Loader{
		path:        path,
		mockRecords: mockRecords,
		parser:      NewParser(),
	}
}

func (l *Loader) Run() ([]Record, error) {
	if l.path == "" {
		slog.Debug("No catalog file configured, generating mock corpus", "records", l.mockRecords)
		return MockCorpus(l.mockRecords), nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var records []Record
	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".yml", ".yaml":
		records, err = l.parseYAML(data)
	case ".xml", ".rss":
		records, err = l.parser.Run(data)
	default:
		return nil, fmt.Errorf("unsupported catalog file extension: %s", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := validateRecords(records); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", l.path, err)
	}

	slog.Debug("Catalog loaded", "file", l.path, "records", len(records))

	return records, nil
}

func (l *Loader) parseYAML(data []byte) ([]Record, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return seed.Records, nil
}

func validateRecords(records []Record) error {
	seen := make(map[string]int, len(records))

	for i, record := range records {
		if record.ProductID == "" {
			return fmt.Errorf("record at index %d has no product id", i)
		}
		if prev, ok := seen[record.ProductID]; ok {
			return fmt.Errorf("duplicate product id %q at index %d (first at %d)", record.ProductID, i, prev)
		}
		seen[record.ProductID] = i

		if record.ProductName == "" {
			return fmt.Errorf("record %q has no product name", record.ProductID)
		}
		if record.Price < 0 {
			return fmt.Errorf("record %q has a negative price", record.ProductID)
		}
	}

	return nil
}
