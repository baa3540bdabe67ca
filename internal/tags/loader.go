// Package tags loads the PLC's tag database from the Productivity Suite
// CSV export or from a YAML file, and builds the address index the driver
// consults when chunking register reads.
package tags

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openmachinelabs/productivity/internal/addressing"
	"github.com/openmachinelabs/productivity/internal/types"
)

// Column names of the Productivity Suite tag export.
const (
	colName    = "Tag Name"
	colType    = "Data Type"
	colAddress = "Modbus Start Address"
)

// LoadFile reads a tag database, picking the format from the file
// extension (.csv, .yaml or .yml).
func LoadFile(path string) ([]types.Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tag database: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseCSV(f)
	case ".yaml", ".yml":
		return ParseYAML(f)
	}
	return nil, types.NewConfigError("load_tags", "unsupported tag file format %q", filepath.Ext(path))
}

// ParseCSV reads a Productivity Suite tag export. Columns are located by
// header name; rows without a Modbus address are tags not mapped to the
// fieldbus and are skipped.
func ParseCSV(r io.Reader) ([]types.Tag, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read tag CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, types.NewConfigError("load_tags", "empty tag file")
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colName, colType, colAddress} {
		if _, ok := columns[required]; !ok {
			return nil, types.NewConfigError("load_tags", "missing column %q", required)
		}
	}

	var out []types.Tag
	for line, record := range records[1:] {
		field := func(name string) string {
			i := columns[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if field(colAddress) == "" {
			continue
		}
		address, err := strconv.Atoi(field(colAddress))
		if err != nil {
			return nil, types.NewConfigError("load_tags", "line %d: bad address %q", line+2, field(colAddress))
		}
		tag, err := build(field(colName), field(colType), address)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		out = append(out, tag)
	}
	return out, nil
}

type yamlTag struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Address int    `yaml:"address"`
}

type yamlFile struct {
	Tags []yamlTag `yaml:"tags"`
}

// ParseYAML reads a hand-written tag database.
func ParseYAML(r io.Reader) ([]types.Tag, error) {
	var file yamlFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("read tag YAML: %w", err)
	}

	out := make([]types.Tag, 0, len(file.Tags))
	for _, entry := range file.Tags {
		tag, err := build(entry.Name, entry.Type, entry.Address)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", entry.Name, err)
		}
		out = append(out, tag)
	}
	return out, nil
}

func build(name, typeCode string, address int) (types.Tag, error) {
	kind, err := addressing.KindOf(typeCode)
	if err != nil {
		return types.Tag{}, err
	}
	category, err := addressing.CategoryOf(address)
	if err != nil {
		return types.Tag{}, err
	}
	return types.Tag{
		Name:     name,
		Category: category,
		Address:  address,
		TypeCode: typeCode,
		Kind:     kind,
		Width:    addressing.WidthOf(kind),
	}, nil
}

// Index maps absolute start addresses to their tags, the lookup structure
// the driver uses to keep chunk boundaries off 32-bit values.
func Index(tags []types.Tag) map[int]types.Tag {
	index := make(map[int]types.Tag, len(tags))
	for _, tag := range tags {
		index[tag.Address] = tag
	}
	return index
}
