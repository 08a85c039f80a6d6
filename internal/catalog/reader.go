package catalog

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"flatdb/internal/column"
)

// tableDescriptor is one parsed line of the schema file.
type tableDescriptor struct {
	Name    string
	Columns []column.Definition
}

// readSchema parses the schema file format: line 1 is the table count,
// each following line is "<name>;<num_columns>;<col_def>,<col_def>,..."
// with each col_def as "<name>:<size>:<type>". Whitespace between fields
// is not permitted, matching the format exactly.
func readSchema(path string) ([]tableDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "catalog: open schema file")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, errors.New("catalog: schema file is empty")
	}

	count, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, errors.Wrap(err, "catalog: invalid table count")
	}

	descs := make([]tableDescriptor, 0, count)
	for i := 0; i < count; i++ {
		if !scanner.Scan() {
			return nil, errors.Errorf("catalog: schema file declares %d tables but only %d lines follow", count, i)
		}
		desc, err := parseTableLine(scanner.Text())
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "catalog: read schema file")
	}

	return descs, nil
}

func parseTableLine(line string) (tableDescriptor, error) {
	fields := strings.Split(line, ";")
	if len(fields) != 3 {
		return tableDescriptor{}, errors.Errorf("catalog: malformed table line %q", line)
	}

	name := fields[0]
	if name == "" {
		return tableDescriptor{}, errors.Errorf("catalog: table line %q has an empty name", line)
	}

	numCols, err := strconv.Atoi(fields[1])
	if err != nil {
		return tableDescriptor{}, errors.Wrapf(err, "catalog: invalid column count in %q", line)
	}

	colDefs := strings.Split(fields[2], ",")
	if len(colDefs) != numCols {
		return tableDescriptor{}, errors.Errorf("catalog: table %q declares %d columns but lists %d", name, numCols, len(colDefs))
	}

	cols := make([]column.Definition, 0, numCols)
	for _, raw := range colDefs {
		c, err := parseColumnDef(raw)
		if err != nil {
			return tableDescriptor{}, errors.Wrapf(err, "catalog: table %q", name)
		}
		cols = append(cols, c)
	}

	return tableDescriptor{Name: name, Columns: cols}, nil
}

func parseColumnDef(raw string) (column.Definition, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return column.Definition{}, errors.Errorf("catalog: malformed column definition %q", raw)
	}

	name := parts[0]
	size, err := strconv.Atoi(parts[1])
	if err != nil || size <= 0 {
		return column.Definition{}, errors.Errorf("catalog: invalid column size in %q", raw)
	}

	var typ column.Type
	switch strings.ToLower(parts[2]) {
	case "int":
		typ = column.Int
		if size != 4 {
			return column.Definition{}, errors.Errorf("catalog: int column %q must be size 4, got %d", name, size)
		}
	case "real":
		typ = column.Real
	case "varchar":
		typ = column.Varchar
	default:
		return column.Definition{}, errors.Errorf("catalog: unknown column type %q", parts[2])
	}

	return column.Definition{Name: name, Type: typ, Size: uint32(size)}, nil
}
