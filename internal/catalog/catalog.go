// Package catalog loads the schema descriptor at startup and owns the
// resulting set of tables for the lifetime of the process: it is the
// only thing in the system allowed to open or close a table's pager.
package catalog

import (
	"strings"

	"github.com/pkg/errors"

	"flatdb/internal/table"
)

// Catalog holds every table declared in the schema file, keyed by name.
type Catalog struct {
	dataDir string
	tables  map[string]*table.Table
	order   []string
}

// Load reads the schema descriptor at path, opens one table per
// declaration under dataDir, and returns the resulting Catalog. No
// runtime schema mutation is supported after Load returns.
func Load(schemaPath, dataDir string) (*Catalog, error) {
	descs, err := readSchema(schemaPath)
	if err != nil {
		return nil, err
	}

	cat := &Catalog{
		dataDir: dataDir,
		tables:  make(map[string]*table.Table, len(descs)),
	}

	for _, d := range descs {
		tbl, err := table.Open(d.Name, d.Columns, dataDir)
		if err != nil {
			cat.closeOpened()
			return nil, errors.Wrapf(err, "catalog: open table %q", d.Name)
		}
		cat.tables[strings.ToLower(d.Name)] = tbl
		cat.order = append(cat.order, d.Name)
	}

	return cat, nil
}

// Table resolves name against the catalog, case-insensitively.
func (c *Catalog) Table(name string) (*table.Table, bool) {
	t, ok := c.tables[strings.ToLower(name)]
	return t, ok
}

// Close flushes and closes every table in the catalog, in declaration
// order, returning the first error encountered (if any) after
// attempting every table.
func (c *Catalog) Close() error {
	var first error
	for _, name := range c.order {
		t := c.tables[strings.ToLower(name)]
		if err := t.Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "catalog: close table %q", name)
		}
	}
	return first
}

// closeOpened is used to unwind tables already opened when a later one
// in the descriptor list fails to open.
func (c *Catalog) closeOpened() {
	for _, name := range c.order {
		_ = c.tables[strings.ToLower(name)].Close()
	}
}
