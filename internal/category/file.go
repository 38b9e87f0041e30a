package category

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// fileTable is the on-disk shape of a category table.
type fileTable struct {
	DefaultBufferM float64    `yaml:"default_buffer_m"`
	Categories     []Category `yaml:"categories"`
}

// LoadFile reads a category table from a YAML file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "category: read %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML category table.
func Parse(data []byte) (*Table, error) {
	var ft fileTable
	if err := yaml.Unmarshal(data, &ft); err != nil {
		return nil, eris.Wrap(err, "category: parse yaml")
	}
	if len(ft.Categories) == 0 {
		return nil, eris.New("category: table has no categories")
	}
	return NewTable(ft.Categories, ft.DefaultBufferM)
}

// Marshal encodes t as YAML in the format LoadFile reads.
func (t *Table) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(fileTable{
		DefaultBufferM: t.defaultBuffer,
		Categories:     t.categories,
	})
	if err != nil {
		return nil, eris.Wrap(err, "category: marshal yaml")
	}
	return out, nil
}
