// Package catalog loads the seed catalog: the wards and doctors a fresh store
// starts with, plus extra import header spellings.
package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"ward-census/internal/domain"
	"ward-census/internal/importer"
)

// WardEntry 病房种子数据
type WardEntry struct {
	Name      string `toml:"name"`
	SortOrder int    `toml:"sort_order"`
	Block     string `toml:"block"`
}

// DoctorEntry 医生种子数据
type DoctorEntry struct {
	FullName  string `toml:"full_name"`
	SortOrder int    `toml:"sort_order"`
}

// Catalog is the decoded seed file. Sections left out of the file take the
// defaults.
type Catalog struct {
	Wards        []WardEntry         `toml:"wards"`
	Doctors      []DoctorEntry       `toml:"doctors"`
	Synonyms     map[string][]string `toml:"synonyms"` // canonical field -> extra header spellings
	Affirmatives []string            `toml:"affirmatives"`
}

// LoadError represents an error that occurred while loading the catalog.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading catalog from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Default returns five wards in block A (A-101..A-105), five in block B
// (B-201..B-205) and five placeholder doctors.
func Default() *Catalog {
	c := &Catalog{}
	for i := 1; i <= 5; i++ {
		c.Wards = append(c.Wards, WardEntry{Name: fmt.Sprintf("A-10%d", i), SortOrder: i, Block: "A"})
	}
	for i := 1; i <= 5; i++ {
		c.Wards = append(c.Wards, WardEntry{Name: fmt.Sprintf("B-20%d", i), SortOrder: 100 + i, Block: "B"})
	}
	for i := 1; i <= 5; i++ {
		c.Doctors = append(c.Doctors, DoctorEntry{FullName: fmt.Sprintf("Dr. Example %d", i), SortOrder: i})
	}
	return c
}

// Load reads path, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return c, nil
}

// Decode parses and validates a TOML catalog.
func Decode(r io.Reader) (*Catalog, error) {
	c := &Catalog{}
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	def := Default()
	if len(c.Wards) == 0 {
		c.Wards = def.Wards
	}
	if len(c.Doctors) == 0 {
		c.Doctors = def.Doctors
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}
	return c, nil
}

// Validate checks names, blocks and synonym field keys.
func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	for i, w := range c.Wards {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			return fmt.Errorf("wards[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("wards[%d]: duplicate name %q", i, name)
		}
		seen[name] = true
		if b := blockOf(w); !b.Valid() {
			return fmt.Errorf("wards[%d]: unknown block %q", i, w.Block)
		}
	}
	for i, d := range c.Doctors {
		if strings.TrimSpace(d.FullName) == "" {
			return fmt.Errorf("doctors[%d]: full_name is required", i)
		}
	}
	known := map[importer.Field]bool{}
	for _, f := range importer.Fields {
		known[f] = true
	}
	for key := range c.Synonyms {
		if !known[importer.Field(key)] {
			return fmt.Errorf("synonyms: unknown field %q", key)
		}
	}
	return nil
}

func blockOf(w WardEntry) domain.Block {
	b := domain.Block(strings.ToUpper(strings.TrimSpace(w.Block)))
	if b == "" {
		return domain.BlockA
	}
	return b
}

// DomainWards converts the ward entries. Ids are left for the store to assign.
func (c *Catalog) DomainWards() []*domain.Ward {
	out := make([]*domain.Ward, len(c.Wards))
	for i, w := range c.Wards {
		out[i] = &domain.Ward{Name: strings.TrimSpace(w.Name), SortOrder: w.SortOrder, Block: blockOf(w)}
	}
	return out
}

// DomainDoctors converts the doctor entries.
func (c *Catalog) DomainDoctors() []*domain.Doctor {
	out := make([]*domain.Doctor, len(c.Doctors))
	for i, d := range c.Doctors {
		out[i] = &domain.Doctor{FullName: strings.TrimSpace(d.FullName), SortOrder: d.SortOrder}
	}
	return out
}

// HeaderSynonyms returns the built-in header table extended with the
// catalog's spellings.
func (c *Catalog) HeaderSynonyms() importer.Synonyms {
	extra := importer.Synonyms{}
	for key, spellings := range c.Synonyms {
		extra[importer.Field(key)] = spellings
	}
	return importer.DefaultSynonyms().Merge(extra)
}
