package seeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/rzane/advanced-demo/internal/places"
	"golang.org/x/text/unicode/norm"
)

// DefaultPath is the bundled data file.
const DefaultPath = "data/cities.json"

// Number accepts either a JSON/YAML number or a numeric string ("4000000").
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	*n = Number(data)
	return nil
}

func (n *Number) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	if v == nil {
		*n = ""
		return nil
	}
	*n = Number(fmt.Sprint(v))
	return nil
}

// Int parses the value as a base-10 integer.
func (n Number) Int() (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(n)))
}

// Record is one row of the seed file.
type Record struct {
	State      string `json:"state" yaml:"state" validate:"required"`
	City       string `json:"city" yaml:"city" validate:"required"`
	Rank       Number `json:"rank" yaml:"rank"`
	Population Number `json:"population" yaml:"population"`
}

// Load reads records from path. Files ending in .yaml or .yml are parsed as
// YAML, everything else as JSON.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	records, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// Decode parses data in the format named by ext (".json", ".yaml", ".yml").
func Decode(data []byte, ext string) ([]Record, error) {
	var records []Record
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// CityRow is a validated city waiting to be inserted.
type CityRow struct {
	Name       string
	Rank       int
	Population int `validate:"gte=0"`
}

// StateGroup is a state with its cities, in file order.
type StateGroup struct {
	Name   string
	Cities []CityRow
}

var validate = validator.New()

// Plan validates records and groups them by state in order of first
// appearance. States whose names differ only in case or spacing are merged
// under the first spelling seen; a city repeated within a state is rejected.
// The error names the offending record by its index.
func Plan(records []Record) ([]StateGroup, error) {
	var groups []StateGroup
	index := map[string]int{}
	seen := map[string]int{}

	for i, rec := range records {
		rec.State = cleanName(rec.State)
		rec.City = cleanName(rec.City)
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, validationError(err))
		}

		rank, err := rec.Rank.Int()
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): rank %q is not a whole number", i, rec.City, rec.Rank)
		}
		population, err := rec.Population.Int()
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): population %q is not a whole number", i, rec.City, rec.Population)
		}

		row := CityRow{Name: rec.City, Rank: rank, Population: population}
		if err := validate.Struct(row); err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, rec.City, validationError(err))
		}

		stateKey := places.NaturalKey(rec.State)
		cityKey := stateKey + ":" + places.NaturalKey(rec.City)
		if prev, dup := seen[cityKey]; dup {
			return nil, fmt.Errorf("record %d (%s): duplicate of record %d in %s", i, rec.City, prev, rec.State)
		}
		seen[cityKey] = i

		g, ok := index[stateKey]
		if !ok {
			g = len(groups)
			index[stateKey] = g
			groups = append(groups, StateGroup{Name: rec.State})
		}
		groups[g].Cities = append(groups[g].Cities, row)
	}

	return groups, nil
}

// validationError turns the first failed rule into a short message.
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	fe := errs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "gte":
		return fmt.Errorf("%s must not be negative", field)
	default:
		return fmt.Errorf("%s failed %s validation", field, fe.Tag())
	}
}

func cleanName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
