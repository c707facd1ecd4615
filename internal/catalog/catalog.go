// Package catalog defines the indicator catalog: named bindings of a generic
// computation to an input variable, threshold, operator, and resampling
// frequency, plus the CF metadata stamped on results. Catalogs are YAML
// documents; a built-in default covers the standard temperature and
// precipitation indicators.
package catalog

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/couchcryptid/climate-indicator-etl/internal/indices"
	"github.com/couchcryptid/climate-indicator-etl/internal/series"
	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

// Indicator binds a generic computation to a variable and parameters.
type Indicator struct {
	Name     string `yaml:"name"`
	Variable string `yaml:"variable"` // input variable: tas, tasmax, tasmin, pr, sfcWind
	Compute  string `yaml:"compute"`  // generic computation name

	Op        string `yaml:"op,omitempty"`        // comparison operator
	Threshold string `yaml:"threshold,omitempty"` // quantity string, e.g. "25 degC"
	High      string `yaml:"high,omitempty"`      // upper bound for domain_count
	Reducer   string `yaml:"reducer,omitempty"`   // min, max, mean, sum, std, count
	Freq      string `yaml:"freq"`                // resampling frequency, e.g. YS

	StandardName string `yaml:"standard_name,omitempty"`
	LongName     string `yaml:"long_name,omitempty"`
	CellMethods  string `yaml:"cell_methods,omitempty"`
}

// computations lists the generic computation names an indicator may bind,
// with the parameters each requires.
var computations = map[string]struct {
	needsThreshold bool
	needsOp        bool
	needsReducer   bool
	needsHigh      bool
}{
	"threshold_count":        {needsThreshold: true, needsOp: true},
	"domain_count":           {needsThreshold: true, needsHigh: true},
	"first_occurrence":       {needsThreshold: true, needsOp: true},
	"last_occurrence":        {needsThreshold: true, needsOp: true},
	"spell_length":           {needsThreshold: true, needsOp: true, needsReducer: true},
	"statistics":             {needsReducer: true},
	"doymax":                 {},
	"doymin":                 {},
	"thresholded_statistics": {needsThreshold: true, needsOp: true, needsReducer: true},
	"temperature_sum":        {needsThreshold: true, needsOp: true},
	"degree_days":            {needsThreshold: true, needsOp: true},
}

// Validate checks that the indicator is complete and its parameters parse.
func (ind Indicator) Validate() error {
	if ind.Name == "" {
		return fmt.Errorf("indicator missing name")
	}
	if ind.Variable == "" {
		return fmt.Errorf("indicator %q: missing variable", ind.Name)
	}
	spec, ok := computations[ind.Compute]
	if !ok {
		return fmt.Errorf("indicator %q: unknown computation %q", ind.Name, ind.Compute)
	}
	if _, err := series.ParseFreq(ind.Freq); err != nil {
		return fmt.Errorf("indicator %q: %w", ind.Name, err)
	}
	if spec.needsThreshold {
		if _, err := units.Parse(ind.Threshold); err != nil {
			return fmt.Errorf("indicator %q: %w", ind.Name, err)
		}
	}
	if spec.needsHigh {
		if _, err := units.Parse(ind.High); err != nil {
			return fmt.Errorf("indicator %q: %w", ind.Name, err)
		}
	}
	if spec.needsOp {
		if _, err := indices.GetOp(ind.Op); err != nil {
			return fmt.Errorf("indicator %q: %w", ind.Name, err)
		}
	}
	if spec.needsReducer {
		if _, err := series.GetReducer(ind.Reducer); err != nil {
			return fmt.Errorf("indicator %q: %w", ind.Name, err)
		}
	}
	return nil
}

// Apply computes the indicator over an input series and stamps the catalog
// metadata on the result.
func (ind Indicator) Apply(s *series.Series) (*series.Series, error) {
	var (
		out *series.Series
		err error
	)
	switch ind.Compute {
	case "threshold_count":
		out, err = indices.ThresholdCount(s, ind.Op, ind.Threshold, ind.Freq)
	case "domain_count":
		out, err = indices.DomainCount(s, ind.Threshold, ind.High, ind.Freq)
	case "first_occurrence":
		out, err = indices.FirstOccurrence(s, ind.Threshold, ind.Op, ind.Freq)
	case "last_occurrence":
		out, err = indices.LastOccurrence(s, ind.Threshold, ind.Op, ind.Freq)
	case "spell_length":
		out, err = indices.SpellLength(s, ind.Threshold, ind.Op, ind.Reducer, ind.Freq)
	case "statistics":
		out, err = indices.Statistics(s, ind.Reducer, ind.Freq)
	case "doymax":
		out, err = indices.DoyMax(s, ind.Freq)
	case "doymin":
		out, err = indices.DoyMin(s, ind.Freq)
	case "thresholded_statistics":
		out, err = indices.ThresholdedStatistics(s, ind.Threshold, ind.Op, ind.Reducer, ind.Freq)
	case "temperature_sum":
		out, err = indices.TemperatureSum(s, ind.Threshold, ind.Op, ind.Freq)
	case "degree_days":
		out, err = indices.DegreeDays(s, ind.Threshold, ind.Op, ind.Freq)
	default:
		return nil, fmt.Errorf("indicator %q: unknown computation %q", ind.Name, ind.Compute)
	}
	if err != nil {
		return nil, fmt.Errorf("indicator %q: %w", ind.Name, err)
	}

	if ind.StandardName != "" {
		out.Attrs.StandardName = ind.StandardName
	}
	if ind.LongName != "" {
		out.Attrs.LongName = ind.LongName
	}
	if ind.CellMethods != "" {
		out.Attrs.CellMethods = ind.CellMethods
	}
	return out, nil
}

// Catalog is a validated set of uniquely named indicators.
type Catalog struct {
	indicators []Indicator
	byName     map[string]Indicator
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Indicators []Indicator `yaml:"indicators"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Indicators) == 0 {
		return nil, fmt.Errorf("parse catalog: no indicators defined")
	}

	c := &Catalog{
		indicators: doc.Indicators,
		byName:     make(map[string]Indicator, len(doc.Indicators)),
	}
	for _, ind := range doc.Indicators {
		if err := ind.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[ind.Name]; dup {
			return nil, fmt.Errorf("duplicate indicator name %q", ind.Name)
		}
		c.byName[ind.Name] = ind
	}
	return c, nil
}

// Load reads and parses a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse([]byte(defaultCatalogYAML))
	if err != nil {
		// The built-in document is covered by tests; a parse failure here is
		// a programming error.
		panic(err)
	}
	return c
}

// Get looks up an indicator by name.
func (c *Catalog) Get(name string) (Indicator, bool) {
	ind, ok := c.byName[name]
	return ind, ok
}

// Indicators returns all indicators in document order.
func (c *Catalog) Indicators() []Indicator {
	return c.indicators
}

// ForVariable returns the indicators consuming the given input variable.
func (c *Catalog) ForVariable(variable string) []Indicator {
	var out []Indicator
	for _, ind := range c.indicators {
		if ind.Variable == variable {
			out = append(out, ind)
		}
	}
	return out
}

// Len returns the number of indicators.
func (c *Catalog) Len() int { return len(c.indicators) }
