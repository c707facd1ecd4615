// Command validate performs data integrity checks over the indicator
// catalog and the mock reading fixtures. It verifies that every catalog
// indicator is well formed and its threshold converts into the variable's
// canonical unit, and that every fixture record survives the pipeline
// transformation with the expected invariants.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -catalog configs/indicators.yaml \
//	  -fixture data/mock/climate_readings_sample.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/couchcryptid/climate-indicator-etl/internal/catalog"
	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
	"github.com/couchcryptid/climate-indicator-etl/internal/series"
	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	catalogPath := flag.String("catalog", "", "indicator catalog YAML (default: built-in catalog)")
	fixturePath := flag.String("fixture", "data/mock/climate_readings_sample.json", "path to a raw reading JSON fixture")
	flag.Parse()

	phases := []*phase{
		validateCatalog(*catalogPath),
		validateFixture(*fixturePath),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      %s\n", e)
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d phases failed\n", failed, len(phases))
		os.Exit(1)
	}
	fmt.Printf("\nall %d phases passed\n", len(phases))
}

// validateCatalog checks that the catalog loads and that each indicator's
// threshold can be converted into its variable's canonical unit.
func validateCatalog(path string) *phase {
	p := &phase{name: "catalog"}

	var cat *catalog.Catalog
	var err error
	if path == "" {
		cat = catalog.Default()
	} else if cat, err = catalog.Load(path); err != nil {
		p.errorf("load: %v", err)
		return p
	}

	for _, ind := range cat.Indicators() {
		if _, err := series.ParseFreq(ind.Freq); err != nil {
			p.errorf("%s: freq: %v", ind.Name, err)
		}
		if err := checkThreshold(ind.Name, ind.Variable, ind.Threshold); err != nil {
			p.errorf("%v", err)
		}
		if err := checkThreshold(ind.Name, ind.Variable, ind.High); err != nil {
			p.errorf("%v", err)
		}
	}
	return p
}

func checkThreshold(name, variable, threshold string) error {
	if threshold == "" {
		return nil
	}
	q, err := units.Parse(threshold)
	if err != nil {
		return fmt.Errorf("%s: threshold %q: %w", name, threshold, err)
	}
	canonical := domain.CanonicalUnit(variable)
	if canonical == "" {
		return fmt.Errorf("%s: unknown variable %q", name, variable)
	}
	if _, err := units.Convert(q, units.MustUnit(canonical)); err != nil {
		return fmt.Errorf("%s: threshold %q not convertible to %s: %w", name, threshold, canonical, err)
	}
	return nil
}

// validateFixture checks that every fixture record parses and transforms
// with consistent variable, unit, and quality fields.
func validateFixture(path string) *phase {
	p := &phase{name: "fixture " + path}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read: %v", err)
		return p
	}
	var records []domain.RawReadingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		p.errorf("parse: %v", err)
		return p
	}
	if len(records) == 0 {
		p.errorf("fixture is empty")
		return p
	}

	qualityCounts := map[string]int{}
	for i, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			p.errorf("record %d: marshal: %v", i, err)
			continue
		}
		parsed, err := domain.ParseRawEvent(domain.RawEvent{Value: payload})
		if err != nil {
			p.errorf("record %d: %v", i, err)
			continue
		}
		obs := domain.EnrichObservation(parsed)
		qualityCounts[obs.Quality]++

		switch {
		case obs.Quality == "missing" && !math.IsNaN(obs.Value):
			p.errorf("record %d: missing quality with non-NaN value %g", i, obs.Value)
		case obs.Quality != "missing" && math.IsNaN(obs.Value):
			p.errorf("record %d: quality %s with NaN value", i, obs.Quality)
		}

		if obs.Variable != "" && obs.Unit != domain.CanonicalUnit(obs.Variable) {
			p.errorf("record %d: variable %s left in unit %s", i, obs.Variable, obs.Unit)
		}
		if obs.Variable != "" && !strings.HasPrefix(obs.ID, obs.Variable+"-") {
			p.errorf("record %d: unexpected ID %s", i, obs.ID)
		}
	}

	fmt.Printf("fixture %s: %d records (good=%d, suspect=%d, missing=%d)\n",
		path, len(records), qualityCounts["good"], qualityCounts["suspect"], qualityCounts["missing"])
	return p
}
