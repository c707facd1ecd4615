// Command genmock generates mock raw reading fixtures for the test suites.
// It synthesizes a year of daily station readings with a seasonal cycle and
// runs them through the actual domain transformation so the transformed
// output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -year 2001 \
//	  -raw-out data/mock/climate_readings_2001.json \
//	  -obs-out data/mock/climate_observations_2001.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
)

// station describes one synthetic reporting site.
type station struct {
	id        string
	lat, lon  float64
	elevation float64
	meanTempC float64 // annual mean near-surface temperature
	amplitude float64 // seasonal swing around the mean
	wetChance float64 // daily probability of precipitation
}

var stationDefs = []station{
	{id: "USW00023183", lat: 33.4277, lon: -112.0038, elevation: 337.4, meanTempC: 23.9, amplitude: 10.5, wetChance: 0.08},
	{id: "CA006158350", lat: 43.6772, lon: -79.6306, elevation: 173.4, meanTempC: 8.4, amplitude: 14.0, wetChance: 0.38},
	{id: "ASN00066062", lat: -33.8607, lon: 151.2050, elevation: 39.0, meanTempC: 18.0, amplitude: 5.5, wetChance: 0.33},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	year := flag.Int("year", 2001, "calendar year to generate")
	seed := flag.Int64("seed", 1, "random seed for reproducible fixtures")
	rawOut := flag.String("raw-out", "", "output path for the raw reading fixture")
	obsOut := flag.String("obs-out", "", "output path for the transformed observation fixture")
	flag.Parse()

	if *rawOut == "" || *obsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -obs-out")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(*year+1, time.January, 15, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))

	var rawRecords []domain.RawReadingRecord
	var observations []domain.Observation

	for _, st := range stationDefs {
		recs, obs, err := generateStation(st, *year, rng)
		if err != nil {
			return fmt.Errorf("generating %s: %w", st.id, err)
		}
		rawRecords = append(rawRecords, recs...)
		observations = append(observations, obs...)
		log.Printf("%s: %d records", st.id, len(recs))
	}

	log.Printf("total: %d records", len(rawRecords))

	if err := writeJSON(*rawOut, rawRecords); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*obsOut, observations); err != nil {
		return fmt.Errorf("writing observation fixture: %w", err)
	}
	log.Printf("wrote observation fixture: %s", *obsOut)

	printStats(observations)
	return nil
}

// generateStation produces one station-year of tasmax, tasmin, and pr
// readings and their transformed observations.
func generateStation(st station, year int, rng *rand.Rand) ([]domain.RawReadingRecord, []domain.Observation, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var recs []domain.RawReadingRecord
	var observations []domain.Observation

	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		doy := float64(day.YearDay())
		phase := 2 * math.Pi * (doy - 15) / 365.25
		seasonal := -math.Cos(phase)
		if st.lat < 0 {
			seasonal = -seasonal // southern hemisphere
		}

		meanC := st.meanTempC + st.amplitude*seasonal + rng.NormFloat64()*2.5
		spread := 4.0 + rng.Float64()*4.0

		recs = append(recs,
			reading(st, day, "tasmax", tempValue(meanC+spread), "degC"),
			reading(st, day, "tasmin", tempValue(meanC-spread), "degC"),
			reading(st, day, "pr", prValue(st, rng), "mm/d"),
		)
	}

	// Sprinkle missing readings so fixtures exercise the sentinel paths.
	for i := 0; i < len(recs)/50; i++ {
		recs[rng.Intn(len(recs))].Value = "-9999"
	}

	for _, rec := range recs {
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal record: %w", err)
		}

		parsed, err := domain.ParseRawEvent(domain.RawEvent{Value: payload})
		if err != nil {
			return nil, nil, fmt.Errorf("parse raw event: %w", err)
		}
		observations = append(observations, domain.EnrichObservation(parsed))
	}

	return recs, observations, nil
}

func reading(st station, day time.Time, variable, value, unit string) domain.RawReadingRecord {
	return domain.RawReadingRecord{
		Station:   st.id,
		Variable:  variable,
		Date:      day.Format("2006-01-02"),
		Value:     value,
		Unit:      unit,
		Lat:       fmt.Sprintf("%.4f", st.lat),
		Lon:       fmt.Sprintf("%.4f", st.lon),
		Elevation: fmt.Sprintf("%.1f", st.elevation),
	}
}

// tempValue formats a Celsius temperature the way GHCN-derived feeds encode
// it: tenths of a degree. Values under 10 degC in magnitude would collide
// with plain decimal readings when decoded, so those are emitted as decimal
// strings the way non-GHCN collectors send them.
func tempValue(v float64) string {
	if math.Abs(v) >= 10 {
		return fmt.Sprintf("%.0f", v*10)
	}
	return fmt.Sprintf("%.1f", v)
}

func prValue(st station, rng *rand.Rand) string {
	if rng.Float64() >= st.wetChance {
		return "0"
	}
	// Exponentially distributed wet-day totals, mean 6 mm.
	return fmt.Sprintf("%.1f", rng.ExpFloat64()*6.0)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(observations []domain.Observation) {
	qualityCounts := map[string]int{}
	variableCounts := map[string]int{}
	var maxTasmax, totalPr float64

	for i := range observations {
		o := &observations[i]
		qualityCounts[o.Quality]++
		variableCounts[o.Variable]++
		if o.Variable == "tasmax" && o.Value > maxTasmax {
			maxTasmax = o.Value
		}
		if o.Variable == "pr" && !math.IsNaN(o.Value) {
			totalPr += o.Value * 86400 // back to mm/d for readability
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(observations))
	fmt.Printf("By variable: tasmax=%d, tasmin=%d, pr=%d\n",
		variableCounts["tasmax"], variableCounts["tasmin"], variableCounts["pr"])
	fmt.Printf("By quality: good=%d, missing=%d\n",
		qualityCounts["good"], qualityCounts["missing"])
	fmt.Printf("Max tasmax: %.2f K\n", maxTasmax)
	fmt.Printf("Total precipitation: %.1f mm\n", totalPr)
}
