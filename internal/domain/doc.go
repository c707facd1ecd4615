// Package domain models daily climate station observations.
//
// # Data Source
//
// Observations originate from GHCN-Daily style station files. The upstream
// collector service fetches station files on a cron schedule, parses them,
// injects a CF variable name, and publishes each daily reading as flat JSON
// to the Kafka source topic.
//
// # Data Conventions
//
// Variable names follow the CF short names used by climate tooling:
//
//	tas      daily mean near-surface air temperature
//	tasmax   daily maximum near-surface air temperature
//	tasmin   daily minimum near-surface air temperature
//	pr       precipitation (flux or rate, see units)
//	sfcWind  near-surface wind speed
//	hurs     near-surface relative humidity
//
// Date format:
//
//	YYYY-MM-DD, interpreted as the UTC calendar day of the reading. When the
//	date field is missing or malformed, the day portion of the Kafka message
//	timestamp (set by the collector from the source file) is used instead.
//
// Units (inconsistent in source data, normalized during enrichment):
//
//	Temperatures arrive as "C", "degC", "F" or "K" and are stored in Kelvin.
//	GHCN-derived feeds encode temperatures in tenths of degC as integers
//	(e.g. 285 = 28.5 degC). Heuristic: Celsius values with magnitude >= 100
//	are assumed to be tenths, because the highest surface temperature ever
//	recorded is 56.7 degC (Furnace Creek, 1913) and the lowest -89.2 degC
//	(Vostok, 1983).
//	Precipitation arrives as "mm", "mm/d" or "kg m-2 s-1" and is stored as
//	flux in kg m-2 s-1 (a daily total in mm is a rate in mm/d over that day).
//	Wind speed arrives as "m/s", "km/h", "mph" or "kt" and is stored in m s-1.
//
// Missing values:
//
//	"UNK", "-9999" and empty strings are the sentinels for missing readings.
//	Missing readings parse to NaN and are labeled quality "missing"; they are
//	kept so downstream period statistics can account for coverage.
//
// Quality control flags:
//
//	The single-character GHCN QC flag is carried through as a quality label:
//	empty means "good"; any set flag demotes the reading to "suspect". The
//	indicator engine only feeds "good" readings into computations.
//
// # ID Generation
//
// Observation IDs are deterministic SHA-256 hashes of
// station|variable|date|value. This enables idempotent upserts downstream
// (ON CONFLICT DO NOTHING) and replay safety without distributed
// coordination. See [generateID]. Indicator value IDs hash
// indicator|station|period-start the same way.
package domain
