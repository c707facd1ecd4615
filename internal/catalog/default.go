package catalog

// defaultCatalogYAML is the built-in indicator catalog. Deployments override
// it with CATALOG_PATH / --catalog pointing at their own YAML document.
const defaultCatalogYAML = `
indicators:
  - name: tx_days_above
    variable: tasmax
    compute: threshold_count
    op: ">"
    threshold: "25 degC"
    freq: YS
    standard_name: number_of_days_with_air_temperature_above_threshold
    long_name: Number of days with daily maximum temperature above 25 degC
    cell_methods: "time: maximum within days time: sum over days"

  - name: summer_days
    variable: tasmax
    compute: threshold_count
    op: ">"
    threshold: "25 degC"
    freq: YS
    standard_name: number_of_days_with_air_temperature_above_threshold
    long_name: Number of summer days

  - name: ice_days
    variable: tasmax
    compute: threshold_count
    op: "<"
    threshold: "0 degC"
    freq: YS
    standard_name: number_of_days_with_air_temperature_below_threshold
    long_name: Number of ice days

  - name: tropical_nights
    variable: tasmin
    compute: threshold_count
    op: ">"
    threshold: "20 degC"
    freq: YS
    standard_name: number_of_days_with_air_temperature_above_threshold
    long_name: Number of tropical nights

  - name: frost_days
    variable: tasmin
    compute: threshold_count
    op: "<"
    threshold: "0 degC"
    freq: YS
    standard_name: days_with_air_temperature_below_threshold
    long_name: Number of frost days

  - name: growing_degree_days
    variable: tas
    compute: degree_days
    op: ">"
    threshold: "4 degC"
    freq: YS
    standard_name: integral_of_air_temperature_excess_wrt_time
    long_name: Growing degree days above 4 degC

  - name: heating_degree_days
    variable: tas
    compute: degree_days
    op: "<"
    threshold: "17 degC"
    freq: YS
    standard_name: integral_of_air_temperature_deficit_wrt_time
    long_name: Heating degree days below 17 degC

  - name: cooling_degree_days
    variable: tas
    compute: degree_days
    op: ">"
    threshold: "18 degC"
    freq: YS
    standard_name: integral_of_air_temperature_excess_wrt_time
    long_name: Cooling degree days above 18 degC

  - name: wet_days
    variable: pr
    compute: threshold_count
    op: ">="
    threshold: "1 mm/d"
    freq: YS
    standard_name: number_of_days_with_lwe_thickness_of_precipitation_amount_at_or_above_threshold
    long_name: Number of wet days

  - name: warm_spell_max_length
    variable: tasmax
    compute: spell_length
    op: ">"
    threshold: "30 degC"
    reducer: max
    freq: YS
    long_name: Longest spell of days above 30 degC

  - name: tx_max
    variable: tasmax
    compute: statistics
    reducer: max
    freq: YS
    standard_name: air_temperature
    long_name: Maximum daily maximum temperature
    cell_methods: "time: maximum within days time: maximum over days"

  - name: tn_min
    variable: tasmin
    compute: statistics
    reducer: min
    freq: YS
    standard_name: air_temperature
    long_name: Minimum daily minimum temperature
    cell_methods: "time: minimum within days time: minimum over days"

  - name: growing_season_start
    variable: tas
    compute: first_occurrence
    op: ">"
    threshold: "5 degC"
    freq: YS
    long_name: Day of year of the first day above 5 degC
`
