// Package domain models the dashboard datasets and the transforms that turn
// a raw flat table into chart-ready series.
//
// # Datasets
//
// COVID-19 Brazil (covid_19_data_brazil.csv): one row per state per day with
// cumulative counters.
//
//	ObservationDate  MM/DD/YYYY, e.g. "04/26/2020"
//	Province/State   full state name without accents, e.g. "Sao Paulo"
//	Confirmed        cumulative confirmed cases
//	Deaths           cumulative deaths
//	Recovered        cumulative recoveries (often empty; loaded as 0)
//
// Daily city temperatures: one row per city per day.
//
//	Date            ISO date, e.g. "2019-07-01"
//	City            city name
//	AvgTemperature  daily mean temperature
//
// # Transform
//
// The loaded [Table] is derived once into [DerivedRow] values by [Derive]:
// rows are stable-sorted by date and every cumulative counter is turned into
// a per-day first difference within its category. The first observation of a
// category always has a delta of zero, even when its cumulative value is not.
//
// [MapRegions] attaches the two-letter state code used by the choropleth. It
// is all-or-nothing: a single unknown state name fails the whole mapping with
// a [*MappingError] rather than silently dropping rows from the map.
//
// [Filter], [MeanBy] and [LatestSnapshot] are recomputed from the derived
// rows on every request. They never mutate their input and return empty
// results instead of errors when nothing matches.
package domain
