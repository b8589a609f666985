package domain

import (
	"slices"
)

// RegionTable maps a full region name to its two-letter code.
type RegionTable interface {
	Code(name string) (string, bool)
}

// StaticRegions is a fixed name-to-code table. Lookups are exact: no case
// folding and no accent stripping.
type StaticRegions struct {
	codes map[string]string
}

// Code returns the code for name.
func (s StaticRegions) Code(name string) (string, bool) {
	c, ok := s.codes[name]
	return c, ok
}

// Len returns the number of entries.
func (s StaticRegions) Len() int { return len(s.codes) }

// Names returns the region names in sorted order.
func (s StaticRegions) Names() []string {
	names := make([]string, 0, len(s.codes))
	for n := range s.codes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// BrazilStates holds the 26 states and the Federal District, spelled the way
// covid_19_data_brazil.csv spells them.
var BrazilStates = StaticRegions{codes: map[string]string{
	"Acre":                "AC",
	"Alagoas":             "AL",
	"Amapa":               "AP",
	"Amazonas":            "AM",
	"Bahia":               "BA",
	"Ceara":               "CE",
	"Distrito Federal":    "DF",
	"Espirito Santo":      "ES",
	"Goias":               "GO",
	"Maranhao":            "MA",
	"Mato Grosso":         "MT",
	"Mato Grosso do Sul":  "MS",
	"Minas Gerais":        "MG",
	"Para":                "PA",
	"Paraiba":             "PB",
	"Parana":              "PR",
	"Pernambuco":          "PE",
	"Piaui":               "PI",
	"Rio de Janeiro":      "RJ",
	"Rio Grande do Norte": "RN",
	"Rio Grande do Sul":   "RS",
	"Rondonia":            "RO",
	"Roraima":             "RR",
	"Santa Catarina":      "SC",
	"Sao Paulo":           "SP",
	"Sergipe":             "SE",
	"Tocantins":           "TO",
}}

// MapRegions returns a copy of rows with RegionCode set from the value of
// column. If any value has no entry in regions the whole operation fails
// with a *MappingError listing every distinct unmapped value, and no rows
// are returned.
func MapRegions(rows []DerivedRow, regions RegionTable, schema Schema, column string) ([]DerivedRow, error) {
	out := make([]DerivedRow, len(rows))
	var unmapped []string
	seen := make(map[string]struct{})

	for i, r := range rows {
		name := r.Label(column, schema)
		code, ok := regions.Code(name)
		if !ok {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				unmapped = append(unmapped, name)
			}
			continue
		}
		out[i] = r
		out[i].RegionCode = code
	}

	if len(unmapped) > 0 {
		return nil, &MappingError{Column: column, Unmapped: unmapped}
	}
	return out, nil
}
