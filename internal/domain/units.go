package domain

import "strings"

// DistanceUnit is a unit of length together with the textual forms it is
// recognized by.
type DistanceUnit struct {
	Name     string   `json:"name"`
	Forms    []string `json:"-"`
	ToMeters float64  `json:"to_meters"`
}

// distanceUnits is the closed unit registry. Forms are stored normalized
// (see normalizeForm). Only single-token forms can ever match because the
// parser looks units up one whitespace token at a time.
var distanceUnits = []DistanceUnit{
	{Name: "mi", Forms: []string{"mi", "mis", "mile", "miles"}, ToMeters: 1609.344},
	{Name: "km", Forms: []string{"km", "kms", "kilometer", "kilometers", "kilometre", "kilometres"}, ToMeters: 1000},
	{Name: "m", Forms: []string{"m", "meter", "meters", "metre", "metres"}, ToMeters: 1},
	{Name: "ft", Forms: []string{"ft", "foot", "feet"}, ToMeters: 0.3048},
	{Name: "yd", Forms: []string{"yd", "yds", "yard", "yards"}, ToMeters: 0.9144},
	{Name: "nmi", Forms: []string{"nmi", "nm"}, ToMeters: 1852},
	{Name: "ch", Forms: []string{"ch", "chain", "chains"}, ToMeters: 20.1168},
	{Name: "rd", Forms: []string{"rd", "rod", "rods", "perch", "perches", "pole", "poles"}, ToMeters: 5.0292},
	{Name: "fur", Forms: []string{"fur", "furlong", "furlongs"}, ToMeters: 201.168},
}

var formReplacer = strings.NewReplacer(".", "", ",", "", "-", "")

// normalizeForm strips periods, commas and hyphens, trims whitespace and
// lower-cases, so "Mi." and "north-east" match "mi" and "northeast".
func normalizeForm(s string) string {
	return strings.ToLower(strings.TrimSpace(formReplacer.Replace(s)))
}

// LookupUnit returns the distance unit one of whose forms equals text after
// normalization.
func LookupUnit(text string) (DistanceUnit, bool) {
	form := normalizeForm(text)
	if form == "" {
		return DistanceUnit{}, false
	}
	for _, u := range distanceUnits {
		for _, f := range u.Forms {
			if f == form {
				return u, true
			}
		}
	}
	return DistanceUnit{}, false
}

// Units returns a copy of the unit registry in registration order.
func Units() []DistanceUnit {
	out := make([]DistanceUnit, len(distanceUnits))
	copy(out, distanceUnits)
	return out
}
