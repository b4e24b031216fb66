package domain

// Heading is a compass direction with its bearing (degrees clockwise from
// north) and the angular error conventionally attributed to it.
type Heading struct {
	Name    string   `json:"name"`
	Forms   []string `json:"-"`
	Bearing float64  `json:"bearing"`
	Error   float64  `json:"error"`
}

// Angular error by how finely the heading divides the compass.
const (
	cardinalError          = 45.0
	intercardinalError     = 22.5
	secondaryCardinalError = 11.25
)

// headings is the 16-point compass. Word forms are stored with hyphens
// removed, matching normalizeForm.
var headings = []Heading{
	{Name: "N", Forms: []string{"n", "north"}, Bearing: 0, Error: cardinalError},
	{Name: "NNE", Forms: []string{"nne", "northnortheast"}, Bearing: 22.5, Error: secondaryCardinalError},
	{Name: "NE", Forms: []string{"ne", "northeast"}, Bearing: 45, Error: intercardinalError},
	{Name: "ENE", Forms: []string{"ene", "eastnortheast"}, Bearing: 67.5, Error: secondaryCardinalError},
	{Name: "E", Forms: []string{"e", "east"}, Bearing: 90, Error: cardinalError},
	{Name: "ESE", Forms: []string{"ese", "eastsoutheast"}, Bearing: 112.5, Error: secondaryCardinalError},
	{Name: "SE", Forms: []string{"se", "southeast"}, Bearing: 135, Error: intercardinalError},
	{Name: "SSE", Forms: []string{"sse", "southsoutheast"}, Bearing: 157.5, Error: secondaryCardinalError},
	{Name: "S", Forms: []string{"s", "south"}, Bearing: 180, Error: cardinalError},
	{Name: "SSW", Forms: []string{"ssw", "southsouthwest"}, Bearing: 202.5, Error: secondaryCardinalError},
	{Name: "SW", Forms: []string{"sw", "southwest"}, Bearing: 225, Error: intercardinalError},
	{Name: "WSW", Forms: []string{"wsw", "westsouthwest"}, Bearing: 247.5, Error: secondaryCardinalError},
	{Name: "W", Forms: []string{"w", "west"}, Bearing: 270, Error: cardinalError},
	{Name: "WNW", Forms: []string{"wnw", "westnorthwest"}, Bearing: 292.5, Error: secondaryCardinalError},
	{Name: "NW", Forms: []string{"nw", "northwest"}, Bearing: 315, Error: intercardinalError},
	{Name: "NNW", Forms: []string{"nnw", "northnorthwest"}, Bearing: 337.5, Error: secondaryCardinalError},
}

// LookupHeading returns the heading one of whose forms equals text after
// normalization.
func LookupHeading(text string) (Heading, bool) {
	form := normalizeForm(text)
	if form == "" {
		return Heading{}, false
	}
	for _, h := range headings {
		for _, f := range h.Forms {
			if f == form {
				return h, true
			}
		}
	}
	return Heading{}, false
}

// Headings returns a copy of the compass registry ordered by bearing.
func Headings() []Heading {
	out := make([]Heading, len(headings))
	copy(out, headings)
	return out
}
