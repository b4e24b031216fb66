package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LocalityType tells the parser how a locality string is composed.
type LocalityType string

const (
	// FeatureOnly is a bare place name, e.g. "Berkeley".
	FeatureOnly LocalityType = "f"
	// FeatureOffsetHeading is a distance and direction from a place,
	// e.g. "5 mi N Berkeley".
	FeatureOffsetHeading LocalityType = "foh"
)

// ParseLocalityType accepts the short tags "f" and "foh" in any case.
func ParseLocalityType(s string) (LocalityType, error) {
	switch LocalityType(strings.ToLower(strings.TrimSpace(s))) {
	case FeatureOnly:
		return FeatureOnly, nil
	case FeatureOffsetHeading:
		return FeatureOffsetHeading, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownLocalityType)
	}
}

// StatusComplete marks a parse that found every part its type needs.
const StatusComplete = "complete"

const (
	reasonNoOffset  = "no offset"
	reasonNoUnits   = "no units"
	reasonNoHeading = "no heading"
	reasonNoFeature = "no feature"
)

// ParsedLocality is the decomposition of one locality string. Unit and
// heading hold canonical registry names, not the text as written; the
// offset keeps its literal text because its precision depends on it.
type ParsedLocality struct {
	Verbatim       string       `json:"verbatim_loc"`
	Type           LocalityType `json:"locality_type"`
	OffsetValue    string       `json:"offset_value,omitempty"`
	OffsetUnit     string       `json:"offset_unit,omitempty"`
	Heading        string       `json:"heading,omitempty"`
	Features       []string     `json:"features,omitempty"`
	InterpretedLoc string       `json:"interpreted_loc,omitempty"`
	Status         string       `json:"status"`
}

// Complete reports whether the parse found everything its type needs.
func (p ParsedLocality) Complete() bool {
	return p.Status == StatusComplete
}

// Feature returns the first feature name, or "" when none was found.
func (p ParsedLocality) Feature() string {
	if len(p.Features) == 0 {
		return ""
	}
	return p.Features[0]
}

// Parse decomposes text according to its locality type.
//
// Feature-offset-heading strings are split on whitespace. The first
// contiguous "<number> <unit> <heading>" run of tokens fills the offset,
// unit and heading; every other token belongs to the feature name. When no
// such run exists the tokens are scanned left to right instead:
//
//  1. the first number fills the offset;
//  2. after the offset, the first unit form fills the unit;
//  3. a heading form directly after the unit fills the heading;
//  4. anything else joins the feature name.
//
// Word numbers ("five"), mixed numbers ("5 1/2"), multi-word units
// ("nautical miles") and glued tokens ("10mi") are not recognized.
func Parse(text string, locType LocalityType) ParsedLocality {
	if locType == FeatureOffsetHeading {
		return parseOffsetHeading(text)
	}
	return parseFeatureOnly(text)
}

func parseFeatureOnly(text string) ParsedLocality {
	p := ParsedLocality{Verbatim: text, Type: FeatureOnly}
	feature := strings.TrimSpace(text)
	if feature == "" {
		p.Status = reasonNoFeature
		return p
	}
	p.Features = []string{feature}
	p.InterpretedLoc = feature
	p.Status = StatusComplete
	return p
}

func parseOffsetHeading(text string) ParsedLocality {
	p := ParsedLocality{Verbatim: text, Type: FeatureOffsetHeading}
	tokens := strings.Fields(text)

	offsetIdx, unitIdx, headingIdx := -1, -1, -1
	if i, ok := findOffsetTriple(tokens); ok {
		offsetIdx, unitIdx, headingIdx = i, i+1, i+2
	} else {
		offsetIdx, unitIdx, headingIdx = scanTokens(tokens)
	}

	var rest []string
	for i, tok := range tokens {
		if i == offsetIdx || i == unitIdx || i == headingIdx {
			continue
		}
		rest = append(rest, tok)
	}
	feature := strings.TrimSpace(strings.Join(rest, " "))

	var reasons []string
	if offsetIdx >= 0 {
		p.OffsetValue = tokens[offsetIdx]
	} else {
		reasons = append(reasons, reasonNoOffset)
	}
	if unitIdx >= 0 {
		u, _ := LookupUnit(tokens[unitIdx])
		p.OffsetUnit = u.Name
	} else {
		reasons = append(reasons, reasonNoUnits)
	}
	if headingIdx >= 0 {
		h, _ := LookupHeading(tokens[headingIdx])
		p.Heading = h.Name
	} else {
		reasons = append(reasons, reasonNoHeading)
	}
	if feature == "" {
		reasons = append(reasons, reasonNoFeature)
	} else {
		p.Features = []string{feature}
	}

	if len(reasons) > 0 {
		p.Status = strings.Join(reasons, ", ")
		return p
	}
	p.Status = StatusComplete
	p.InterpretedLoc = strings.Join([]string{p.OffsetValue, p.OffsetUnit, p.Heading, feature}, " ")
	return p
}

// findOffsetTriple returns the index of the first token starting a
// "<number> <unit> <heading>" run.
func findOffsetTriple(tokens []string) (int, bool) {
	for i := 0; i+2 < len(tokens); i++ {
		if !isNumber(tokens[i]) {
			continue
		}
		if _, ok := LookupUnit(tokens[i+1]); !ok {
			continue
		}
		if _, ok := LookupHeading(tokens[i+2]); ok {
			return i, true
		}
	}
	return 0, false
}

// scanTokens fills the offset, unit and heading slots left to right. Each
// slot is filled at most once; -1 means not found.
func scanTokens(tokens []string) (offsetIdx, unitIdx, headingIdx int) {
	offsetIdx, unitIdx, headingIdx = -1, -1, -1
	for i, tok := range tokens {
		switch {
		case offsetIdx < 0 && isNumber(tok):
			offsetIdx = i
		case offsetIdx >= 0 && unitIdx < 0 && isUnit(tok):
			unitIdx = i
		case headingIdx < 0 && unitIdx >= 0 && i == unitIdx+1 && isHeading(tok):
			headingIdx = i
		}
	}
	return offsetIdx, unitIdx, headingIdx
}

// isNumber reports whether tok is a finite numeric literal. Exponent and
// signed forms ("1e1", "-5") count; DistancePrecision rejects them later.
func isNumber(tok string) bool {
	v, err := strconv.ParseFloat(tok, 64)
	return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isUnit(tok string) bool {
	_, ok := LookupUnit(tok)
	return ok
}

func isHeading(tok string) bool {
	_, ok := LookupHeading(tok)
	return ok
}
