// Package domain georeferences free-text locality descriptions.
//
// # Locality types
//
// A location such as "5 mi N Berkeley; Alameda County" is split on commas
// and semicolons into sub-localities, each of which is one of:
//
//	f    feature only:            "Alameda County"
//	foh  feature offset heading:  "5 mi N Berkeley", "Berkeley 5 mi N"
//
// The type comes from a [Classifier]; [RuleClassifier] decides locally.
//
// # Parsing
//
// [Parse] finds the offset, unit and heading of a foh locality and keeps
// the rest as the feature name. Units and headings come from closed
// registries ([LookupUnit], [LookupHeading]) matched after removing
// periods, commas and hyphens and lower-casing:
//
//	mi km m ft yd nmi ch rd fur
//	N NNE NE ENE E ESE SE SSE S SSW SW WSW W WNW NW NNW
//
// The offset keeps its literal text, because "10", "10.0" and "10.5" imply
// different precisions ([DistancePrecision]).
//
// # Uncertainty
//
// A georeference is a point and a radius in meters. For a foh locality the
// radius combines the anchor feature's extent (center to farthest corner),
// half of the offset's last significant place and the angular error of the
// heading (45 degrees for N, 22.5 for NE, 11.25 for NNE), see
// [FeatureOffsetHeadingError]. Geocoded points without bounds get a fixed
// radius from [ExtentPolicy]: 100 m for rooftop matches, 1000 m otherwise.
//
// # Combining sub-localities
//
// Every sub-locality yields zero or more candidate boxes (ambiguous feature
// names geocode to several places). [CombineGeorefs] keeps the regions that
// overlap a candidate of every sub-locality. A sub-locality without
// candidates is ignored instead of emptying the result.
package domain
