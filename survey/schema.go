// Package survey maps the raw survey export onto the analysis variables:
// five personality trait scores built from a ten-item inventory (two items
// per trait) plus one self-rated health outcome.
//
// The package owns the dataset-encoding specifics: which columns hold the
// inventory items, which sentinel codes mean "not answered", which items are
// reverse-keyed, and the row filter that discards respondents who skipped
// the whole inventory.
package survey

import (
	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
)

// Encoded-field counts for one respondent row: ten inventory items plus the
// outcome. Rows missing all ten predictor items (count 10), or those plus
// the outcome (count 11), carry no usable signal and are dropped. These are
// literal constants of the dataset encoding, not derived values.
const (
	NumItems         = 10
	NumEncodedFields = NumItems + 1

	dropCountAllPredictors = 10
	dropCountEverything    = 11
)

// DefaultSentinels are the refusal/don't-know/not-applicable codes the
// export uses in place of answers.
var DefaultSentinels = []float64{-1, -8, -9}

// Trait describes one personality score: two inventory items, one of which
// may be reverse-keyed.
type Trait struct {
	Name     string
	Items    [2]string
	Reversed [2]bool
}

// Schema describes the survey export layout.
type Schema struct {
	Traits  [5]Trait
	Outcome string

	// Sentinels are recoded to missing before any missingness counting.
	Sentinels []float64

	// ScaleMax is the top of the item response scale, used for reverse
	// keying (item -> ScaleMax+1-item). Zero disables reverse keying.
	ScaleMax float64
}

// DefaultSchema returns the layout of the ten-item inventory export:
// items tipi1..tipi10 in trait order (extraversion, agreeableness,
// conscientiousness, emotional stability, openness), outcome srhealth,
// items answered on a 1..7 scale.
func DefaultSchema() Schema {
	return Schema{
		Traits: [5]Trait{
			{Name: "extraversion", Items: [2]string{"tipi1", "tipi6"}, Reversed: [2]bool{false, true}},
			{Name: "agreeableness", Items: [2]string{"tipi2", "tipi7"}, Reversed: [2]bool{true, false}},
			{Name: "conscientiousness", Items: [2]string{"tipi3", "tipi8"}, Reversed: [2]bool{false, true}},
			{Name: "stability", Items: [2]string{"tipi4", "tipi9"}, Reversed: [2]bool{true, false}},
			{Name: "openness", Items: [2]string{"tipi5", "tipi10"}, Reversed: [2]bool{false, true}},
		},
		Outcome:   "srhealth",
		Sentinels: DefaultSentinels,
		ScaleMax:  7,
	}
}

// ItemColumns returns the ten item column names in trait order.
func (s Schema) ItemColumns() []string {
	cols := make([]string, 0, NumItems)
	for _, tr := range s.Traits {
		cols = append(cols, tr.Items[0], tr.Items[1])
	}
	return cols
}

// TraitNames returns the five score names in schema order.
func (s Schema) TraitNames() []string {
	names := make([]string, 0, len(s.Traits))
	for _, tr := range s.Traits {
		names = append(names, tr.Name)
	}
	return names
}

// Validate checks the schema for empty column names and duplicate items.
func (s Schema) Validate() error {
	if s.Outcome == "" {
		return sgerrors.NewValidationError("Outcome", "must not be empty", s.Outcome)
	}

	seen := make(map[string]bool, NumEncodedFields)
	for _, tr := range s.Traits {
		if tr.Name == "" {
			return sgerrors.NewValidationError("Trait.Name", "must not be empty", tr)
		}
		for _, item := range tr.Items {
			if item == "" {
				return sgerrors.NewValidationError("Trait.Items", "must not be empty", tr.Name)
			}
			if seen[item] {
				return sgerrors.NewValidationError("Trait.Items", "duplicate item column", item)
			}
			seen[item] = true
		}
	}
	if seen[s.Outcome] {
		return sgerrors.NewValidationError("Outcome", "outcome column reused as item", s.Outcome)
	}
	return nil
}
