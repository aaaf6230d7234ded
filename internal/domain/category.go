package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Category is an SPC categorical risk level, ordered by ascending severity.
type Category int

const (
	CategoryNone Category = iota
	CategoryTSTM
	CategoryMRGL
	CategorySLGT
	CategoryENH
	CategoryMDT
	CategoryHIGH
)

// categoryInfo holds the code, display text, and SPC map color for each level.
// Colors follow https://www.spc.noaa.gov/new/css/SPCmain.css.
var categoryInfo = [...]struct {
	code  string
	text  string
	color string
}{
	CategoryNone: {"NONE", "None", "afddf6"},
	CategoryTSTM: {"TSTM", "General Thunderstorms", "d2ffa6"},
	CategoryMRGL: {"MRGL", "Marginal", "7ac687"},
	CategorySLGT: {"SLGT", "Slight", "f7f690"},
	CategoryENH:  {"ENH", "Enhanced", "e9c188"},
	CategoryMDT:  {"MDT", "Moderate", "eb7e82"},
	CategoryHIGH: {"HIGH", "High", "ff81f8"},
}

func (c Category) valid() bool {
	return c >= CategoryNone && c <= CategoryHIGH
}

// Code returns the SPC label, e.g. "SLGT". Out-of-range values report "NONE".
func (c Category) Code() string {
	if !c.valid() {
		return categoryInfo[CategoryNone].code
	}
	return categoryInfo[c].code
}

// Text returns the human-readable name, e.g. "Slight".
func (c Category) Text() string {
	if !c.valid() {
		return categoryInfo[CategoryNone].text
	}
	return categoryInfo[c].text
}

// Color returns the SPC map color as a hex string without the leading '#'.
func (c Category) Color() string {
	if !c.valid() {
		return categoryInfo[CategoryNone].color
	}
	return categoryInfo[c].color
}

func (c Category) String() string { return c.Code() }

// ParseCategory maps an SPC label to its Category. Unknown labels, including the
// empty string, are CategoryNone.
func ParseCategory(code string) Category {
	for i := CategoryTSTM; i <= CategoryHIGH; i++ {
		if categoryInfo[i].code == code {
			return i
		}
	}
	return CategoryNone
}

// MarshalJSON encodes the category as its SPC code.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Code())
}

// UnmarshalJSON decodes an SPC code. Unknown codes decode to CategoryNone.
func (c *Category) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("decode category: %w", err)
	}
	*c = ParseCategory(code)
	return nil
}

// categoryValue is the label-to-value function for categorical layers. The
// ordinal doubles as the value so that max-reduction picks the most severe level.
func categoryValue(label string) float64 {
	return float64(ParseCategory(label))
}

// PercToRisk converts a day 4-8 probability (fraction) to a categorical level.
// The mapping is a lookup on the whole percent; values SPC does not issue for the
// extended range (e.g. 10%, 2%) map to CategoryNone.
func PercToRisk(prob float64, significant bool) Category {
	switch int(math.Round(prob * 100)) {
	case 45:
		if significant {
			return CategoryMDT
		}
		return CategoryENH
	case 30:
		return CategoryENH
	case 15:
		return CategorySLGT
	case 5:
		return CategoryMRGL
	default:
		return CategoryNone
	}
}
