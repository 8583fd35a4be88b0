package classify

// MaterialType is the material category assigned to a waste item.
type MaterialType string

const (
	MaterialPlastic MaterialType = "Plastic"
	MaterialPaper   MaterialType = "Paper"
	MaterialMetal   MaterialType = "Metal"
	MaterialGlass   MaterialType = "Glass"
	MaterialOrganic MaterialType = "Organic"
	MaterialEWaste  MaterialType = "E-waste"
	MaterialTextile MaterialType = "Textile"
	MaterialMixed   MaterialType = "Mixed"
	MaterialUnknown MaterialType = "Unknown"
)

// BinColor is the disposal bin a classified item belongs in.
type BinColor string

const (
	BinGreen  BinColor = "Green"
	BinBlue   BinColor = "Blue"
	BinYellow BinColor = "Yellow"
	BinRed    BinColor = "Red"
)

// DefaultBinColor is used when the model returns a bin color outside the
// known set.
const DefaultBinColor = BinBlue

var materialTypes = map[MaterialType]bool{
	MaterialPlastic: true,
	MaterialPaper:   true,
	MaterialMetal:   true,
	MaterialGlass:   true,
	MaterialOrganic: true,
	MaterialEWaste:  true,
	MaterialTextile: true,
	MaterialMixed:   true,
	MaterialUnknown: true,
}

var binColors = map[BinColor]bool{
	BinGreen:  true,
	BinBlue:   true,
	BinYellow: true,
	BinRed:    true,
}

// ValidMaterialType reports whether t is one of the known material types.
func ValidMaterialType(t MaterialType) bool {
	return materialTypes[t]
}

// ValidBinColor reports whether c is one of the known bin colors.
func ValidBinColor(c BinColor) bool {
	return binColors[c]
}

// Result is the classification record for a single waste item.
type Result struct {
	MaterialType MaterialType `json:"materialType"`
	Description  string       `json:"description"`
	Recyclable   bool         `json:"recyclable"`
	BinColor     BinColor     `json:"binColor"`
	Tip          string       `json:"tip"`
	Examples     []string     `json:"examples"`

	// Extended guidance fields. The model is asked for them but they are
	// not required for a valid result.
	CollectionType         string   `json:"collectionType,omitempty"`
	SpecialHandling        bool     `json:"specialHandling,omitempty"`
	SpecialHandlingMessage string   `json:"specialHandlingMessage,omitempty"`
	PreparationSteps       []string `json:"preparationSteps,omitempty"`
	UpcyclingIdea          string   `json:"upcyclingIdea,omitempty"`
}

const maxExamples = 3

// Normalize coerces out-of-set values to their deterministic defaults so
// downstream consumers only ever see known material types and bin colors.
func (r *Result) Normalize() {
	if !ValidMaterialType(r.MaterialType) {
		r.MaterialType = MaterialUnknown
	}
	if !ValidBinColor(r.BinColor) {
		r.BinColor = DefaultBinColor
	}
	if len(r.Examples) > maxExamples {
		r.Examples = r.Examples[:maxExamples]
	}
}

// Valid reports whether the result's closed-set fields are in range.
func (r *Result) Valid() bool {
	return ValidMaterialType(r.MaterialType) && ValidBinColor(r.BinColor)
}

// FallbackResult returns the safe default returned whenever the model's
// reply cannot be parsed. The values are fixed so an unparseable reply is
// indistinguishable from a confident "I don't know".
func FallbackResult() *Result {
	return &Result{
		MaterialType:    MaterialUnknown,
		Description:     "Unable to classify item",
		Recyclable:      false,
		BinColor:        BinRed,
		Tip:             "Please consult local recycling guidelines for proper disposal",
		Examples:        []string{"Unidentified items", "Mixed materials", "Unclear waste"},
		CollectionType:  "General Waste",
		SpecialHandling: false,
		PreparationSteps: []string{
			"Check local disposal guidelines",
			"Separate different materials if possible",
			"Clean if required",
			"Take to appropriate facility",
		},
		UpcyclingIdea: "Consult local recycling center for creative reuse options",
	}
}

// BinColorInfo describes how a bin color is presented to users.
type BinColorInfo struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// BinColors maps each bin color to its display info. Built once, read-only.
var BinColors = map[BinColor]BinColorInfo{
	BinBlue:   {Name: "Blue Bin", Color: "#3B82F6", Description: "Dry Recyclables"},
	BinGreen:  {Name: "Green Bin", Color: "#10B981", Description: "Organic Waste"},
	BinRed:    {Name: "Red Bin", Color: "#EF4444", Description: "Hazardous Waste"},
	BinYellow: {Name: "Yellow Bin", Color: "#F59E0B", Description: "Medical Waste"},
}
