package classify

import (
	"context"
	"math/rand"
)

// MaterialInfo is a static guidance entry for a material type. The table is
// not consulted on the classification path (the model supplies its own tips
// and examples); it backs the materials endpoint and the offline classifier.
type MaterialInfo struct {
	MaterialType MaterialType `json:"materialType"`
	BinColor     BinColor     `json:"binColor"`
	Recyclable   bool         `json:"recyclable"`
	Description  string       `json:"description"`
	Tip          string       `json:"tip"`
	Examples     []string     `json:"examples"`
}

var materialTable = []MaterialInfo{
	{
		MaterialType: MaterialPlastic,
		BinColor:     BinBlue,
		Recyclable:   true,
		Description:  "Plastic bottles, containers, and packaging materials",
		Tip:          "Remove caps and rinse before recycling. Check for recycling symbol (1-7).",
		Examples:     []string{"Water bottles", "Food containers", "Bottle caps"},
	},
	{
		MaterialType: MaterialPaper,
		BinColor:     BinBlue,
		Recyclable:   true,
		Description:  "Newspapers, magazines, office paper, and cardboard",
		Tip:          "Keep paper dry and clean. Remove any plastic windows from envelopes.",
		Examples:     []string{"Newspapers", "Magazines", "Envelopes"},
	},
	{
		MaterialType: MaterialMetal,
		BinColor:     BinBlue,
		Recyclable:   true,
		Description:  "Aluminum and steel cans, tins, and foils",
		Tip:          "Rinse cans and tins. Crush to save space. Remove paper labels if possible.",
		Examples:     []string{"Soda cans", "Tin cans", "Aluminum foil"},
	},
	{
		MaterialType: MaterialGlass,
		BinColor:     BinBlue,
		Recyclable:   true,
		Description:  "Glass bottles, jars, and containers",
		Tip:          "Rinse bottles and jars. Remove metal lids. Do not include broken glass.",
		Examples:     []string{"Wine bottles", "Jam jars", "Beer bottles"},
	},
	{
		MaterialType: MaterialOrganic,
		BinColor:     BinGreen,
		Recyclable:   false,
		Description:  "Food waste, yard trimmings, and biodegradable materials",
		Tip:          "Compost food scraps and garden waste. Keep separate from recyclables.",
		Examples:     []string{"Fruit peels", "Vegetable scraps", "Coffee grounds"},
	},
	{
		MaterialType: MaterialEWaste,
		BinColor:     BinRed,
		Recyclable:   false,
		Description:  "Electronic devices and components",
		Tip:          "Take to designated e-waste collection centers. Never throw in regular bins.",
		Examples:     []string{"Old phones", "Batteries", "Chargers"},
	},
	{
		MaterialType: MaterialTextile,
		BinColor:     BinYellow,
		Recyclable:   true,
		Description:  "Clothing, fabric scraps, and household textiles",
		Tip:          "Donate wearable clothing. Take worn-out textiles to fabric recycling points.",
		Examples:     []string{"Old clothes", "Bed sheets", "Towels"},
	},
	{
		MaterialType: MaterialMixed,
		BinColor:     BinRed,
		Recyclable:   false,
		Description:  "Items combining several materials that cannot be separated",
		Tip:          "Separate components where possible, otherwise dispose as general waste.",
		Examples:     []string{"Laminated packaging", "Composite toys", "Coated paper cups"},
	},
}

// MaterialTable returns the static material guidance table.
func MaterialTable() []MaterialInfo {
	return materialTable
}

// LookupMaterial returns the guidance entry for a material type.
func LookupMaterial(t MaterialType) (MaterialInfo, bool) {
	for _, info := range materialTable {
		if info.MaterialType == t {
			return info, true
		}
	}
	return MaterialInfo{}, false
}

// StaticClassifier serves classifications from the static material table
// without calling any model. It exists for demos and environments without
// a Gemini credential; the material is picked at random since there is no
// model to look at the image.
type StaticClassifier struct{}

// Classify implements the Classifier interface using the static table.
func (StaticClassifier) Classify(ctx context.Context, imageData []byte, mimeType string) (*Classification, error) {
	info := materialTable[rand.Intn(len(materialTable))]
	result := &Result{
		MaterialType: info.MaterialType,
		Description:  info.Description,
		Recyclable:   info.Recyclable,
		BinColor:     info.BinColor,
		Tip:          info.Tip,
		Examples:     info.Examples,
	}
	result.Normalize()
	return &Classification{Result: result}, nil
}
