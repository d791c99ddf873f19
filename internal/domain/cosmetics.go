package domain

// CosmeticType is the slot a cosmetic occupies when equipped.
type CosmeticType string

const (
	CosmeticColor     CosmeticType = "color"
	CosmeticPattern   CosmeticType = "pattern"
	CosmeticAccessory CosmeticType = "accessory"
	CosmeticPet       CosmeticType = "pet"
)

// Cosmetic is a purchasable reward-shop item.
type Cosmetic struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        CosmeticType `json:"type"`
	Cost        int          `json:"cost"`
	Description string       `json:"description"`
}

// Baseline cosmetics every profile owns regardless of save age.
const (
	CosmeticBaseColor   = "color-orange"
	CosmeticNoAccessory = "accessory-none"
	CosmeticNoPet       = "pet-none"
)

// DefaultOwned is the baseline unlock set.
var DefaultOwned = []string{CosmeticBaseColor, CosmeticNoAccessory, CosmeticNoPet}

// Cosmetics is the built-in shop catalog.
var Cosmetics = []Cosmetic{
	{ID: CosmeticBaseColor, Name: "Classic Orange", Type: CosmeticColor, Cost: 0, Description: "The original brain color"},
	{ID: "color-blue", Name: "Ocean Blue", Type: CosmeticColor, Cost: 100, Description: "Cool and calming"},
	{ID: "color-pink", Name: "Bubblegum Pink", Type: CosmeticColor, Cost: 150, Description: "Sweet and powerful"},
	{ID: "color-yellow", Name: "Sunny Yellow", Type: CosmeticColor, Cost: 200, Description: "Bright and energetic"},

	{ID: CosmeticNoAccessory, Name: "No Accessory", Type: CosmeticAccessory, Cost: 0, Description: "Go accessory-free"},
	{ID: "accessory-3d-glasses", Name: "3D Glasses", Type: CosmeticAccessory, Cost: 250, Description: "See learning in 3D"},
	{ID: "accessory-cool-glasses", Name: "Cool Glasses", Type: CosmeticAccessory, Cost: 350, Description: "Too cool for school"},
	{ID: "accessory-flame-glasses", Name: "Flame Glasses", Type: CosmeticAccessory, Cost: 400, Description: "Hot knowledge"},
	{ID: "accessory-monocle", Name: "Monocle", Type: CosmeticAccessory, Cost: 500, Description: "Distinguished scholar"},
	{ID: "accessory-nerdy-glasses", Name: "Nerdy Glasses", Type: CosmeticAccessory, Cost: 200, Description: "Classic nerd look"},
	{ID: "accessory-star-glasses", Name: "Star Glasses", Type: CosmeticAccessory, Cost: 450, Description: "Superstar student"},

	{ID: CosmeticNoPet, Name: "No Pet", Type: CosmeticPet, Cost: 0, Description: "No companion"},
	{ID: "pet-bacteria", Name: "Bacteria Buddy", Type: CosmeticPet, Cost: 1000, Description: "A friendly microbe companion"},
	{ID: "pet-capsule", Name: "Capsule Pal", Type: CosmeticPet, Cost: 1000, Description: "Your medicinal friend"},
	{ID: "pet-flask", Name: "Flask Friend", Type: CosmeticPet, Cost: 1000, Description: "Lab equipment come to life"},
}

// CosmeticByID looks up a catalog entry, or returns nil.
func CosmeticByID(id string) *Cosmetic {
	for i := range Cosmetics {
		if Cosmetics[i].ID == id {
			return &Cosmetics[i]
		}
	}
	return nil
}
