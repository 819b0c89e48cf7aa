package models

// Mechanic is a partner workshop shown on the coverage map. Coordinates are
// kept as strings exactly as they arrive from the bulk import sheets.
type Mechanic struct {
	BaseModel
	Name      string  `gorm:"index" json:"name"`
	Address   string  `json:"address"`
	Latitude  string  `json:"latitude"`
	Longitude string  `json:"longitude"`
	Phone     *string `json:"phone"`
}
