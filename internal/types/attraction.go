package types

// AttractionType is the category tag attached to every extracted attraction.
const AttractionType = "attraction"

// Coordinates is a validated latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat" example:"40.3587"`
	Lng float64 `json:"lng" example:"116.0154"`
}

// Valid reports whether the pair lies within latitude/longitude bounds.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Attraction is a point of interest pulled out of an AI reply for map display.
type Attraction struct {
	ID          string       `json:"id" example:"attraction_1718000000_0"`
	Name        string       `json:"name" example:"故宫博物院"`
	Address     string       `json:"address" example:"北京市东城区景山前街4号"`
	Image       string       `json:"image"`
	Type        string       `json:"type" example:"attraction"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}
