package attractions

import (
	"regexp"
	"strconv"

	"golang.org/x/text/width"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// coordinateRules are tried in order: labelled pairs before bare pairs.
var coordinateRules = []rule[types.Coordinates]{
	{
		name:    "latlng-label",
		pattern: regexp.MustCompile(`经纬度[：:]\s*(-?[0-9.]+)[,，]\s*(-?[0-9.]+)`),
		accept:  acceptCoordinates,
	},
	{
		name:    "coordinate-label",
		pattern: regexp.MustCompile(`坐标[：:]\s*(-?[0-9.]+)[,，]\s*(-?[0-9.]+)`),
		accept:  acceptCoordinates,
	},
	{
		name:    "bare-pair",
		pattern: regexp.MustCompile(`(-?[0-9]+\.[0-9]+)[,，]\s*(-?[0-9]+\.[0-9]+)`),
		accept:  acceptCoordinates,
	},
}

func acceptCoordinates(groups []string) (types.Coordinates, bool) {
	lat, err := strconv.ParseFloat(groups[1], 64)
	if err != nil {
		return types.Coordinates{}, false
	}
	lng, err := strconv.ParseFloat(groups[2], 64)
	if err != nil {
		return types.Coordinates{}, false
	}
	c := types.Coordinates{Lat: lat, Lng: lng}
	if !c.Valid() {
		return types.Coordinates{}, false
	}
	return c, true
}

// ExtractCoordinates finds the first latitude/longitude pair in a section that
// parses and lies within range. Full-width digits and punctuation are folded
// to ASCII first.
func ExtractCoordinates(section string) (*types.Coordinates, bool) {
	c, ok := firstValid(coordinateRules, width.Fold.String(section))
	if !ok {
		return nil, false
	}
	return &c, true
}
