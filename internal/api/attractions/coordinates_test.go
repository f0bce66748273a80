package attractions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

func TestExtractCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    *types.Coordinates
	}{
		{"latlng label", "故宫\n经纬度：39.9163,116.3972", &types.Coordinates{Lat: 39.9163, Lng: 116.3972}},
		{"ascii colon and full-width comma", "故宫\n经纬度:39.9163，116.3972", &types.Coordinates{Lat: 39.9163, Lng: 116.3972}},
		{"coordinate label", "坐标：31.2397, 121.4998", &types.Coordinates{Lat: 31.2397, Lng: 121.4998}},
		{"bare pair", "位置大约在 30.2431,120.1490 附近", &types.Coordinates{Lat: 30.2431, Lng: 120.149}},
		{"full-width digits", "经纬度：３９．９，１１６．４", &types.Coordinates{Lat: 39.9, Lng: 116.4}},
		{"southern hemisphere", "坐标：-33.8688,151.2093", &types.Coordinates{Lat: -33.8688, Lng: 151.2093}},
		{"invalid label falls through to next rule", "经纬度：200.1,50.2\n坐标：39.9,116.4", &types.Coordinates{Lat: 39.9, Lng: 116.4}},
		{"latitude out of range", "经纬度：95.0,100.0", nil},
		{"longitude out of range", "经纬度：39.9,181.0", nil},
		{"unparseable", "经纬度：..,116.4", nil},
		{"integers are not a bare pair", "开放时间 8,17 点", nil},
		{"none", "故宫博物院", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCoordinates(tt.section)
			if tt.want == nil {
				assert.False(t, ok)
				assert.Nil(t, got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
