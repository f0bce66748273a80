package navigation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

func testServices() []config.MapService {
	return []config.MapService{
		{Key: "baidu", Name: "百度地图", URLTemplate: "https://api.map.baidu.com/direction?destination={address}&mode=driving", Priority: 2},
		{Key: "apple", Name: "Apple地图", URLTemplate: "http://maps.apple.com/?daddr={address}", Priority: 5},
		{Key: "amap", Name: "高德地图", URLTemplate: "https://uri.amap.com/navigation?to={address}", Priority: 1},
	}
}

func newTestService() *ServiceImpl {
	return NewServiceImpl(testServices(), time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func f(v float64) *float64 { return &v }

func TestNavigate_LinksOrderedAndEscaped(t *testing.T) {
	resp, err := newTestService().Navigate(context.Background(), Request{Address: " 北京市东城区景山前街4号 "})
	require.NoError(t, err)

	assert.Equal(t, "北京市东城区景山前街4号", resp.Address)
	require.Len(t, resp.Links, 3)
	assert.Equal(t, []string{"amap", "baidu", "apple"}, []string{resp.Links[0].Key, resp.Links[1].Key, resp.Links[2].Key})
	assert.Equal(t,
		"https://uri.amap.com/navigation?to=%E5%8C%97%E4%BA%AC%E5%B8%82%E4%B8%9C%E5%9F%8E%E5%8C%BA%E6%99%AF%E5%B1%B1%E5%89%8D%E8%A1%974%E5%8F%B7",
		resp.Links[0].URL)
	assert.Nil(t, resp.DistanceMeters)
}

func TestNavigate_EscapesReservedCharacters(t *testing.T) {
	resp, err := newTestService().Navigate(context.Background(), Request{Address: "A&B 1#"})
	require.NoError(t, err)
	assert.Equal(t, "http://maps.apple.com/?daddr=A%26B+1%23", resp.Links[2].URL)
}

func TestNavigate_EmptyAddress(t *testing.T) {
	_, err := newTestService().Navigate(context.Background(), Request{Address: "   "})
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestNavigate_Distance(t *testing.T) {
	svc := newTestService()

	// Tiananmen to the Forbidden City's Meridian Gate
	resp, err := svc.Navigate(context.Background(), Request{
		Address: "故宫博物院", Lat: f(39.9163), Lng: f(116.3972), OriginLat: f(39.9087), OriginLng: f(116.3975),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.DistanceMeters)
	assert.InDelta(t, 845, *resp.DistanceMeters, 15)

	resp, err = svc.Navigate(context.Background(), Request{Address: "故宫博物院", Lat: f(39.9163), Lng: f(116.3972)})
	require.NoError(t, err)
	assert.Nil(t, resp.DistanceMeters)

	resp, err = svc.Navigate(context.Background(), Request{
		Address: "故宫博物院", Lat: f(139.9), Lng: f(116.3972), OriginLat: f(39.9087), OriginLng: f(116.3975),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.DistanceMeters)
}

func TestNavigate_CachesLinks(t *testing.T) {
	svc := newTestService()
	first, err := svc.Navigate(context.Background(), Request{Address: "天坛公园"})
	require.NoError(t, err)

	cached, ok := svc.cache.Get("天坛公园")
	require.True(t, ok)
	assert.Equal(t, first.Links, cached.([]Link))

	second, err := svc.Navigate(context.Background(), Request{Address: "天坛公园"})
	require.NoError(t, err)
	assert.Equal(t, first.Links, second.Links)
}

func TestNavigate_CallerCannotMutateCache(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Navigate(ctx, Request{Address: "天坛公园"})
	require.NoError(t, err)
	want := first.Links[0]
	first.Links[0].URL = "https://evil.example"

	second, err := svc.Navigate(ctx, Request{Address: "天坛公园"})
	require.NoError(t, err)
	assert.Equal(t, want, second.Links[0])

	second.Links[0].Name = "changed"
	third, err := svc.Navigate(ctx, Request{Address: "天坛公园"})
	require.NoError(t, err)
	assert.Equal(t, want, third.Links[0])
}

func TestHandler_Navigate(t *testing.T) {
	h := NewHandler(newTestService(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	rr := httptest.NewRecorder()
	h.Navigate(rr, httptest.NewRequest(http.MethodPost, "/api/v1/locations/navigation", bytes.NewBufferString(`{"address":"天坛公园"}`)))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.Navigate(rr, httptest.NewRequest(http.MethodPost, "/api/v1/locations/navigation", bytes.NewBufferString(`{"address":""}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp types.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "地址不能为空", resp.Error)
}
