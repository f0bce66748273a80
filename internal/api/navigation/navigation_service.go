package navigation

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/config"
)

const (
	addressPlaceholder = "{address}"
	defaultCacheTTL    = 10 * time.Minute
)

var ErrEmptyAddress = errors.New("address is empty")

type Request struct {
	Address   string   `json:"address" example:"北京市东城区景山前街4号"`
	Lat       *float64 `json:"lat,omitempty" example:"39.9163"`
	Lng       *float64 `json:"lng,omitempty" example:"116.3972"`
	OriginLat *float64 `json:"origin_lat,omitempty" example:"39.9087"`
	OriginLng *float64 `json:"origin_lng,omitempty" example:"116.3975"`
}

type Link struct {
	Key  string `json:"key" example:"amap"`
	Name string `json:"name" example:"高德地图"`
	URL  string `json:"url"`
}

type Response struct {
	Address string `json:"address"`
	Links   []Link `json:"links"`
	// DistanceMeters is the great-circle distance from origin to destination,
	// present only when both are known.
	DistanceMeters *float64 `json:"distance_meters,omitempty" example:"812.4"`
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Navigate(ctx context.Context, req Request) (*Response, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	services []config.MapService
	cache    *cache.Cache
}

// NewServiceImpl orders services by priority once; link lists are cached per
// address for ttl.
func NewServiceImpl(services []config.MapService, ttl time.Duration, logger *slog.Logger) *ServiceImpl {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	sorted := slices.Clone(services)
	slices.SortStableFunc(sorted, func(a, b config.MapService) int { return a.Priority - b.Priority })
	return &ServiceImpl{
		logger:   logger,
		services: sorted,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (s *ServiceImpl) Navigate(ctx context.Context, req Request) (*Response, error) {
	_, span := otel.Tracer("NavigationService").Start(ctx, "Navigate")
	defer span.End()

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	resp := &Response{Address: address, Links: s.links(address, span)}
	if d, ok := distance(req); ok {
		resp.DistanceMeters = &d
		span.SetAttributes(attribute.Float64("navigation.distance_m", d))
	}
	return resp, nil
}

func (s *ServiceImpl) links(address string, span trace.Span) []Link {
	if cached, ok := s.cache.Get(address); ok {
		span.SetAttributes(attribute.Bool("navigation.cache_hit", true))
		return slices.Clone(cached.([]Link))
	}

	escaped := url.QueryEscape(address)
	links := make([]Link, 0, len(s.services))
	for _, svc := range s.services {
		links = append(links, Link{
			Key:  svc.Key,
			Name: svc.Name,
			URL:  strings.ReplaceAll(svc.URLTemplate, addressPlaceholder, escaped),
		})
	}
	s.cache.SetDefault(address, slices.Clone(links))
	return links
}

func validPoint(lat, lng *float64) bool {
	return lat != nil && lng != nil && *lat >= -90 && *lat <= 90 && *lng >= -180 && *lng <= 180
}

func distance(req Request) (float64, bool) {
	if !validPoint(req.Lat, req.Lng) || !validPoint(req.OriginLat, req.OriginLng) {
		return 0, false
	}
	d := geo.Distance(orb.Point{*req.OriginLng, *req.OriginLat}, orb.Point{*req.Lng, *req.Lat})
	return math.Round(d*10) / 10, true
}
