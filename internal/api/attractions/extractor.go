// Package attractions turns free-text assistant replies into a short, ordered
// list of attractions that clients can pin on a map.
//
// The pipeline is heuristic and deterministic: the reply is segmented into
// sections, each section is checked for a place name, and coordinates and an
// address are attached when the section spells them out. Extraction never
// fails; malformed input simply yields fewer records.
package attractions

import (
	"fmt"
	"time"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// DefaultMaxAttractions is used when configuration does not set a cap.
const DefaultMaxAttractions = 5

// Config holds the tunables injected from application configuration.
type Config struct {
	// MaxAttractions caps the records returned per reply. Zero or less
	// disables extraction.
	MaxAttractions int
	// DefaultImage is the placeholder image URL attached to every record.
	DefaultImage string
}

// AttractionExtractor is what callers depend on.
type AttractionExtractor interface {
	Extract(text string) []types.Attraction
}

var _ AttractionExtractor = (*Extractor)(nil)

// Extractor is immutable after construction and safe for concurrent use.
type Extractor struct {
	cfg Config
	now func() time.Time
}

type Option func(*Extractor)

// WithClock replaces the clock used for record ids.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

func NewExtractor(cfg Config, opts ...Option) *Extractor {
	e := &Extractor{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns at most Config.MaxAttractions attractions in the order
// their sections appear in text. Sections past the cap are not evaluated.
func (e *Extractor) Extract(text string) []types.Attraction {
	out := make([]types.Attraction, 0)
	if e.cfg.MaxAttractions <= 0 {
		return out
	}

	stamp := e.now().Unix()
	for _, section := range SplitSections(text) {
		name, ok := ExtractName(section)
		if !ok {
			continue
		}

		a := types.Attraction{
			ID:      fmt.Sprintf("attraction_%d_%d", stamp, len(out)),
			Name:    name,
			Address: ExtractAddress(section, name),
			Image:   e.cfg.DefaultImage,
			Type:    types.AttractionType,
		}
		if c, ok := ExtractCoordinates(section); ok {
			a.Coordinates = c
		}
		out = append(out, a)

		if len(out) >= e.cfg.MaxAttractions {
			break
		}
	}
	return out
}
