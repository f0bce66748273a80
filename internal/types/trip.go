package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// Date is a calendar day encoded as "YYYY-MM-DD" in JSON.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type TripStatus string

const (
	TripPlanned   TripStatus = "planned"
	TripOngoing   TripStatus = "ongoing"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

func (s TripStatus) Valid() bool {
	switch s {
	case TripPlanned, TripOngoing, TripCompleted, TripCancelled:
		return true
	}
	return false
}

type Trip struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Title       string         `json:"title" example:"北京三日游"`
	Destination string         `json:"destination" example:"北京"`
	StartDate   Date           `json:"start_date" swaggertype:"string" example:"2025-06-01"`
	EndDate     Date           `json:"end_date" swaggertype:"string" example:"2025-06-03"`
	Budget      *float64       `json:"budget,omitempty" example:"3000"`
	Status      TripStatus     `json:"status" example:"planned"`
	CoverImage  *string        `json:"cover_image,omitempty"`
	Description *string        `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Activities  []TripActivity `json:"activities,omitempty"`
}

var ActivityTypes = []string{"sightseeing", "dining", "shopping", "entertainment", "transportation", "accommodation", "other"}

type TripActivity struct {
	ID            uuid.UUID `json:"id"`
	TripID        uuid.UUID `json:"trip_id"`
	DayNumber     int       `json:"day_number" example:"1"`
	Title         string    `json:"title" example:"参观故宫博物院"`
	Description   *string   `json:"description,omitempty"`
	Location      *string   `json:"location,omitempty"`
	StartTime     *string   `json:"start_time,omitempty" example:"09:00"`
	EndTime       *string   `json:"end_time,omitempty" example:"12:00"`
	EstimatedCost *float64  `json:"estimated_cost,omitempty" example:"60"`
	ActivityType  string    `json:"activity_type" example:"sightseeing"`
	CreatedAt     time.Time `json:"created_at"`
}
