package trips

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

var (
	ErrNotFound     = errors.New("trip not found")
	ErrInvalidInput = errors.New("invalid trip input")
)

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrInvalidInput }

func invalid(msg string) error { return &validationError{msg: msg} }

// Message returns the client-facing text of a validation error.
func Message(err error) (string, bool) {
	var v *validationError
	if errors.As(err, &v) {
		return v.msg, true
	}
	return "", false
}

type CreateTripRequest struct {
	Title       string   `json:"title" example:"北京三日游"`
	Destination string   `json:"destination" example:"北京"`
	StartDate   string   `json:"start_date" example:"2025-06-01"`
	EndDate     string   `json:"end_date" example:"2025-06-03"`
	Budget      *float64 `json:"budget,omitempty" example:"3000"`
	CoverImage  *string  `json:"cover_image,omitempty"`
	Description *string  `json:"description,omitempty"`
}

type UpdateTripRequest struct {
	Title       *string  `json:"title,omitempty"`
	Destination *string  `json:"destination,omitempty"`
	StartDate   *string  `json:"start_date,omitempty" example:"2025-06-01"`
	EndDate     *string  `json:"end_date,omitempty" example:"2025-06-03"`
	Budget      *float64 `json:"budget,omitempty"`
	CoverImage  *string  `json:"cover_image,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *string  `json:"status,omitempty" example:"ongoing"`
}

type AddActivityRequest struct {
	DayNumber     int      `json:"day_number" example:"1"`
	Title         string   `json:"title" example:"参观故宫博物院"`
	Description   *string  `json:"description,omitempty"`
	Location      *string  `json:"location,omitempty" example:"北京市东城区景山前街4号"`
	StartTime     *string  `json:"start_time,omitempty" example:"09:00"`
	EndTime       *string  `json:"end_time,omitempty" example:"12:00"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty" example:"60"`
	ActivityType  string   `json:"activity_type,omitempty" example:"sightseeing"`
}

// TripUpdate holds the columns to change; nil fields are left alone.
type TripUpdate struct {
	Title       *string
	Destination *string
	StartDate   *types.Date
	EndDate     *types.Date
	Budget      *float64
	CoverImage  *string
	Description *string
	Status      *types.TripStatus
}

func (u TripUpdate) IsEmpty() bool {
	return u == TripUpdate{}
}

func (r CreateTripRequest) toTrip() (types.Trip, error) {
	title := strings.TrimSpace(r.Title)
	destination := strings.TrimSpace(r.Destination)
	if title == "" || destination == "" || r.StartDate == "" || r.EndDate == "" {
		return types.Trip{}, invalid("标题、目的地、开始日期和结束日期不能为空")
	}
	start, err := types.ParseDate(r.StartDate)
	if err != nil {
		return types.Trip{}, invalid("日期格式应为YYYY-MM-DD")
	}
	end, err := types.ParseDate(r.EndDate)
	if err != nil {
		return types.Trip{}, invalid("日期格式应为YYYY-MM-DD")
	}
	if end.Before(start.Time) {
		return types.Trip{}, invalid("结束日期不能早于开始日期")
	}
	if r.Budget != nil && *r.Budget < 0 {
		return types.Trip{}, invalid("预算不能为负数")
	}
	return types.Trip{
		Title:       title,
		Destination: destination,
		StartDate:   start,
		EndDate:     end,
		Budget:      r.Budget,
		Status:      types.TripPlanned,
		CoverImage:  r.CoverImage,
		Description: r.Description,
	}, nil
}

// toUpdate validates the request against the stored trip so that a partial
// date change cannot invert the range.
func (r UpdateTripRequest) toUpdate(current *types.Trip) (TripUpdate, error) {
	var u TripUpdate

	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return u, invalid("标题不能为空")
		}
		u.Title = &title
	}
	if r.Destination != nil {
		destination := strings.TrimSpace(*r.Destination)
		if destination == "" {
			return u, invalid("目的地不能为空")
		}
		u.Destination = &destination
	}

	start, end := current.StartDate, current.EndDate
	if r.StartDate != nil {
		d, err := types.ParseDate(*r.StartDate)
		if err != nil {
			return u, invalid("日期格式应为YYYY-MM-DD")
		}
		u.StartDate, start = &d, d
	}
	if r.EndDate != nil {
		d, err := types.ParseDate(*r.EndDate)
		if err != nil {
			return u, invalid("日期格式应为YYYY-MM-DD")
		}
		u.EndDate, end = &d, d
	}
	if end.Before(start.Time) {
		return u, invalid("结束日期不能早于开始日期")
	}

	if r.Budget != nil {
		if *r.Budget < 0 {
			return u, invalid("预算不能为负数")
		}
		u.Budget = r.Budget
	}
	u.CoverImage = r.CoverImage
	u.Description = r.Description

	if r.Status != nil {
		status := types.TripStatus(*r.Status)
		if !status.Valid() {
			return u, invalid("无效的行程状态")
		}
		u.Status = &status
	}
	return u, nil
}

func validClock(s *string) bool {
	if s == nil {
		return true
	}
	_, err := time.Parse("15:04", *s)
	return err == nil
}

func (r AddActivityRequest) toActivity() (types.TripActivity, error) {
	title := strings.TrimSpace(r.Title)
	if r.DayNumber <= 0 || title == "" {
		return types.TripActivity{}, invalid("天数和活动标题不能为空")
	}
	activityType := r.ActivityType
	if activityType == "" {
		activityType = "sightseeing"
	}
	if !slices.Contains(types.ActivityTypes, activityType) {
		return types.TripActivity{}, invalid("无效的活动类型")
	}
	if !validClock(r.StartTime) || !validClock(r.EndTime) {
		return types.TripActivity{}, invalid("时间格式应为HH:MM")
	}
	if r.EstimatedCost != nil && *r.EstimatedCost < 0 {
		return types.TripActivity{}, invalid("预计花费不能为负数")
	}
	return types.TripActivity{
		DayNumber:     r.DayNumber,
		Title:         title,
		Description:   r.Description,
		Location:      r.Location,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		EstimatedCost: r.EstimatedCost,
		ActivityType:  activityType,
	}, nil
}
