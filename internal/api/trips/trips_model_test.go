package trips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

func ptr[T any](v T) *T { return &v }

func TestCreateTripRequest_toTrip(t *testing.T) {
	valid := CreateTripRequest{Title: " 北京三日游 ", Destination: "北京", StartDate: "2025-06-01", EndDate: "2025-06-03", Budget: ptr(3000.0)}

	trip, err := valid.toTrip()
	require.NoError(t, err)
	assert.Equal(t, "北京三日游", trip.Title)
	assert.Equal(t, types.TripPlanned, trip.Status)
	assert.Equal(t, "2025-06-03", trip.EndDate.Format(types.DateLayout))

	cases := []struct {
		name   string
		mutate func(*CreateTripRequest)
		msg    string
	}{
		{"missing title", func(r *CreateTripRequest) { r.Title = "  " }, "标题、目的地、开始日期和结束日期不能为空"},
		{"missing destination", func(r *CreateTripRequest) { r.Destination = "" }, "标题、目的地、开始日期和结束日期不能为空"},
		{"missing end date", func(r *CreateTripRequest) { r.EndDate = "" }, "标题、目的地、开始日期和结束日期不能为空"},
		{"bad date", func(r *CreateTripRequest) { r.StartDate = "2025/06/01" }, "日期格式应为YYYY-MM-DD"},
		{"inverted range", func(r *CreateTripRequest) { r.EndDate = "2025-05-30" }, "结束日期不能早于开始日期"},
		{"negative budget", func(r *CreateTripRequest) { r.Budget = ptr(-1.0) }, "预算不能为负数"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := req.toTrip()
			require.ErrorIs(t, err, ErrInvalidInput)
			msg, ok := Message(err)
			require.True(t, ok)
			assert.Equal(t, tc.msg, msg)
		})
	}
}

func TestUpdateTripRequest_toUpdate(t *testing.T) {
	start, _ := types.ParseDate("2025-06-01")
	end, _ := types.ParseDate("2025-06-03")
	current := &types.Trip{StartDate: start, EndDate: end, Status: types.TripPlanned}

	t.Run("status only", func(t *testing.T) {
		u, err := UpdateTripRequest{Status: ptr("ongoing")}.toUpdate(current)
		require.NoError(t, err)
		require.NotNil(t, u.Status)
		assert.Equal(t, types.TripOngoing, *u.Status)
		assert.Nil(t, u.Title)
	})

	t.Run("end date before stored start", func(t *testing.T) {
		_, err := UpdateTripRequest{EndDate: ptr("2025-05-01")}.toUpdate(current)
		msg, _ := Message(err)
		assert.Equal(t, "结束日期不能早于开始日期", msg)
	})

	t.Run("moving both dates", func(t *testing.T) {
		u, err := UpdateTripRequest{StartDate: ptr("2025-07-01"), EndDate: ptr("2025-07-05")}.toUpdate(current)
		require.NoError(t, err)
		assert.Equal(t, "2025-07-01", u.StartDate.Format(types.DateLayout))
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := UpdateTripRequest{Status: ptr("archived")}.toUpdate(current)
		msg, _ := Message(err)
		assert.Equal(t, "无效的行程状态", msg)
	})

	t.Run("blank title", func(t *testing.T) {
		_, err := UpdateTripRequest{Title: ptr(" ")}.toUpdate(current)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAddActivityRequest_toActivity(t *testing.T) {
	a, err := AddActivityRequest{DayNumber: 1, Title: "参观故宫博物院", StartTime: ptr("09:00")}.toActivity()
	require.NoError(t, err)
	assert.Equal(t, "sightseeing", a.ActivityType)

	cases := []struct {
		name string
		req  AddActivityRequest
		msg  string
	}{
		{"zero day", AddActivityRequest{Title: "故宫"}, "天数和活动标题不能为空"},
		{"no title", AddActivityRequest{DayNumber: 2}, "天数和活动标题不能为空"},
		{"unknown type", AddActivityRequest{DayNumber: 1, Title: "故宫", ActivityType: "hiking"}, "无效的活动类型"},
		{"bad time", AddActivityRequest{DayNumber: 1, Title: "故宫", EndTime: ptr("25:00")}, "时间格式应为HH:MM"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.req.toActivity()
			msg, ok := Message(err)
			require.True(t, ok)
			assert.Equal(t, tc.msg, msg)
		})
	}
}
