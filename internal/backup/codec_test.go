package backup

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWritesCurrentVersion(t *testing.T) {
	examiner := "ex-1"
	snap := model.NewSnapshot()
	snap.Sessions["2025-06-10"] = &model.ExamSession{
		Turn:       model.TurnMorning,
		ExaminerID: &examiner,
		Students: []model.StudentBooking{
			{ID: "a", Name: "Mario", Status: model.BookingStatusScheduled, FailCount: 1},
		},
	}
	snap.Sessions["2025-06-11"] = &model.ExamSession{
		Students: []model.StudentBooking{{ID: "b", Name: "Luca", Status: model.BookingStatusAbsent}},
	}
	snap.MonthlyLimits["2025-06"] = 4
	exportedAt := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	data, err := Encode(snap, exportedAt)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, 3, raw["version"])
	assert.Equal(t, "2025-06-01T10:00:00Z", raw["exportedAt"])
	assert.Equal(t, []any{}, raw["waitingList"])

	sessions := raw["sessions"].(map[string]any)
	morning := sessions["2025-06-10"].(map[string]any)
	assert.Equal(t, "MATTINA", morning["turn"])
	assert.Equal(t, "ex-1", morning["examinerId"])
	assert.Nil(t, sessions["2025-06-11"].(map[string]any)["turn"])

	student := morning["students"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 1, student["failCount"])
	assert.Equal(t, "SCHEDULED", student["status"])
}

func TestEncodeDecodePreservesSnapshot(t *testing.T) {
	until := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	snap := model.NewSnapshot()
	snap.Sessions["2025-06-10"] = &model.ExamSession{
		Turn:     model.TurnAfternoon,
		Students: []model.StudentBooking{{ID: "a", Name: "Mario", Phone: "333", Status: model.BookingStatusFailed, FailCount: 2}},
	}
	snap.WaitingList = []model.WaitingListEntry{{
		ID: "w", Name: "Anna", AddedAt: time.Date(2025, time.June, 1, 8, 30, 0, 0, time.UTC),
		CanBookAfter: &until, FailedThreeTimes: true,
	}}
	snap.Examiners = []model.Examiner{{ID: "e", Name: "Ferri", Notes: []model.ExaminerNote{
		{ID: "n", Text: "puntuale", CreatedAt: time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)},
	}}}
	snap.MonthlyLimits["2025-06"] = 5

	data, err := Encode(snap, time.Now())
	require.NoError(t, err)

	decoded, err := Decode(data, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.Version)
	assert.True(t, decoded.HasWaitingList)
	assert.True(t, decoded.HasExaminers)
	assert.True(t, decoded.HasMonthlyLimits)
	assert.Equal(t, snap, decoded.Snapshot)
}

func TestDecodeVersion1(t *testing.T) {
	data := []byte(`{
		"2025-03-04": {"turn": "MATTINA", "students": [{"id": "1", "name": "Mario"}]},
		"2025-03-05": {"turn": null, "students": []}
	}`)

	decoded, err := Decode(data, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.Version)
	assert.False(t, decoded.HasWaitingList)
	assert.False(t, decoded.HasExaminers)

	require.Len(t, decoded.Snapshot.Sessions, 1, "inactive days are dropped")
	student := decoded.Snapshot.Sessions["2025-03-04"].Students[0]
	assert.Equal(t, model.BookingStatusScheduled, student.Status)
	assert.Equal(t, 0, student.FailCount)
}

func TestDecodeVersion2(t *testing.T) {
	data := []byte(`{
		"version": 2,
		"sessions": {"2025-03-04": {"turn": null, "students": [{"name": "Mario", "status": "ABSENT"}]}},
		"waitingList": [{"id": "w1", "name": "Anna", "addedAt": "2025-02-01T09:00:00.000Z", "canBookAfter": "2025-04-01"}],
		"examiners": [{"id": "e", "name": "ignored before v3"}]
	}`)

	decoded, err := Decode(data, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Version)
	assert.True(t, decoded.HasWaitingList)
	assert.False(t, decoded.HasExaminers)

	student := decoded.Snapshot.Sessions["2025-03-04"].Students[0]
	assert.NotEmpty(t, student.ID, "missing ids are generated")
	assert.Equal(t, model.BookingStatusAbsent, student.Status)

	require.Len(t, decoded.Snapshot.WaitingList, 1)
	entry := decoded.Snapshot.WaitingList[0]
	assert.Equal(t, time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC), entry.AddedAt)
	require.NotNil(t, entry.CanBookAfter)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), *entry.CanBookAfter)
}

func TestDecodeRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{"version": 3,`},
		{name: "array root", data: `[]`},
		{name: "bad date key", data: `{"version": 3, "sessions": {"2025-3-4": {"turn": "MATTINA", "students": []}}}`},
		{name: "unknown turn", data: `{"version": 3, "sessions": {"2025-03-04": {"turn": "SERA", "students": []}}}`},
		{name: "too many students", data: `{"version": 3, "sessions": {"2025-03-04": {"turn": null, "students": [
			{"name": "a"}, {"name": "b"}, {"name": "c"}, {"name": "d"}, {"name": "e"}, {"name": "f"}, {"name": "g"}, {"name": "h"}]}}}`},
		{name: "empty name", data: `{"version": 3, "sessions": {"2025-03-04": {"turn": null, "students": [{"name": " "}]}}}`},
		{name: "fail count", data: `{"version": 3, "sessions": {"2025-03-04": {"turn": null, "students": [{"name": "a", "failCount": 4}]}}}`},
		{name: "unknown status", data: `{"version": 3, "sessions": {"2025-03-04": {"turn": null, "students": [{"name": "a", "status": "LOST"}]}}}`},
		{name: "duplicate ids", data: `{"version": 3, "sessions": {
			"2025-03-04": {"turn": null, "students": [{"id": "x", "name": "a"}]},
			"2025-03-05": {"turn": null, "students": [{"id": "x", "name": "b"}]}}}`},
		{name: "waiting without name", data: `{"version": 3, "sessions": {}, "waitingList": [{"id": "w"}]}`},
		{name: "bad limit month", data: `{"version": 3, "sessions": {}, "monthlyLimits": {"2025-13": 2}}`},
		{name: "negative limit", data: `{"version": 3, "sessions": {}, "monthlyLimits": {"2025-03": -2}}`},
		{name: "future version", data: `{"version": 9, "sessions": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := Decode([]byte(tt.data), time.UTC)
			require.ErrorIs(t, err, ErrInvalidBackup)
			assert.Equal(t, Decoded{}, decoded)
		})
	}
}

func TestDecodeReplacesOverlongIDs(t *testing.T) {
	longExaminer := "examiner-imported-from-a-very-old-browser-export"
	longBooking := "1718000000000-abcdefghijklmnopqrstuvwxyz-0123456789"
	payload := `{
		"version": 3,
		"sessions": {
			"2025-06-10": {
				"turn": "MATTINA",
				"examinerId": "` + longExaminer + `",
				"students": [{"id": "` + longBooking + `", "name": "Mario"}]
			}
		},
		"waitingList": [],
		"examiners": [{"id": "` + longExaminer + `", "name": "Bianchi"}]
	}`

	decoded, err := Decode([]byte(payload), time.UTC)
	require.NoError(t, err)

	session := decoded.Snapshot.Sessions["2025-06-10"]
	require.NotNil(t, session)
	bookingID := session.Students[0].ID
	assert.NotEqual(t, longBooking, bookingID)
	assert.LessOrEqual(t, len(bookingID), MaxIDLength)

	require.Len(t, decoded.Snapshot.Examiners, 1)
	newExaminer := decoded.Snapshot.Examiners[0].ID
	assert.LessOrEqual(t, len(newExaminer), MaxIDLength)
	require.NotNil(t, session.ExaminerID)
	assert.Equal(t, newExaminer, *session.ExaminerID)
}
