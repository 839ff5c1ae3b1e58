package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogEntry_ToFields_OmitsAbsentOptionals(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	e := &LogEntry{
		AdminID:      "a1",
		AdminEmail:   "admin@academy.test",
		Action:       ActionCreate,
		Collection:   ClassesCollection,
		DocumentID:   "c1",
		ChangesAfter: Fields{"name": "Class 41", "seats": nil},
		Status:       StatusSuccess,
		ErrorMessage: "ignored on success",
		Timestamp:    ts,
	}

	f := e.ToFields()

	assert.NotContains(t, f, LogFieldChangesBefore)
	assert.NotContains(t, f, LogFieldDocumentTitle)
	assert.NotContains(t, f, LogFieldErrorMessage)
	assert.Equal(t, map[string]interface{}{"name": "Class 41"}, f[LogFieldChangesAfter])
	assert.Equal(t, "create", f[LogFieldAction])
	assert.Equal(t, "success", f[LogFieldStatus])
	assert.Equal(t, ts, f[LogFieldTimestamp])
}

func TestLogEntry_ToFields_ErrorCarriesMessage(t *testing.T) {
	e := &LogEntry{Action: ActionDelete, Collection: PricingCollection, Status: StatusError, ErrorMessage: "boom"}
	f := e.ToFields()
	assert.Equal(t, "boom", f[LogFieldErrorMessage])
	assert.NotContains(t, f, LogFieldDocumentID)
	assert.Equal(t, ServerTimestamp, f[LogFieldTimestamp])
}

func TestFields_ResolveServerTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f := Fields{"a": ServerTimestamp, "b": 1, "c": ServerTimestamp}

	assert.Equal(t, []string{"a", "c"}, f.ServerTimeKeys())

	resolved := f.ResolveServerTime(now)
	assert.Equal(t, Fields{"a": now, "b": 1, "c": now}, resolved)
	assert.Equal(t, ServerTimestamp, f["a"])
}

func TestLogEntryFromRecord(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	r := ReconstructRecord("log1", LogsCollection, Fields{
		LogFieldAdminID:       "a1",
		LogFieldAction:        "update",
		LogFieldCollection:    "faq",
		LogFieldStatus:        "success",
		LogFieldTimestamp:     ts,
		LogFieldChangesBefore: map[string]interface{}{"order": 1},
	}, ts, ts)

	e := LogEntryFromRecord(r)

	assert.Equal(t, "log1", e.ID)
	assert.Equal(t, ActionUpdate, e.Action)
	assert.Equal(t, Fields{"order": 1}, e.ChangesBefore)
	assert.Nil(t, e.ChangesAfter)
	assert.Equal(t, ts, e.Timestamp)
}
