package callbacks

import (
	"testing"

	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/stretchr/testify/assert"
)

func TestEveryActionIsRouted(t *testing.T) {
	actions := []string{
		callbacktypes.ViewMonth, callbacktypes.ViewDay, callbacktypes.SetTurn,
		callbacktypes.ChooseExaminer, callbacktypes.SetExaminer, callbacktypes.MoveDay,
		callbacktypes.DeleteDay, callbacktypes.ConfirmDeleteDay, callbacktypes.BookOnDay,
		callbacktypes.ViewStudent, callbacktypes.Outcome, callbacktypes.OutcomeSuggested,
		callbacktypes.OutcomeOtherDate, callbacktypes.OutcomeNoDate, callbacktypes.MoveStudent,
		callbacktypes.RemoveStudent, callbacktypes.ConfirmRemoveStudent, callbacktypes.SetFailCount,
		callbacktypes.BookFailCount, callbacktypes.ConfirmDuplicate, callbacktypes.CancelDuplicate,
		callbacktypes.ViewWaiting, callbacktypes.ViewWaitingEntry, callbacktypes.BookWaiting,
		callbacktypes.ConfirmWaitingDuplicate, callbacktypes.RemoveWaiting,
		callbacktypes.ViewExaminers, callbacktypes.ViewExaminer, callbacktypes.AddExaminerNote,
		callbacktypes.DeleteExaminerNote, callbacktypes.RemoveExaminer, callbacktypes.ConfirmRemoveExaminer,
		callbacktypes.RestoreBackup, callbacktypes.ConfirmRestoreBackup, callbacktypes.CancelRestoreBackup,
	}

	for _, action := range actions {
		_, ok := routes[action]
		assert.True(t, ok, "action %q has no handler", action)
	}
	assert.Len(t, routes, len(actions))
}

func TestRouteKeysAreDistinctFromArguments(t *testing.T) {
	// Действие не должно содержать разделитель, иначе ParseData его разрежет
	for action := range routes {
		parsed, args := callbacktypes.ParseData(action)
		assert.Equal(t, action, parsed)
		assert.Empty(t, args)
	}
}
