package callbacktypes

import (
	"strings"
)

// MaxDataLength ограничение Telegram на callback data в байтах
const MaxDataLength = 64

// Действия inline кнопок. Формат данных: action[:arg[:arg]].
const (
	Noop = "noop"

	ViewMonth = "month" // month:2025-06
	ViewDay   = "day"   // day:2025-06-10

	SetTurn          = "turn"      // turn:2025-06-10:M (M, P или - для сброса)
	ChooseExaminer   = "exsel"     // exsel:2025-06-10
	SetExaminer      = "exset"     // exset:2025-06-10:<examiner_id> (- для сброса)
	MoveDay          = "mvday"     // mvday:2025-06-10
	DeleteDay        = "delday"    // delday:2025-06-10
	ConfirmDeleteDay = "delday_ok" // delday_ok:2025-06-10
	BookOnDay        = "bookday"   // bookday:2025-06-10

	ViewStudent          = "stu"      // stu:<booking_id>
	Outcome              = "out"      // out:<booking_id>:P (P, F или A)
	OutcomeSuggested     = "outs"     // outs:<booking_id>:F
	OutcomeOtherDate     = "outo"     // outo:<booking_id>:F
	OutcomeNoDate        = "outn"     // outn:<booking_id>:F
	MoveStudent          = "mvstu"    // mvstu:<booking_id>
	RemoveStudent        = "rmstu"    // rmstu:<booking_id>
	ConfirmRemoveStudent = "rmstu_ok" // rmstu_ok:<booking_id>
	SetFailCount         = "fc"       // fc:<booking_id>:2

	BookFailCount    = "bookfc" // bookfc:2
	ConfirmDuplicate = "dup_ok"
	CancelDuplicate  = "dup_no"

	ViewWaiting             = "wl"
	ViewWaitingEntry        = "wle"    // wle:<entry_id>
	BookWaiting             = "wlbook" // wlbook:<entry_id>:2025-06-10
	ConfirmWaitingDuplicate = "wldup"  // wldup:<entry_id>:2025-06-10
	RemoveWaiting           = "wlrm"   // wlrm:<entry_id>

	ViewExaminers         = "exlist"
	ViewExaminer          = "exam"     // exam:<examiner_id>
	AddExaminerNote       = "exnote"   // exnote:<examiner_id>
	DeleteExaminerNote    = "exnrm"    // exnrm:<note_id>
	RemoveExaminer        = "exrm"     // exrm:<examiner_id>
	ConfirmRemoveExaminer = "exrm_ok"  // exrm_ok:<examiner_id>

	RestoreBackup        = "rst"    // rst:2025-06-10
	ConfirmRestoreBackup = "rst_ok" // rst_ok:2025-06-10
	CancelRestoreBackup  = "rst_no"
)

// Коды результата экзамена в callback data
const (
	OutcomePassed = "P"
	OutcomeFailed = "F"
	OutcomeAbsent = "A"
)

// Коды смены в callback data
const (
	TurnMorning   = "M"
	TurnAfternoon = "P"
	TurnUnset     = "-"
)

// Data собирает callback data из действия и аргументов
func Data(action string, args ...string) string {
	if len(args) == 0 {
		return action
	}
	return action + ":" + strings.Join(args, ":")
}

// ParseData разбирает callback data на действие и аргументы
func ParseData(data string) (string, []string) {
	parts := strings.Split(data, ":")
	return parts[0], parts[1:]
}
