package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Запись ученика
	StateBookName      UserState = "book_name"
	StateBookPhone     UserState = "book_phone"
	StateBookDate      UserState = "book_date"
	StateBookFailCount UserState = "book_fail_count" // Ждём нажатия кнопки 0-3
	StateBookDuplicate UserState = "book_duplicate"  // Ждём подтверждения дубликата

	// Лист ожидания
	StateWaitingName  UserState = "waiting_name"
	StateWaitingPhone UserState = "waiting_phone"

	// Ввод новой даты
	StateMoveStudentDate UserState = "move_student_date"
	StateMoveSessionDate UserState = "move_session_date"
	StateOutcomeDate     UserState = "outcome_date"

	// Экзаменаторы
	StateExaminerName UserState = "examiner_name"
	StateExaminerNote UserState = "examiner_note"

	StateSearch      UserState = "search"
	StateRestoreFile UserState = "restore_file" // Ждём JSON документ
)

// Ключи временных данных диалога
const (
	KeyName       = "name"
	KeyPhone      = "phone"
	KeyDate       = "date"
	KeyFailCount  = "fail_count"
	KeyBookingID  = "booking_id"
	KeyOutcome    = "outcome"
	KeyExaminerID = "examiner_id"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]interface{} // Временные данные для текущего диалога
}
