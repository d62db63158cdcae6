package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/Freeeeeet/exam_booking_bot/internal/repository"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"github.com/go-telegram/bot/models"
)

// maxDateButtons сколько ближайших свободных дат предлагать кнопками
const maxDateButtons = 12

// Screen текст сообщения вместе с клавиатурой
type Screen struct {
	Text     string
	Keyboard *models.InlineKeyboardMarkup
}

// BuildMonthScreen список активных дней месяца с заполненностью
func BuildMonthScreen(svc *service.ExamService, month time.Time) Screen {
	month = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	monthKey := calendar.MonthKey(month)
	info := svc.Month(monthKey)
	views := svc.SessionsInMonth(monthKey)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>%s</b>\n\n", formatting.FormatMonth(month))
	if info.Limit > 0 {
		fmt.Fprintf(&sb, "Sessioni: %d/%d\n", info.Active, info.Limit)
	} else {
		fmt.Fprintf(&sb, "Sessioni: %d (nessun limite)\n", info.Active)
	}
	if len(views) == 0 {
		sb.WriteString("\nNessuna sessione in questo mese.\nUsa /day GG/MM/AAAA per aprire un giorno.")
	}

	kb := keyboard.NewBuilder()
	for _, v := range views {
		turn := formatting.GetTurnDisplay(v.Session.Turn)
		label := fmt.Sprintf("%02d %s %s · %d/%d",
			v.Date.Day(), formatting.WeekdayShort(v.Date.Weekday()), turn.Emoji,
			len(v.Session.Students), model.MaxStudentsPerSession)
		kb.Row(keyboard.Button(label, callbacktypes.Data(callbacktypes.ViewDay, v.DateKey)))
	}
	kb.AddMonthPagination(month)

	return Screen{Text: sb.String(), Keyboard: kb.Build()}
}

// BuildDayScreen карточка экзаменационного дня
func BuildDayScreen(svc *service.ExamService, date time.Time) Screen {
	dateKey := calendar.DateKey(date)
	session, active := svc.Session(date)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>%s</b>\n", formatting.FormatDateLong(date))

	kb := keyboard.NewBuilder()
	if !active {
		sb.WriteString("\nNessuna sessione per questa data.\nScegli un turno o prenota un allievo per attivarla.")
		if !svc.IsDateSelectable(date) {
			sb.WriteString("\n\n⚠️ Limite mensile raggiunto")
		}
	} else {
		turn := formatting.GetTurnDisplay(session.Turn)
		fmt.Fprintf(&sb, "%s Turno: %s\n", turn.Emoji, turn.Text)
		if session.ExaminerID != nil {
			if ex, ok := svc.Examiner(*session.ExaminerID); ok {
				fmt.Fprintf(&sb, "👤 Esaminatore: %s\n", formatting.EscapeHTML(ex.Name))
			}
		}
		fmt.Fprintf(&sb, "👥 Allievi: %d/%d\n", len(session.Students), model.MaxStudentsPerSession)
		if len(session.Students) > 0 {
			sb.WriteString("\n")
			for i, s := range session.Students {
				sb.WriteString(formatting.EscapeHTML(formatting.FormatStudent(i, s)))
				sb.WriteString("\n")
			}
		}

		for _, s := range session.Students {
			status := formatting.GetBookingStatusDisplay(s.Status)
			kb.Row(keyboard.Button(status.Emoji+" "+s.Name, callbacktypes.Data(callbacktypes.ViewStudent, s.ID)))
		}
	}

	kb.Row(
		keyboard.Button("🌅 Mattina", callbacktypes.Data(callbacktypes.SetTurn, dateKey, callbacktypes.TurnMorning)),
		keyboard.Button("🌇 Pomeriggio", callbacktypes.Data(callbacktypes.SetTurn, dateKey, callbacktypes.TurnAfternoon)),
	)
	if !active || !session.IsFull() {
		kb.Row(keyboard.Button("➕ Prenota allievo", callbacktypes.Data(callbacktypes.BookOnDay, dateKey)))
	}
	if active {
		kb.Row(
			keyboard.Button("👤 Esaminatore", callbacktypes.Data(callbacktypes.ChooseExaminer, dateKey)),
			keyboard.Button("❔ Turno da definire", callbacktypes.Data(callbacktypes.SetTurn, dateKey, callbacktypes.TurnUnset)),
		)
		kb.Row(
			keyboard.Button("📦 Sposta giorno", callbacktypes.Data(callbacktypes.MoveDay, dateKey)),
			keyboard.DeleteButton(callbacktypes.Data(callbacktypes.DeleteDay, dateKey)),
		)
	}
	kb.Row(keyboard.BackToMonthButton(calendar.MonthKey(date)))

	return Screen{Text: sb.String(), Keyboard: kb.Build()}
}

// BuildDeleteDayScreen подтверждение удаления дня
func BuildDeleteDayScreen(date time.Time, students int) Screen {
	dateKey := calendar.DateKey(date)
	text := fmt.Sprintf("🗑 Eliminare la sessione del <b>%s</b>?\n\nVerranno rimossi %s.",
		formatting.FormatDate(date), formatting.CountStudents(students))
	kb := keyboard.NewBuilder().Row(keyboard.ConfirmCancelRow(
		callbacktypes.Data(callbacktypes.ConfirmDeleteDay, dateKey),
		callbacktypes.Data(callbacktypes.ViewDay, dateKey),
	)...)
	return Screen{Text: text, Keyboard: kb.Build()}
}

// BuildExaminerPickerScreen выбор экзаменатора для дня
func BuildExaminerPickerScreen(svc *service.ExamService, date time.Time) Screen {
	dateKey := calendar.DateKey(date)
	examiners := svc.Examiners()

	text := fmt.Sprintf("👤 Esaminatore per il <b>%s</b>", formatting.FormatDate(date))
	if len(examiners) == 0 {
		text += "\n\nNessun esaminatore. Aggiungine uno con /examineradd &lt;nome&gt;"
	}

	kb := keyboard.NewBuilder()
	for _, ex := range examiners {
		kb.Row(keyboard.Button(ex.Name, callbacktypes.Data(callbacktypes.SetExaminer, dateKey, ex.ID)))
	}
	kb.Row(keyboard.Button("🚫 Nessuno", callbacktypes.Data(callbacktypes.SetExaminer, dateKey, "-")))
	kb.Row(keyboard.BackToDayButton(dateKey))
	return Screen{Text: text, Keyboard: kb.Build()}
}

// BuildStudentScreen карточка записи ученика
func BuildStudentScreen(svc *service.ExamService, bookingID string) (Screen, error) {
	dateKey, student, ok := svc.FindBooking(bookingID)
	if !ok {
		return Screen{}, booking.ErrNotFound
	}
	status := formatting.GetBookingStatusDisplay(student.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 <b>%s</b>\n\n", formatting.EscapeHTML(student.Name))
	if student.Phone != "" {
		fmt.Fprintf(&sb, "📞 %s\n", formatting.EscapeHTML(student.Phone))
	}
	fmt.Fprintf(&sb, "📅 Esame: %s\n", formatting.FormatDateKey(dateKey, svc.Location()))
	fmt.Fprintf(&sb, "%s Stato: %s\n", status.Emoji, status.Text)
	fmt.Fprintf(&sb, "⚠️ Bocciature: %s", formatting.FormatFailCount(student.FailCount))

	kb := keyboard.NewBuilder()
	kb.Row(
		keyboard.Button("✅ Promosso", callbacktypes.Data(callbacktypes.Outcome, bookingID, callbacktypes.OutcomePassed)),
		keyboard.Button("❌ Bocciato", callbacktypes.Data(callbacktypes.Outcome, bookingID, callbacktypes.OutcomeFailed)),
		keyboard.Button("🚫 Assente", callbacktypes.Data(callbacktypes.Outcome, bookingID, callbacktypes.OutcomeAbsent)),
	)
	failRow := make([]models.InlineKeyboardButton, 0, model.MaxFailCount+1)
	for n := 0; n <= model.MaxFailCount; n++ {
		label := fmt.Sprintf("%d", n)
		if n == student.FailCount {
			label = "• " + label + " •"
		}
		failRow = append(failRow, keyboard.Button(label, callbacktypes.Data(callbacktypes.SetFailCount, bookingID, fmt.Sprintf("%d", n))))
	}
	kb.Row(failRow...)
	kb.Row(
		keyboard.Button("📦 Sposta", callbacktypes.Data(callbacktypes.MoveStudent, bookingID)),
		keyboard.Button("🗑 Rimuovi", callbacktypes.Data(callbacktypes.RemoveStudent, bookingID)),
	)
	kb.Row(keyboard.BackToDayButton(dateKey))

	return Screen{Text: sb.String(), Keyboard: kb.Build()}, nil
}

// BuildRemoveStudentScreen подтверждение удаления записи
func BuildRemoveStudentScreen(svc *service.ExamService, bookingID string) (Screen, error) {
	_, student, ok := svc.FindBooking(bookingID)
	if !ok {
		return Screen{}, booking.ErrNotFound
	}
	text := fmt.Sprintf("🗑 Rimuovere <b>%s</b> dalla sessione?", formatting.EscapeHTML(student.Name))
	kb := keyboard.NewBuilder().Row(keyboard.ConfirmCancelRow(
		callbacktypes.Data(callbacktypes.ConfirmRemoveStudent, bookingID),
		callbacktypes.Data(callbacktypes.ViewStudent, bookingID),
	)...)
	return Screen{Text: text, Keyboard: kb.Build()}, nil
}

// BuildOutcomeDateScreen выбор новой даты после неудачи или неявки
func BuildOutcomeDateScreen(svc *service.ExamService, bookingID string, outcome model.BookingStatus) (Screen, error) {
	_, student, ok := svc.FindBooking(bookingID)
	if !ok {
		return Screen{}, booking.ErrNotFound
	}
	code := OutcomeCode(outcome)
	name := formatting.EscapeHTML(student.Name)
	kb := keyboard.NewBuilder()

	if outcome == model.BookingStatusFailed && student.FailCount+1 >= model.MaxFailCount {
		text := fmt.Sprintf("❌ <b>%s</b> è alla terza bocciatura.\n\n"+
			"Verrà spostato nella lista d'attesa e potrà prenotare di nuovo tra un mese.", name)
		kb.Row(keyboard.ConfirmCancelRow(
			callbacktypes.Data(callbacktypes.OutcomeNoDate, bookingID, code),
			callbacktypes.Data(callbacktypes.ViewStudent, bookingID),
		)...)
		return Screen{Text: text, Keyboard: kb.Build()}, nil
	}

	suggested, err := svc.SuggestedDate(bookingID, outcome)
	if err != nil {
		return Screen{}, err
	}

	var text, noDate string
	if outcome == model.BookingStatusFailed {
		text = fmt.Sprintf("❌ <b>%s</b> non ha superato l'esame (%s).\n\nScegli la data del nuovo esame:",
			name, formatting.FormatFailCount(student.FailCount+1))
		noDate = "🚫 Nessuna data (rimuovi)"
	} else {
		text = fmt.Sprintf("🚫 <b>%s</b> era assente.\n\nScegli la data del nuovo esame:", name)
		noDate = "🚫 Nessuna data (lascia com'è)"
	}

	kb.Row(keyboard.Button("📅 "+formatting.FormatDate(suggested)+" (suggerita)",
		callbacktypes.Data(callbacktypes.OutcomeSuggested, bookingID, code)))
	kb.Row(keyboard.Button("🗓 Altra data", callbacktypes.Data(callbacktypes.OutcomeOtherDate, bookingID, code)))
	kb.Row(keyboard.Button(noDate, callbacktypes.Data(callbacktypes.OutcomeNoDate, bookingID, code)))
	kb.Row(keyboard.BackButton(callbacktypes.Data(callbacktypes.ViewStudent, bookingID)))

	return Screen{Text: text, Keyboard: kb.Build()}, nil
}

// BuildWaitingListScreen лист ожидания в порядке добавления
func BuildWaitingListScreen(svc *service.ExamService) Screen {
	list := svc.WaitingList()
	now := svc.Now()

	var sb strings.Builder
	fmt.Fprintf(&sb, "⏳ <b>Lista d'attesa</b> (%d)\n", len(list))
	if len(list) == 0 {
		sb.WriteString("\nLa lista è vuota. Aggiungi con /waitadd")
	}

	kb := keyboard.NewBuilder()
	for _, e := range list {
		label := e.Name
		if !e.IsBookable(now) && e.CanBookAfter != nil {
			label = "🔒 " + label + " (dal " + formatting.FormatDate(*e.CanBookAfter) + ")"
		}
		kb.Row(keyboard.Button(label, callbacktypes.Data(callbacktypes.ViewWaitingEntry, e.ID)))
	}
	return Screen{Text: sb.String(), Keyboard: kb.Build()}
}

// BuildWaitingEntryScreen карточка ученика из листа ожидания с ближайшими свободными датами
func BuildWaitingEntryScreen(svc *service.ExamService, entryID string) (Screen, error) {
	entry, ok := svc.WaitingEntry(entryID)
	if !ok {
		return Screen{}, booking.ErrNotFound
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⏳ <b>%s</b>\n\n", formatting.EscapeHTML(entry.Name))
	if entry.Phone != "" {
		fmt.Fprintf(&sb, "📞 %s\n", formatting.EscapeHTML(entry.Phone))
	}
	fmt.Fprintf(&sb, "➕ In lista dal %s\n", formatting.FormatDate(entry.AddedAt.In(svc.Location())))
	if entry.FailedThreeTimes {
		sb.WriteString("❌ Tre bocciature\n")
	}

	kb := keyboard.NewBuilder()
	if entry.CanBookAfter != nil && !entry.IsBookable(svc.Now()) {
		fmt.Fprintf(&sb, "🔒 Prenotabile dal %s\n", formatting.FormatDate(entry.CanBookAfter.In(svc.Location())))
	} else {
		dates := svc.AvailableDates()
		if len(dates) == 0 {
			sb.WriteString("\nNessuna data disponibile. Apri un giorno con /day")
		} else {
			sb.WriteString("\nScegli una data:")
		}
		if len(dates) > maxDateButtons {
			dates = dates[:maxDateButtons]
		}
		buttons := make([]models.InlineKeyboardButton, 0, len(dates))
		for _, v := range dates {
			label := fmt.Sprintf("%s %s (%d)", formatting.WeekdayShort(v.Date.Weekday()),
				v.Date.Format("02/01"), v.Session.FreeSeats())
			buttons = append(buttons, keyboard.Button(label, callbacktypes.Data(callbacktypes.BookWaiting, entryID, v.DateKey)))
		}
		kb.Grid(3, buttons...)
	}
	kb.Row(keyboard.DeleteButton(callbacktypes.Data(callbacktypes.RemoveWaiting, entryID)))
	kb.AddBackButton(callbacktypes.ViewWaiting)

	return Screen{Text: sb.String(), Keyboard: kb.Build()}, nil
}

// BuildDuplicateScreen предупреждение о возможном дубликате
func BuildDuplicateScreen(loc *time.Location, dup *booking.DuplicateError, confirmData, cancelData string) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠️ <b>%s</b> risulta già prenotato:\n\n", formatting.EscapeHTML(dup.Name))
	for _, m := range dup.Matches {
		fmt.Fprintf(&sb, "• %s il %s\n", formatting.EscapeHTML(m.Name), formatting.FormatDateKey(m.DateKey, loc))
	}
	sb.WriteString("\nProcedere comunque?")

	kb := keyboard.NewBuilder().Row(keyboard.ConfirmCancelRow(confirmData, cancelData)...)
	return Screen{Text: sb.String(), Keyboard: kb.Build()}
}

// BuildExaminersScreen список экзаменаторов
func BuildExaminersScreen(svc *service.ExamService) Screen {
	examiners := svc.Examiners()

	text := fmt.Sprintf("👤 <b>Esaminatori</b> (%d)\n\nAggiungi con /examineradd &lt;nome&gt;", len(examiners))
	kb := keyboard.NewBuilder()
	for _, ex := range examiners {
		label := ex.Name
		if n := len(ex.Notes); n > 0 {
			label += fmt.Sprintf(" 📝%d", n)
		}
		kb.Row(keyboard.Button(label, callbacktypes.Data(callbacktypes.ViewExaminer, ex.ID)))
	}
	return Screen{Text: text, Keyboard: kb.Build()}
}

// BuildExaminerScreen карточка экзаменатора с заметками
func BuildExaminerScreen(svc *service.ExamService, examinerID string) (Screen, error) {
	ex, ok := svc.Examiner(examinerID)
	if !ok {
		return Screen{}, booking.ErrNotFound
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 <b>%s</b>\n", formatting.EscapeHTML(ex.Name))
	if len(ex.Notes) == 0 {
		sb.WriteString("\nNessuna nota.")
	}

	kb := keyboard.NewBuilder()
	for i, note := range ex.Notes {
		fmt.Fprintf(&sb, "\n%d. %s <i>(%s)</i>", i+1, formatting.EscapeHTML(note.Text),
			formatting.FormatDate(note.CreatedAt.In(svc.Location())))
		kb.Row(keyboard.Button(fmt.Sprintf("🗑 Nota %d", i+1), callbacktypes.Data(callbacktypes.DeleteExaminerNote, note.ID)))
	}
	kb.Row(
		keyboard.Button("📝 Aggiungi nota", callbacktypes.Data(callbacktypes.AddExaminerNote, ex.ID)),
		keyboard.DeleteButton(callbacktypes.Data(callbacktypes.RemoveExaminer, ex.ID)),
	)
	kb.AddBackButton(callbacktypes.ViewExaminers)

	return Screen{Text: sb.String(), Keyboard: kb.Build()}, nil
}

// BuildBackupsScreen ежедневные копии, доступные для восстановления
func BuildBackupsScreen(backups []repository.BackupInfo, loc *time.Location) Screen {
	text := "💾 <b>Backup</b>\n\nIl file JSON con i dati attuali è qui sopra.\n" +
		"Per ripristinare da file usa /restore."
	kb := keyboard.NewBuilder()
	if len(backups) > 0 {
		text += "\n\nBackup automatici disponibili:"
	}
	for _, info := range backups {
		kb.Row(keyboard.Button("♻️ "+formatting.FormatDateKey(info.Day, loc),
			callbacktypes.Data(callbacktypes.RestoreBackup, info.Day)))
	}
	return Screen{Text: text, Keyboard: kb.Build()}
}
