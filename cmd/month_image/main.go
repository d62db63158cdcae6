package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
)

// Рисует календарь текущего месяца на тестовых данных
func main() {
	now := time.Now()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	engine := booking.New(model.NewSnapshot(), booking.WithLocation(now.Location()))

	// Несколько дней с разной заполненностью
	fill := map[int]int{3: 1, 8: 4, 12: model.MaxStudentsPerSession, 19: 2, 25: 6}
	for day, students := range fill {
		if day > calendar.DaysIn(month.Year(), month.Month()) {
			continue
		}
		date := calendar.AddDays(month, day-1)
		for i := 0; i < students; i++ {
			_, err := engine.Book(booking.BookRequest{
				Name:      fmt.Sprintf("Allievo %d-%d", day, i+1),
				Date:      date,
				Confirmed: true,
			})
			if err != nil {
				fmt.Printf("Ошибка записи на %s: %v\n", calendar.DateKey(date), err)
				os.Exit(1)
			}
		}
	}
	if err := engine.SetTurn(calendar.AddDays(month, 14), model.TurnMorning); err != nil {
		fmt.Printf("Ошибка смены: %v\n", err)
		os.Exit(1)
	}

	monthKey := calendar.MonthKey(month)
	imageData, err := common.GenerateMonthImage(common.MonthImageData{
		Month:    month,
		Today:    calendar.Day(now),
		Sessions: engine.SessionsInMonth(monthKey),
		Limit:    8,
	})
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	filename := "mese-" + monthKey + ".png"
	if err := os.WriteFile(filename, imageData, 0644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение успешно сохранено в %s\n", filename)
	fmt.Printf("📊 Дней: %d\n", len(engine.SessionsInMonth(monthKey)))
}
