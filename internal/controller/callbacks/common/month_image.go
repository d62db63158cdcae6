package common

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleDefault FontStyle = "" // Regular
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	imageWidth      = 1400
	imageHeight     = 1000
	headerHeight    = 110
	weekdayHeight   = 50
	legendHeight    = 70
	gridPadding     = 20
	cellPadding     = 6
	cellRadius      = 10.0
	shadowOffset    = 3.0
	totalDaysInWeek = 7
	maxWeekRows     = 6
)

// Константы шрифтов
const (
	titleFontSize    = 40.0
	subtitleFontSize = 22.0
	weekdayFontSize  = 22.0
	dayFontSize      = 30.0
	countFontSize    = 26.0
	turnFontSize     = 18.0
	legendFontSize   = 18.0
)

// Цветовая схема
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 230}
	mutedTextColor = color.RGBA{150, 155, 160, 220}
	todayBorder    = color.NRGBA{255, 99, 71, 255}

	cellEmptyColor   = color.RGBA{255, 255, 255, 255}
	cellBlockedColor = color.RGBA{225, 225, 228, 255} // Лимит месяца исчерпан
	cellFreeColor    = color.RGBA{133, 193, 85, 220}
	cellPartialColor = color.RGBA{255, 206, 84, 230}
	cellFullColor    = color.RGBA{255, 140, 150, 255}
	cellShadowColor  = color.RGBA{0, 0, 0, 20}
	cellTextColor    = color.RGBA{20, 24, 28, 230}
)

// MonthImageData всё, что нужно для картинки месяца
type MonthImageData struct {
	Month    time.Time // Любой день месяца
	Today    time.Time
	Sessions []booking.SessionView
	Limit    int // 0 - без лимита
}

type fontCache struct {
	mu    sync.Mutex
	fonts map[FontStyle]*opentype.Font
}

var cachedFonts = fontCache{fonts: make(map[FontStyle]*opentype.Font)}

func (c *fontCache) get(style FontStyle) (*opentype.Font, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.fonts[style]; ok {
		return f, nil
	}
	data := goregular.TTF
	if style == FontStyleBold {
		data = gobold.TTF
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	c.fonts[style] = f
	return f, nil
}

// loadFont загружает шрифт указанного стиля или использует basicfont как fallback
func loadFont(dc *gg.Context, size float64, style ...FontStyle) {
	fontStyle := FontStyleDefault
	if len(style) > 0 {
		fontStyle = style[0]
	}

	parsed, err := cachedFonts.get(fontStyle)
	if err == nil {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// GenerateMonthImage рисует календарь месяца с заполненностью экзаменационных дней
func GenerateMonthImage(data MonthImageData) ([]byte, error) {
	first := time.Date(data.Month.Year(), data.Month.Month(), 1, 0, 0, 0, 0, data.Month.Location())
	byKey := make(map[string]model.ExamSession, len(data.Sessions))
	for _, v := range data.Sessions {
		byKey[v.DateKey] = v.Session
	}
	limitReached := data.Limit > 0 && len(data.Sessions) >= data.Limit

	dc := createCanvas()
	drawHeader(dc, first, len(data.Sessions), data.Limit)

	cellWidth := float64(imageWidth-2*gridPadding) / totalDaysInWeek
	gridTop := float64(headerHeight + weekdayHeight)
	cellHeight := (float64(imageHeight) - gridTop - legendHeight - gridPadding) / maxWeekRows

	drawWeekdays(dc, cellWidth)

	offset := mondayOffset(first.Weekday())
	days := calendar.DaysIn(first.Year(), first.Month())
	for day := 1; day <= days; day++ {
		slot := offset + day - 1
		x := float64(gridPadding) + float64(slot%totalDaysInWeek)*cellWidth
		y := gridTop + float64(slot/totalDaysInWeek)*cellHeight

		date := time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, first.Location())
		session, active := byKey[calendar.DateKey(date)]
		isToday := calendar.DateKey(date) == calendar.DateKey(data.Today)
		drawDayCell(dc, x, y, cellWidth, cellHeight, day, session, active, limitReached, isToday)
	}

	drawLegend(dc)
	return encodeImage(dc)
}

// mondayOffset позиция первого дня месяца в неделе, начинающейся с понедельника
func mondayOffset(weekday time.Weekday) int {
	return (int(weekday) + 6) % 7
}

func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

// drawHeader название месяца и счётчик сессий
func drawHeader(dc *gg.Context, month time.Time, active, limit int) {
	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(formatting.FormatMonth(month), float64(imageWidth)/2, float64(headerHeight)*0.4, 0.5, 0.5)

	subtitle := fmt.Sprintf("Sessioni: %d", active)
	if limit > 0 {
		subtitle = fmt.Sprintf("Sessioni: %d/%d", active, limit)
	}
	loadFont(dc, subtitleFontSize)
	dc.SetColor(mutedTextColor)
	dc.DrawStringAnchored(subtitle, float64(imageWidth)/2, float64(headerHeight)*0.8, 0.5, 0.5)
}

func drawWeekdays(dc *gg.Context, cellWidth float64) {
	loadFont(dc, weekdayFontSize, FontStyleBold)
	dc.SetColor(mutedTextColor)
	for i := 0; i < totalDaysInWeek; i++ {
		weekday := time.Weekday((i + 1) % 7)
		x := float64(gridPadding) + float64(i)*cellWidth + cellWidth/2
		dc.DrawStringAnchored(formatting.WeekdayShort(weekday), x, float64(headerHeight)+weekdayHeight/2, 0.5, 0.5)
	}
}

// drawDayCell рисует одну клетку календаря
func drawDayCell(dc *gg.Context, x, y, w, h float64, day int, session model.ExamSession, active, limitReached, isToday bool) {
	cx, cy := x+cellPadding, y+cellPadding
	cw, ch := w-2*cellPadding, h-2*cellPadding

	fill := cellColor(session, active, limitReached)

	// Тень
	dc.SetColor(cellShadowColor)
	dc.DrawRoundedRectangle(cx+shadowOffset, cy+shadowOffset, cw, ch, cellRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(cx, cy, cw, ch, cellRadius)
	dc.Fill()

	if isToday {
		dc.SetColor(todayBorder)
		dc.SetLineWidth(4)
	} else {
		dc.SetColor(darkenColor(fill, 0.85))
		dc.SetLineWidth(1)
	}
	dc.DrawRoundedRectangle(cx, cy, cw, ch, cellRadius)
	dc.Stroke()

	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(cellTextColor)
	dc.DrawStringAnchored(fmt.Sprintf("%d", day), cx+12, cy+12, 0, 1)

	if !active {
		return
	}

	loadFont(dc, countFontSize, FontStyleBold)
	dc.DrawStringAnchored(fmt.Sprintf("%d/%d", len(session.Students), model.MaxStudentsPerSession),
		cx+cw/2, cy+ch*0.6, 0.5, 0.5)

	if session.Turn != model.TurnUnset {
		loadFont(dc, turnFontSize)
		dc.DrawStringAnchored(formatting.GetTurnDisplay(session.Turn).Text, cx+cw/2, cy+ch-14, 0.5, 0)
	}
}

// cellColor цвет клетки по заполненности
func cellColor(session model.ExamSession, active, limitReached bool) color.RGBA {
	switch {
	case !active && limitReached:
		return cellBlockedColor
	case !active:
		return cellEmptyColor
	case session.IsFull():
		return cellFullColor
	case len(session.Students) > 0:
		return cellPartialColor
	default:
		return cellFreeColor
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawLegend рисует легенду внизу
func drawLegend(dc *gg.Context) {
	items := []struct {
		Label string
		Clr   color.Color
	}{
		{"Posti liberi", cellFreeColor},
		{"Parziale", cellPartialColor},
		{"Completo", cellFullColor},
		{"Limite mensile", cellBlockedColor},
	}

	boxW, boxH := 26.0, 18.0
	x := float64(gridPadding) + 10
	y := float64(imageHeight) - legendHeight/2 - boxH/2

	loadFont(dc, legendFontSize)
	for _, item := range items {
		dc.SetColor(item.Clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(textColor)
		dc.DrawStringAnchored(item.Label, x+boxW+8, y+boxH/2, 0, 0.35)
		w, _ := dc.MeasureString(item.Label)
		x += boxW + 8 + w + 40
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
