package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxBackupBody верхняя граница тела POST /api/backup
const maxBackupBody = 10 << 20

type dayResponse struct {
	Date       string  `json:"date"`
	Turn       string  `json:"turn"`
	ExaminerID *string `json:"examinerId,omitempty"`
	Students   int     `json:"students"`
	Full       bool    `json:"full"`
}

type monthResponse struct {
	Month      string        `json:"month"`
	Limit      int           `json:"limit"`
	Active     int           `json:"active"`
	Selectable []string      `json:"selectable"`
	Days       []dayResponse `json:"days"`
}

type limitRequest struct {
	Limit *int `json:"limit" binding:"required"`
}

type examinerStatResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sessions int    `json:"sessions"`
}

type statsResponse struct {
	Year            int                    `json:"year"`
	Sessions        int                    `json:"sessions"`
	Students        int                    `json:"students"`
	SessionsByMonth [12]int                `json:"sessionsByMonth"`
	Examiners       []examinerStatResponse `json:"examiners"`
	WaitingList     int                    `json:"waitingList"`
	Frozen          int                    `json:"frozen"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": s.svc.Now()})
}

func (s *Server) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Snapshot())
}

func (s *Server) exportBackup(c *gin.Context) {
	payload, err := s.svc.Export(c.Request.Context())
	if err != nil {
		s.respondError(c, err, "export_backup")
		return
	}

	name := fmt.Sprintf("esami-guida-%s.json", calendar.DateKey(s.svc.Today()))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/json", payload)
}

func (s *Server) importBackup(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBackupBody+1))
	if err != nil {
		s.respondError(c, fmt.Errorf("read body: %w", err), "import_backup")
		return
	}
	if len(body) > maxBackupBody {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "backup too large"})
		return
	}

	decoded, err := s.svc.Import(c.Request.Context(), body)
	if err != nil {
		s.respondError(c, err, "import_backup")
		return
	}

	s.logger.Info("Backup imported over HTTP", zap.Int("version", decoded.Version), zap.String("ip", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{
		"version":     decoded.Version,
		"sessions":    len(decoded.Snapshot.Sessions),
		"waitingList": len(decoded.Snapshot.WaitingList),
		"examiners":   len(decoded.Snapshot.Examiners),
	})
}

func (s *Server) month(c *gin.Context) {
	monthKey := c.Param("month")
	start, err := calendar.ParseMonthKey(monthKey, s.svc.Location())
	if err != nil {
		s.respondError(c, err, "month")
		return
	}

	info := s.svc.Month(monthKey)
	resp := monthResponse{
		Month:      monthKey,
		Limit:      info.Limit,
		Active:     info.Active,
		Selectable: []string{},
		Days:       []dayResponse{},
	}

	for d := 0; d < calendar.DaysIn(start.Year(), start.Month()); d++ {
		date := calendar.AddDays(start, d)
		if s.svc.IsDateSelectable(date) {
			resp.Selectable = append(resp.Selectable, calendar.DateKey(date))
		}
	}
	for _, view := range s.svc.SessionsInMonth(monthKey) {
		resp.Days = append(resp.Days, dayResponse{
			Date:       view.DateKey,
			Turn:       string(view.Session.Turn),
			ExaminerID: view.Session.ExaminerID,
			Students:   len(view.Session.Students),
			Full:       view.Session.IsFull(),
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) setMonthLimit(c *gin.Context) {
	var req limitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	monthKey := c.Param("month")
	if err := s.svc.SetMonthlyLimit(c.Request.Context(), monthKey, *req.Limit); err != nil {
		s.respondError(c, err, "set_month_limit")
		return
	}

	info := s.svc.Month(monthKey)
	c.JSON(http.StatusOK, gin.H{"month": monthKey, "limit": info.Limit, "active": info.Active})
}

func (s *Server) waitingList(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.WaitingList())
}

func (s *Server) stats(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}

	c.JSON(http.StatusOK, toStatsResponse(s.svc.Stats(year)))
}

func toStatsResponse(stats booking.Stats) statsResponse {
	resp := statsResponse{
		Year:            stats.Year,
		Sessions:        stats.Sessions,
		Students:        stats.Students,
		SessionsByMonth: stats.SessionsByMonth,
		Examiners:       make([]examinerStatResponse, 0, len(stats.Examiners)),
		WaitingList:     stats.WaitingList,
		Frozen:          stats.Frozen,
	}
	for _, ex := range stats.Examiners {
		resp.Examiners = append(resp.Examiners, examinerStatResponse{
			ID:       ex.ExaminerID,
			Name:     ex.Name,
			Sessions: ex.Sessions,
		})
	}
	return resp
}
