package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	attendancedomain "github.com/plantpulse/plantpulse/internal/attendance/domain"
	downtimedomain "github.com/plantpulse/plantpulse/internal/downtime/domain"
	productiondomain "github.com/plantpulse/plantpulse/internal/production/domain"
	qualitydomain "github.com/plantpulse/plantpulse/internal/quality/domain"
	"github.com/shopspring/decimal"
)

// -------- Production --------

type createProductionEntryRequest struct {
	WorkOrderID   string          `json:"work_order_id"`
	ShiftDate     time.Time       `json:"shift_date"`
	Operator      string          `json:"operator"`
	UnitsProduced decimal.Decimal `json:"units_produced"`
	UnitsGood     decimal.Decimal `json:"units_good"`
	UnitsScrap    decimal.Decimal `json:"units_scrap"`
	RunHours      float64         `json:"run_hours"`
}

func (s *Server) CreateProductionEntry(c *gin.Context) {
	var req createProductionEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productionSvc.Create(c.Request.Context(), productiondomain.CreateEntryRequest{
		WorkOrderID:   strings.TrimSpace(req.WorkOrderID),
		ShiftDate:     req.ShiftDate,
		Operator:      strings.TrimSpace(req.Operator),
		UnitsProduced: req.UnitsProduced,
		UnitsGood:     req.UnitsGood,
		UnitsScrap:    req.UnitsScrap,
		RunHours:      req.RunHours,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.Record(c.Request.Context(), "production_entry.create", "production_entry", &targetID, map[string]any{
			"work_order_id": resp.WorkOrderID.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProductionEntries(c *gin.Context) {
	req, err := bindEntryListQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.productionSvc.List(c.Request.Context(), productiondomain.ListEntryRequest{
		WorkOrderID: req.workOrderID,
		DateFrom:    req.dateFrom,
		DateTo:      req.dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductionEntryByID(c *gin.Context) {
	resp, err := s.productionSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProductionEntry(c *gin.Context) {
	if err := s.productionSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -------- Quality --------

type createQualityEntryRequest struct {
	WorkOrderID    string          `json:"work_order_id"`
	InspectionDate time.Time       `json:"inspection_date"`
	Stage          string          `json:"stage"`
	UnitsInspected decimal.Decimal `json:"units_inspected"`
	UnitsFirstPass decimal.Decimal `json:"units_first_pass"`
	UnitsDefective decimal.Decimal `json:"units_defective"`
	DefectCount    int64           `json:"defect_count"`
	Opportunities  int64           `json:"opportunities"`
}

func (s *Server) CreateQualityEntry(c *gin.Context) {
	var req createQualityEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.qualitySvc.Create(c.Request.Context(), qualitydomain.CreateEntryRequest{
		WorkOrderID:    strings.TrimSpace(req.WorkOrderID),
		InspectionDate: req.InspectionDate,
		Stage:          strings.TrimSpace(req.Stage),
		UnitsInspected: req.UnitsInspected,
		UnitsFirstPass: req.UnitsFirstPass,
		UnitsDefective: req.UnitsDefective,
		DefectCount:    req.DefectCount,
		Opportunities:  req.Opportunities,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListQualityEntries(c *gin.Context) {
	req, err := bindEntryListQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.qualitySvc.List(c.Request.Context(), qualitydomain.ListEntryRequest{
		WorkOrderID: req.workOrderID,
		Stage:       strings.TrimSpace(c.Query("stage")),
		DateFrom:    req.dateFrom,
		DateTo:      req.dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteQualityEntry(c *gin.Context) {
	if err := s.qualitySvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -------- Attendance --------

type createAttendanceEntryRequest struct {
	EmployeeRef    string    `json:"employee_ref"`
	Date           time.Time `json:"date"`
	ScheduledHours float64   `json:"scheduled_hours"`
	AbsentHours    float64   `json:"absent_hours"`
}

func (s *Server) CreateAttendanceEntry(c *gin.Context) {
	var req createAttendanceEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.attendanceSvc.Create(c.Request.Context(), attendancedomain.CreateEntryRequest{
		EmployeeRef:    strings.TrimSpace(req.EmployeeRef),
		Date:           req.Date,
		ScheduledHours: req.ScheduledHours,
		AbsentHours:    req.AbsentHours,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAttendanceEntries(c *gin.Context) {
	req, err := bindEntryListQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.attendanceSvc.List(c.Request.Context(), attendancedomain.ListEntryRequest{
		EmployeeRef: strings.TrimSpace(c.Query("employee_ref")),
		DateFrom:    req.dateFrom,
		DateTo:      req.dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteAttendanceEntry(c *gin.Context) {
	if err := s.attendanceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -------- Downtime --------

type createDowntimeEntryRequest struct {
	WorkOrderID     string    `json:"work_order_id"`
	Date            time.Time `json:"date"`
	PlannedMinutes  float64   `json:"planned_minutes"`
	DowntimeMinutes float64   `json:"downtime_minutes"`
	Reason          string    `json:"reason"`
}

func (s *Server) CreateDowntimeEntry(c *gin.Context) {
	var req createDowntimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.downtimeSvc.Create(c.Request.Context(), downtimedomain.CreateEntryRequest{
		WorkOrderID:     strings.TrimSpace(req.WorkOrderID),
		Date:            req.Date,
		PlannedMinutes:  req.PlannedMinutes,
		DowntimeMinutes: req.DowntimeMinutes,
		Reason:          strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDowntimeEntries(c *gin.Context) {
	req, err := bindEntryListQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.downtimeSvc.List(c.Request.Context(), downtimedomain.ListEntryRequest{
		WorkOrderID: req.workOrderID,
		DateFrom:    req.dateFrom,
		DateTo:      req.dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDowntimeEntry(c *gin.Context) {
	if err := s.downtimeSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindEntryListQuery reads the filters shared by every entry listing.
type entryListQuery struct {
	workOrderID string
	dateFrom    *time.Time
	dateTo      *time.Time
}

func bindEntryListQuery(c *gin.Context) (entryListQuery, error) {
	dateFrom, err := parseOptionalTime(c.Query("date_from"), false)
	if err != nil {
		return entryListQuery{}, newValidationError("date_from", "invalid_date_from", "invalid date_from")
	}
	dateTo, err := parseOptionalTime(c.Query("date_to"), true)
	if err != nil {
		return entryListQuery{}, newValidationError("date_to", "invalid_date_to", "invalid date_to")
	}
	return entryListQuery{
		workOrderID: strings.TrimSpace(c.Query("work_order_id")),
		dateFrom:    dateFrom,
		dateTo:      dateTo,
	}, nil
}
