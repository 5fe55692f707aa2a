package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	"github.com/plantpulse/plantpulse/pkg/db/pagination"
)

type createWorkOrderRequest struct {
	Number              string     `json:"number"`
	ProductID           string     `json:"product_id"`
	PlannedQuantity     int64      `json:"planned_quantity"`
	IdealCycleTime      *float64   `json:"ideal_cycle_time"`
	CalculatedCycleTime *float64   `json:"calculated_cycle_time"`
	PlannedStartDate    *time.Time `json:"planned_start_date"`
	PlannedShipDate     *time.Time `json:"planned_ship_date"`
	RequiredDate        *time.Time `json:"required_date"`
}

func (s *Server) CreateWorkOrder(c *gin.Context) {
	var req createWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.Create(c.Request.Context(), workorderdomain.CreateWorkOrderRequest{
		Number:              strings.TrimSpace(req.Number),
		ProductID:           strings.TrimSpace(req.ProductID),
		PlannedQuantity:     req.PlannedQuantity,
		IdealCycleTime:      req.IdealCycleTime,
		CalculatedCycleTime: req.CalculatedCycleTime,
		PlannedStartDate:    req.PlannedStartDate,
		PlannedShipDate:     req.PlannedShipDate,
		RequiredDate:        req.RequiredDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.Record(c.Request.Context(), "work_order.create", "work_order", &targetID, map[string]any{
			"number": resp.Number,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListWorkOrders(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status    string `form:"status"`
		ProductID string `form:"product_id"`
		DateFrom  string `form:"date_from"`
		DateTo    string `form:"date_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dateFrom, err := parseOptionalTime(query.DateFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("date_from", "invalid_date_from", "invalid date_from"))
		return
	}
	dateTo, err := parseOptionalTime(query.DateTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("date_to", "invalid_date_to", "invalid date_to"))
		return
	}

	resp, err := s.workOrderSvc.List(c.Request.Context(), workorderdomain.ListWorkOrderRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		Status:    strings.TrimSpace(query.Status),
		ProductID: strings.TrimSpace(query.ProductID),
		DateFrom:  dateFrom,
		DateTo:    dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetWorkOrderByID(c *gin.Context) {
	resp, err := s.workOrderSvc.GetByID(c.Request.Context(), workorderdomain.GetWorkOrderRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateWorkOrderRequest struct {
	Status              *string    `json:"status"`
	PlannedQuantity     *int64     `json:"planned_quantity"`
	IdealCycleTime      *float64   `json:"ideal_cycle_time"`
	CalculatedCycleTime *float64   `json:"calculated_cycle_time"`
	PlannedStartDate    *time.Time `json:"planned_start_date"`
	PlannedShipDate     *time.Time `json:"planned_ship_date"`
	RequiredDate        *time.Time `json:"required_date"`
	ActualDeliveryDate  *time.Time `json:"actual_delivery_date"`
}

func (s *Server) UpdateWorkOrder(c *gin.Context) {
	var req updateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.Update(c.Request.Context(), workorderdomain.UpdateWorkOrderRequest{
		ID:                  strings.TrimSpace(c.Param("id")),
		Status:              req.Status,
		PlannedQuantity:     req.PlannedQuantity,
		IdealCycleTime:      req.IdealCycleTime,
		CalculatedCycleTime: req.CalculatedCycleTime,
		PlannedStartDate:    req.PlannedStartDate,
		PlannedShipDate:     req.PlannedShipDate,
		RequiredDate:        req.RequiredDate,
		ActualDeliveryDate:  req.ActualDeliveryDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.Record(c.Request.Context(), "work_order.update", "work_order", &targetID, map[string]any{
			"status": string(resp.Status),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteWorkOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.workOrderSvc.Delete(c.Request.Context(), workorderdomain.GetWorkOrderRequest{ID: id}); err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "work_order.delete", "work_order", &id, nil)
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) InferDeliveryDate(c *gin.Context) {
	resp, err := s.kpiSvc.InferDeliveryDate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLeadTime(c *gin.Context) {
	resp, err := s.kpiSvc.LeadTime(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Undelivered orders have no lead time yet; null, not an error.
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCycleTime(c *gin.Context) {
	resp, err := s.kpiSvc.CycleTime(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
