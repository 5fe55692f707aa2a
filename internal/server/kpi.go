package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	kpidomain "github.com/plantpulse/plantpulse/internal/kpi/domain"
	"github.com/plantpulse/plantpulse/internal/kpi/otd"
)

func (s *Server) bindRangeRequest(c *gin.Context) (kpidomain.RangeRequest, error) {
	from, to, err := parseRequiredRange(c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		return kpidomain.RangeRequest{}, err
	}
	return kpidomain.RangeRequest{
		DateFrom:  from,
		DateTo:    to,
		ProductID: strings.TrimSpace(c.Query("product_id")),
	}, nil
}

func (s *Server) GetOTD(c *gin.Context) {
	req, err := s.bindRangeRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.kpiSvc.OTD(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTrueOTD(c *gin.Context) {
	req, err := s.bindRangeRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.kpiSvc.TrueOTD(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOTDTrend(c *gin.Context) {
	req, err := s.bindRangeRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	interval := otd.Interval(strings.TrimSpace(c.DefaultQuery("interval", string(otd.IntervalDaily))))
	resp, err := s.kpiSvc.OTDTrend(c.Request.Context(), kpidomain.TrendRequest{
		RangeRequest: req,
		Interval:     interval,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOTDByProduct(c *gin.Context) {
	req, err := s.bindRangeRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.kpiSvc.OTDByProduct(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOTDByWorkOrder(c *gin.Context) {
	req, err := s.bindRangeRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.kpiSvc.OTDByWorkOrder(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDeliveryVariance(c *gin.Context) {
	req, err := s.bindRangeRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.kpiSvc.DeliveryVariance(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLateOrders(c *gin.Context) {
	req, err := s.bindRangeRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.kpiSvc.LateOrders(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetKPISummary(c *gin.Context) {
	req, err := s.bindRangeRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.kpiSvc.Summary(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
