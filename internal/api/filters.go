package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiaobei/mvd/internal/proposal"
)

// ==================== Filters API ====================

type valueRequest[T any] struct {
	Value    *T   `json:"value"`
	Debounce bool `json:"debounce"`
}

type selectRequest struct {
	Value  string `json:"value"`
	Toggle bool   `json:"toggle"`
}

func bindValue[T any](c *gin.Context) (*valueRequest[T], bool) {
	var req valueRequest[T]
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return nil, false
	}
	return &req, true
}

func (s *Server) filterState() gin.H {
	return gin.H{
		"filters":   s.proposals.Filters(),
		"transient": s.proposals.Filter(),
	}
}

func (s *Server) respondFilters(c *gin.Context, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.filterState()})
}

func (s *Server) getFilters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.filterState()})
}

func (s *Server) setTextFilter(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.proposals.SetTextFilter(req.Text)
	s.respondFilters(c, nil)
}

func (s *Server) setPricePerHourFilter(c *gin.Context) {
	req, ok := bindValue[float64](c)
	if !ok {
		return
	}
	if *req.Value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}
	if req.Debounce {
		s.proposals.SetPricePerHourMaxDebounced(*req.Value)
		c.JSON(http.StatusAccepted, gin.H{"message": "Price filter scheduled"})
		return
	}
	s.respondFilters(c, s.proposals.SetPricePerHourMax(*req.Value))
}

func (s *Server) setPricePerGiBFilter(c *gin.Context) {
	req, ok := bindValue[float64](c)
	if !ok {
		return
	}
	if *req.Value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}
	if req.Debounce {
		s.proposals.SetPricePerGiBMaxDebounced(*req.Value)
		c.JSON(http.StatusAccepted, gin.H{"message": "Price filter scheduled"})
		return
	}
	s.respondFilters(c, s.proposals.SetPricePerGiBMax(*req.Value))
}

func (s *Server) resetPriceFilter(c *gin.Context) {
	s.respondFilters(c, s.proposals.ResetPriceFilter())
}

func (s *Server) setQualityFilter(c *gin.Context) {
	var req struct {
		Level string `json:"level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	level, err := proposal.ParseQualityLevel(req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respondFilters(c, s.proposals.SetQualityFilter(level))
}

func (s *Server) setIncludeFailedFilter(c *gin.Context) {
	req, ok := bindValue[bool](c)
	if !ok {
		return
	}
	s.respondFilters(c, s.proposals.SetIncludeFailed(*req.Value))
}

func (s *Server) setIPTypeFilter(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Toggle {
		s.respondFilters(c, s.proposals.ToggleIPTypeFilter(req.Value))
		return
	}
	s.respondFilters(c, s.proposals.SetIPTypeFilter(req.Value))
}

func (s *Server) setCountryFilter(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Toggle {
		s.proposals.ToggleCountryFilter(req.Value)
	} else {
		s.proposals.SetCountryFilter(req.Value)
	}
	s.respondFilters(c, nil)
}

func (s *Server) setAccessPolicyFilter(c *gin.Context) {
	req, ok := bindValue[bool](c)
	if !ok {
		return
	}
	s.respondFilters(c, s.proposals.SetAccessPolicyFilter(*req.Value))
}
