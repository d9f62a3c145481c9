package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiaobei/mvd/internal/proposal"
	"github.com/xiaobei/mvd/internal/service"
	"github.com/xiaobei/mvd/pkg/utils"
)

// ==================== Proposals API ====================

func (s *Server) getProposals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":    s.proposals.Filtered(),
		"loading": s.proposals.Loading(),
	})
}

func (s *Server) getAllProposals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.proposals.Proposals()})
}

func (s *Server) getProposalCounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"ip_types":  s.proposals.IPTypeCounts(),
		"countries": utils.CountryBadges(s.proposals.CountryCounts()),
	}})
}

func (s *Server) getActiveProposal(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.proposals.Active()})
}

func (s *Server) toggleActiveProposal(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key, err := proposal.ParseKey(req.Key)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active, err := s.proposals.ToggleActiveProposal(key)
	if errors.Is(err, service.ErrProposalNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": active})
}

// refreshProposals runs one refresh cycle in the background. Overlapping
// requests are absorbed by the store's in-flight guards.
func (s *Server) refreshProposals(c *gin.Context) {
	go func() {
		s.proposals.FetchProposals()
		s.proposals.FetchQuality()
	}()
	c.JSON(http.StatusAccepted, gin.H{"message": "Refresh started"})
}
