package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/id8-org/id8-recovery/internal/middleware"
	"github.com/id8-org/id8-recovery/internal/service"
)

type InsightHandler struct {
	insightService *service.InsightService
}

func NewInsightHandler(insightService *service.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

// POST /ideas/:id/insights/case-study
func (h *InsightHandler) GenerateCaseStudy(c *gin.Context) {
	var req struct {
		Company string `json:"company"`
	}
	_ = c.ShouldBindJSON(&req)

	study, err := h.insightService.GenerateCaseStudy(c.Request.Context(),
		middleware.GetCurrentUserID(c), c.Param("id"), req.Company)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, study)
}

// POST /ideas/:id/insights/market-snapshot
func (h *InsightHandler) GenerateMarketSnapshot(c *gin.Context) {
	snapshot, err := h.insightService.GenerateMarketSnapshot(c.Request.Context(),
		middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, snapshot)
}

// POST /ideas/:id/insights/lens
func (h *InsightHandler) GenerateLensInsight(c *gin.Context) {
	var req struct {
		Lens string `json:"lens" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	insight, err := h.insightService.GenerateLensInsight(c.Request.Context(),
		middleware.GetCurrentUserID(c), c.Param("id"), req.Lens)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, insight)
}

// POST /ideas/:id/insights/vc-thesis
func (h *InsightHandler) GenerateVCThesis(c *gin.Context) {
	var req struct {
		Firm string `json:"firm"`
	}
	_ = c.ShouldBindJSON(&req)

	thesis, err := h.insightService.GenerateVCThesis(c.Request.Context(),
		middleware.GetCurrentUserID(c), c.Param("id"), req.Firm)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, thesis)
}

// POST /ideas/:id/insights/investor-deck
func (h *InsightHandler) GenerateInvestorDeck(c *gin.Context) {
	deck, err := h.insightService.GenerateInvestorDeck(c.Request.Context(),
		middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, deck)
}

// GET /ideas/:id/insights
func (h *InsightHandler) List(c *gin.Context) {
	insights, err := h.insightService.ListForIdea(middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, insights)
}
