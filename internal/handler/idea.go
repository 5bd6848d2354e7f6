package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/id8-org/id8-recovery/internal/middleware"
	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/internal/service"
	"github.com/id8-org/id8-recovery/internal/sse"
)

type IdeaHandler struct {
	ideaService    *service.IdeaService
	versionService *service.VersionService
	hub            *sse.Hub
}

func NewIdeaHandler(ideaService *service.IdeaService, versionService *service.VersionService, hub *sse.Hub) *IdeaHandler {
	return &IdeaHandler{ideaService: ideaService, versionService: versionService, hub: hub}
}

// POST /ideas
func (h *IdeaHandler) Create(c *gin.Context) {
	var req struct {
		Title          string `json:"title" binding:"required,max=256"`
		Hook           string `json:"hook"`
		Value          string `json:"value"`
		Evidence       string `json:"evidence"`
		Differentiator string `json:"differentiator"`
		CallToAction   string `json:"call_to_action"`
		Score          int    `json:"score"`
		MVPEffort      int    `json:"mvp_effort"`
		Type           string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	idea := &model.Idea{
		Title:          req.Title,
		Hook:           req.Hook,
		Value:          req.Value,
		Evidence:       req.Evidence,
		Differentiator: req.Differentiator,
		CallToAction:   req.CallToAction,
		Score:          req.Score,
		MVPEffort:      req.MVPEffort,
		Type:           req.Type,
	}
	created, err := h.ideaService.Create(middleware.GetCurrentUser(c), idea)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, created)
}

// GET /ideas
func (h *IdeaHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	ideas, total, err := h.ideaService.List(middleware.GetCurrentUserID(c), c.Query("status"), page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessPaged(c, ideas, total, page, pageSize)
}

// GET /ideas/:id
func (h *IdeaHandler) Get(c *gin.Context) {
	idea, err := h.ideaService.Get(middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, idea)
}

// PATCH /ideas/:id
func (h *IdeaHandler) Update(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	idea, err := h.ideaService.Update(middleware.GetCurrentUserID(c), c.Param("id"), updates)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, idea)
}

// PUT /ideas/:id/status
func (h *IdeaHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	idea, err := h.ideaService.SetStatus(middleware.GetCurrentUserID(c), c.Param("id"), req.Status)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, idea)
}

// DELETE /ideas/:id
func (h *IdeaHandler) Delete(c *gin.Context) {
	if err := h.ideaService.Delete(middleware.GetCurrentUserID(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// POST /ideas/:id/adopt
func (h *IdeaHandler) Adopt(c *gin.Context) {
	idea, err := h.ideaService.Adopt(middleware.GetCurrentUser(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, idea)
}

// POST /ideas/generate
func (h *IdeaHandler) Generate(c *gin.Context) {
	var req struct {
		RepoID string `json:"repo_id" binding:"required"`
		Count  int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	ideas, err := h.ideaService.Generate(c.Request.Context(), middleware.GetCurrentUser(c), req.RepoID, req.Count)
	if err != nil {
		var noIdeas *service.NoIdeasError
		if errors.As(err, &noIdeas) {
			c.JSON(422, gin.H{
				"code":    40002,
				"message": "no ideas could be parsed from the model output",
				"data":    gin.H{"raw": noIdeas.Raw},
			})
			return
		}
		Fail(c, err)
		return
	}
	Success(c, ideas)
}

// POST /ideas/validate
func (h *IdeaHandler) Validate(c *gin.Context) {
	var req struct {
		Title          string `json:"title" binding:"required,max=256"`
		Hook           string `json:"hook"`
		Value          string `json:"value"`
		Evidence       string `json:"evidence"`
		Differentiator string `json:"differentiator"`
		CallToAction   string `json:"call_to_action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	idea := &model.Idea{
		Title:          req.Title,
		Hook:           req.Hook,
		Value:          req.Value,
		Evidence:       req.Evidence,
		Differentiator: req.Differentiator,
		CallToAction:   req.CallToAction,
	}
	validated, err := h.ideaService.Validate(c.Request.Context(), middleware.GetCurrentUser(c), idea)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, validated)
}

// POST /ideas/:id/deep-dive
func (h *IdeaHandler) DeepDive(c *gin.Context) {
	ideaID := c.Param("id")
	idea, err := h.ideaService.RequestDeepDive(c.Request.Context(), middleware.GetCurrentUserID(c), ideaID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, idea)
}

// POST /ideas/:id/iterate
func (h *IdeaHandler) Iterate(c *gin.Context) {
	var req struct {
		Feedback string `json:"feedback" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	idea, err := h.ideaService.Iterate(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), req.Feedback)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, idea)
}

// POST /ideas/:id/rerun
func (h *IdeaHandler) Rerun(c *gin.Context) {
	var req struct {
		EditedFields map[string]interface{} `json:"edited_fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	idea, err := h.ideaService.Rerun(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), req.EditedFields)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, idea)
}

// GET /ideas/:id/versions
func (h *IdeaHandler) ListVersions(c *gin.Context) {
	versions, err := h.versionService.List(middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, versions)
}

// GET /ideas/:id/versions/:number
func (h *IdeaHandler) GetVersion(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		BadRequest(c, 40001, "invalid version number")
		return
	}

	version, err := h.versionService.Get(middleware.GetCurrentUserID(c), c.Param("id"), number)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, version)
}

// POST /ideas/:id/versions/:number/restore
func (h *IdeaHandler) RestoreVersion(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		BadRequest(c, 40001, "invalid version number")
		return
	}

	idea, err := h.versionService.Restore(middleware.GetCurrentUserID(c), c.Param("id"), number)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, idea)
}

// POST /ideas/:id/shortlist
func (h *IdeaHandler) AddToShortlist(c *gin.Context) {
	if err := h.ideaService.AddToShortlist(middleware.GetCurrentUserID(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// DELETE /ideas/:id/shortlist
func (h *IdeaHandler) RemoveFromShortlist(c *gin.Context) {
	if err := h.ideaService.RemoveFromShortlist(middleware.GetCurrentUserID(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// GET /shortlist
func (h *IdeaHandler) ListShortlist(c *gin.Context) {
	items, err := h.ideaService.ListShortlist(middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, items)
}

// GET /ideas/:id/events (SSE)
func (h *IdeaHandler) StreamEvents(c *gin.Context) {
	ideaID := c.Param("id")
	if _, err := h.ideaService.Get(middleware.GetCurrentUserID(c), ideaID); err != nil {
		Fail(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	lastID := sse.ParseLastEventID(c.GetHeader("Last-Event-ID"))
	if replay, err := h.hub.ReplayFrom(ideaID, lastID); err == nil {
		for _, ev := range replay {
			writeEvent(c.Writer, ev)
		}
		c.Writer.Flush()
	}

	ch, unsub := h.hub.Subscribe(ideaID)
	defer unsub()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(c.Writer, ev)
			c.Writer.Flush()
		}
	}
}

func writeEvent(w io.Writer, ev sse.Event) {
	data, _ := json.Marshal(ev.Data)
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, data)
}
