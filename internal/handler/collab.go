package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/id8-org/id8-recovery/internal/middleware"
	"github.com/id8-org/id8-recovery/internal/service"
)

type CollabHandler struct {
	collabService *service.CollabService
}

func NewCollabHandler(collabService *service.CollabService) *CollabHandler {
	return &CollabHandler{collabService: collabService}
}

// POST /ideas/:id/collaborators
func (h *CollabHandler) AddCollaborator(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	collab, err := h.collabService.AddCollaborator(c.Request.Context(),
		middleware.GetCurrentUserID(c), c.Param("id"), req.UserID, req.Role)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, collab)
}

// DELETE /ideas/:id/collaborators/:userID
func (h *CollabHandler) RemoveCollaborator(c *gin.Context) {
	err := h.collabService.RemoveCollaborator(middleware.GetCurrentUserID(c), c.Param("id"), c.Param("userID"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// GET /ideas/:id/collaborators
func (h *CollabHandler) ListCollaborators(c *gin.Context) {
	collabs, err := h.collabService.ListCollaborators(middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, collabs)
}

// POST /ideas/:id/proposals
func (h *CollabHandler) SubmitProposal(c *gin.Context) {
	var req struct {
		Changes   map[string]interface{} `json:"changes" binding:"required"`
		Rationale string                 `json:"rationale"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	proposal, err := h.collabService.SubmitProposal(c.Request.Context(),
		middleware.GetCurrentUserID(c), c.Param("id"), req.Changes, req.Rationale)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, proposal)
}

// GET /ideas/:id/proposals
func (h *CollabHandler) ListProposals(c *gin.Context) {
	proposals, err := h.collabService.ListProposals(middleware.GetCurrentUserID(c), c.Param("id"), c.Query("status"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, proposals)
}

// POST /proposals/:id/approve
func (h *CollabHandler) ApproveProposal(c *gin.Context) {
	proposal, err := h.collabService.ApproveProposal(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, proposal)
}

// POST /proposals/:id/reject
func (h *CollabHandler) RejectProposal(c *gin.Context) {
	proposal, err := h.collabService.RejectProposal(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, proposal)
}

// POST /ideas/:id/comments
func (h *CollabHandler) AddComment(c *gin.Context) {
	var req struct {
		Body     string  `json:"body" binding:"required"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	comment, err := h.collabService.AddComment(middleware.GetCurrentUserID(c), c.Param("id"), req.Body, req.ParentID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comment)
}

// GET /ideas/:id/comments
func (h *CollabHandler) ListComments(c *gin.Context) {
	comments, err := h.collabService.ListComments(middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, service.BuildCommentTree(comments))
}
