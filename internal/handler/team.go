package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/id8-org/id8-recovery/internal/middleware"
	"github.com/id8-org/id8-recovery/internal/service"
)

type TeamHandler struct {
	teamService *service.TeamService
}

func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// POST /teams
func (h *TeamHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	team, err := h.teamService.Create(middleware.GetCurrentUserID(c), req.Name)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, team)
}

// GET /teams/:id
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.teamService.Get(middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, team)
}

// POST /teams/:id/invites
func (h *TeamHandler) Invite(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	invite, err := h.teamService.Invite(middleware.GetCurrentUserID(c), c.Param("id"), req.Email)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, invite)
}

// POST /teams/invites/accept
func (h *TeamHandler) AcceptInvite(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	team, err := h.teamService.AcceptInvite(middleware.GetCurrentUserID(c), req.Code)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, team)
}
