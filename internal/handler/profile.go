package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/id8-org/id8-recovery/internal/middleware"
	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GET /profile
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileService.Get(middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, profile)
}

// PUT /profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req struct {
		Background    *string           `json:"background"`
		SkillTags     *model.StringList `json:"skill_tags"`
		Interests     *model.StringList `json:"interests"`
		Goals         *string           `json:"goals"`
		PreferredVert *string           `json:"preferred_vertical"`
		HoursPerWeek  *int              `json:"hours_per_week"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Background != nil {
		updates["background"] = *req.Background
	}
	if req.SkillTags != nil {
		updates["skill_tags"] = *req.SkillTags
	}
	if req.Interests != nil {
		updates["interests"] = *req.Interests
	}
	if req.Goals != nil {
		updates["goals"] = *req.Goals
	}
	if req.PreferredVert != nil {
		updates["preferred_vert"] = *req.PreferredVert
	}
	if req.HoursPerWeek != nil {
		updates["hours_per_week"] = *req.HoursPerWeek
	}

	profile, err := h.profileService.Update(middleware.GetCurrentUserID(c), updates)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, profile)
}

// POST /profile/resume
func (h *ProfileHandler) UploadResume(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, 40001, "a plain-text resume file is required")
		return
	}
	defer file.Close()

	text, err := io.ReadAll(io.LimitReader(file, 4<<20))
	if err != nil {
		InternalError(c, "read upload: "+err.Error())
		return
	}

	profile, err := h.profileService.SaveResume(middleware.GetCurrentUserID(c), header.Filename, string(text))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, profile)
}
