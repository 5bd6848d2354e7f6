package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/id8-org/id8-recovery/internal/service"
)

type RepoHandler struct {
	repoService *service.RepoService
}

func NewRepoHandler(repoService *service.RepoService) *RepoHandler {
	return &RepoHandler{repoService: repoService}
}

// GET /repos
func (h *RepoHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	repos, total, err := h.repoService.List(c.Query("language"), c.Query("period"), page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessPaged(c, repos, total, page, pageSize)
}

// GET /repos/:id
func (h *RepoHandler) Get(c *gin.Context) {
	repo, err := h.repoService.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, repo)
}
