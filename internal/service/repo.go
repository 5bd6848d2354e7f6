package service

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/model"
)

type RepoService struct {
	db *gorm.DB
}

func NewRepoService(db *gorm.DB) *RepoService {
	return &RepoService{db: db}
}

func (s *RepoService) List(language, period string, page, pageSize int) ([]model.Repo, int64, error) {
	query := s.db.Model(&model.Repo{})
	if language != "" {
		query = query.Where("language = ?", language)
	}
	if period != "" {
		query = query.Where("trending_period = ?", period)
	}

	var total int64
	query.Count(&total)

	var repos []model.Repo
	if err := query.Order("stargazers desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&repos).Error; err != nil {
		return nil, 0, err
	}
	return repos, total, nil
}

func (s *RepoService) Get(id string) (*model.Repo, error) {
	var repo model.Repo
	if err := s.db.First(&repo, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("40401:repo not found")
		}
		return nil, err
	}
	return &repo, nil
}

// GetOrCreate upserts a repo by name, refreshing the mutable trending
// fields on every sighting.
func (s *RepoService) GetOrCreate(repo *model.Repo) (*model.Repo, error) {
	var existing model.Repo
	err := s.db.Where("name = ?", repo.Name).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if cerr := s.db.Create(repo).Error; cerr != nil {
			return nil, cerr
		}
		return repo, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"stargazers":      repo.Stargazers,
		"forks":           repo.Forks,
		"trending_period": repo.TrendingPeriod,
	}
	if repo.Summary != "" {
		updates["summary"] = repo.Summary
	}
	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}
