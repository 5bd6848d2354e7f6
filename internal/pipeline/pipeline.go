// Package pipeline runs the nightly generation job: pull the trending feed,
// upsert repos, and produce unowned system ideas users can browse and adopt.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/config"
	"github.com/id8-org/id8-recovery/internal/llm"
	"github.com/id8-org/id8-recovery/internal/logger"
	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/internal/service"
	"github.com/id8-org/id8-recovery/internal/sse"
	"github.com/id8-org/id8-recovery/internal/trending"
	"github.com/id8-org/id8-recovery/pkg/llmtext"
)

const generationAttempts = 2

type Runner struct {
	db       *gorm.DB
	cfg      config.PipelineConfig
	trending *trending.Client
	repos    *service.RepoService
	llm      service.Completer
	hub      *sse.Hub
	pool     *Pool
	log      *logger.Logger
}

func NewRunner(db *gorm.DB, cfg config.PipelineConfig, tc *trending.Client, repos *service.RepoService, completer service.Completer, hub *sse.Hub, log *logger.Logger) *Runner {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	return &Runner{
		db:       db,
		cfg:      cfg,
		trending: tc,
		repos:    repos,
		llm:      completer,
		hub:      hub,
		pool:     NewPool(workers),
		log:      log,
	}
}

// Start schedules the nightly run. The first run fires at the next 02:00
// UTC, then every 24 hours until ctx is canceled.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		for {
			wait := untilNextRun(time.Now().UTC())
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			if err := r.RunOnce(ctx); err != nil {
				r.log.Error("nightly run failed", "error", err.Error())
			}
		}
	}()
}

func untilNextRun(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// RunOnce executes a full pipeline pass synchronously.
func (r *Runner) RunOnce(ctx context.Context) error {
	feed, err := r.trending.Fetch(ctx, r.cfg.Language, r.cfg.TrendingPeriod)
	if err != nil {
		return fmt.Errorf("fetch trending: %w", err)
	}
	if r.cfg.MaxRepos > 0 && len(feed) > r.cfg.MaxRepos {
		feed = feed[:r.cfg.MaxRepos]
	}
	r.log.Info("nightly run started", "repos", len(feed))

	var wg sync.WaitGroup
	for _, entry := range feed {
		entry := entry
		wg.Add(1)
		r.pool.Submit(func() {
			defer wg.Done()
			if err := r.processRepo(ctx, entry); err != nil {
				r.log.Error("repo processing failed", "repo", entry.FullName(), "error", err.Error())
			}
		})
	}
	wg.Wait()

	r.log.Info("nightly run finished", "repos", len(feed))
	return nil
}

func (r *Runner) processRepo(ctx context.Context, entry trending.Repo) error {
	repo, err := r.repos.GetOrCreate(&model.Repo{
		Name:           entry.FullName(),
		URL:            entry.URL,
		Summary:        entry.Description,
		Language:       entry.Language,
		TrendingPeriod: r.cfg.TrendingPeriod,
		Stargazers:     entry.Stars,
		Forks:          entry.Forks,
	})
	if err != nil {
		return err
	}

	count := r.cfg.IdeasPerRepo
	if count <= 0 {
		count = 3
	}
	prompt := llm.IdeaGenerationPrompt(repo.Name, repo.Summary, repo.Language, "", count)

	var raw string
	var records []llmtext.IdeaRecord
	for attempt := 1; attempt <= generationAttempts; attempt++ {
		raw, err = r.llm.Complete(ctx, prompt, "")
		if err != nil {
			continue
		}
		records = llmtext.ParseIdeaList(raw)
		if len(records) > 0 {
			break
		}
	}

	if len(records) == 0 {
		// Persist a marker record so the failure is visible and retriable.
		marker := model.Idea{
			Title:          fmt.Sprintf("[ERROR] generation failed for %s", repo.Name),
			RepoID:         &repo.ID,
			Status:         model.IdeaStatusClosed,
			LLMRawResponse: raw,
		}
		if cerr := r.db.Create(&marker).Error; cerr != nil {
			return cerr
		}
		r.broadcast(repo.ID, "generation_failed", map[string]interface{}{"repo": repo.Name})
		if err != nil {
			return fmt.Errorf("generation failed for %s: %w", repo.Name, err)
		}
		return fmt.Errorf("no ideas parsed for %s", repo.Name)
	}

	for _, rec := range records {
		idea := model.Idea{
			Title:          rec.Title,
			Hook:           rec.Hook,
			Value:          rec.Value,
			Evidence:       rec.Evidence,
			Differentiator: rec.Differentiator,
			CallToAction:   rec.CallToAction,
			Score:          rec.Score,
			MVPEffort:      rec.MVPEffort,
			Type:           rec.Type,
			Status:         model.IdeaStatusSuggested,
			RepoID:         &repo.ID,
			LLMRawResponse: raw,
		}
		if err := r.db.Create(&idea).Error; err != nil {
			return err
		}
		r.broadcast(repo.ID, "idea_created", map[string]interface{}{
			"idea_id": idea.ID,
			"title":   idea.Title,
		})
	}
	return nil
}

func (r *Runner) broadcast(key, eventType string, data map[string]interface{}) {
	if r.hub == nil {
		return
	}
	r.hub.Broadcast(key, sse.Event{Type: eventType, Data: data})
	r.hub.SetExpire(key, 24*time.Hour)
}

// Shutdown drains the worker pool.
func (r *Runner) Shutdown() {
	r.pool.Shutdown()
}
