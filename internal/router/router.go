package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/handler"
	"github.com/id8-org/id8-recovery/internal/middleware"
	"github.com/id8-org/id8-recovery/internal/tiers"
)

type Deps struct {
	DB             *gorm.DB
	JWTSecret      string
	AuthHandler    *handler.AuthHandler
	ProfileHandler *handler.ProfileHandler
	IdeaHandler    *handler.IdeaHandler
	CollabHandler  *handler.CollabHandler
	InsightHandler *handler.InsightHandler
	RepoHandler    *handler.RepoHandler
	TeamHandler    *handler.TeamHandler
}

func Setup(r *gin.Engine, deps Deps) {
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api/v1")

	// Public routes (no auth)
	auth := api.Group("/auth")
	{
		auth.POST("/register", deps.AuthHandler.Register)
		auth.POST("/login", deps.AuthHandler.Login)
		auth.GET("/google/login", deps.AuthHandler.GoogleLogin)
		auth.GET("/google/callback", deps.AuthHandler.GoogleCallback)
	}

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.DB))
	{
		authed.GET("/auth/me", deps.AuthHandler.GetMe)

		// Profile
		profile := authed.Group("/profile")
		{
			profile.GET("", deps.ProfileHandler.Get)
			profile.PUT("", deps.ProfileHandler.Update)
			profile.POST("/resume", deps.ProfileHandler.UploadResume)
		}

		// Repos
		repos := authed.Group("/repos")
		{
			repos.GET("", deps.RepoHandler.List)
			repos.GET("/:id", deps.RepoHandler.Get)
		}

		// Ideas
		ideas := authed.Group("/ideas")
		{
			ideas.POST("", deps.IdeaHandler.Create)
			ideas.GET("", deps.IdeaHandler.List)
			ideas.POST("/generate", deps.IdeaHandler.Generate)
			ideas.GET("/:id", deps.IdeaHandler.Get)
			ideas.PATCH("/:id", deps.IdeaHandler.Update)
			ideas.PUT("/:id/status", deps.IdeaHandler.SetStatus)
			ideas.DELETE("/:id", deps.IdeaHandler.Delete)
			ideas.POST("/:id/adopt", deps.IdeaHandler.Adopt)
			ideas.GET("/:id/events", deps.IdeaHandler.StreamEvents)

			// Premium analysis
			ideas.POST("/validate", middleware.RequireFeature(tiers.FeatureDeepDive), deps.IdeaHandler.Validate)
			ideas.POST("/:id/deep-dive", middleware.RequireFeature(tiers.FeatureDeepDive), deps.IdeaHandler.DeepDive)
			ideas.POST("/:id/iterate", middleware.RequireFeature(tiers.FeatureIteration), deps.IdeaHandler.Iterate)
			ideas.POST("/:id/rerun", middleware.RequireFeature(tiers.FeatureIteration), deps.IdeaHandler.Rerun)

			// Versions
			ideas.GET("/:id/versions", deps.IdeaHandler.ListVersions)
			ideas.GET("/:id/versions/:number", deps.IdeaHandler.GetVersion)
			ideas.POST("/:id/versions/:number/restore", deps.IdeaHandler.RestoreVersion)

			// Shortlist
			ideas.POST("/:id/shortlist", deps.IdeaHandler.AddToShortlist)
			ideas.DELETE("/:id/shortlist", deps.IdeaHandler.RemoveFromShortlist)

			// Collaboration (team accounts)
			collab := ideas.Group("")
			collab.Use(middleware.RequireFeature(tiers.FeatureCollaboration))
			{
				collab.POST("/:id/collaborators", deps.CollabHandler.AddCollaborator)
				collab.GET("/:id/collaborators", deps.CollabHandler.ListCollaborators)
				collab.DELETE("/:id/collaborators/:userID", deps.CollabHandler.RemoveCollaborator)
				collab.POST("/:id/proposals", deps.CollabHandler.SubmitProposal)
				collab.GET("/:id/proposals", deps.CollabHandler.ListProposals)
				collab.POST("/:id/comments", deps.CollabHandler.AddComment)
				collab.GET("/:id/comments", deps.CollabHandler.ListComments)
			}

			// Advanced insights (premium)
			insights := ideas.Group("")
			insights.Use(middleware.RequireFeature(tiers.FeatureAdvancedInsights))
			{
				insights.GET("/:id/insights", deps.InsightHandler.List)
				insights.POST("/:id/insights/case-study", deps.InsightHandler.GenerateCaseStudy)
				insights.POST("/:id/insights/market-snapshot", deps.InsightHandler.GenerateMarketSnapshot)
				insights.POST("/:id/insights/lens", deps.InsightHandler.GenerateLensInsight)
				insights.POST("/:id/insights/vc-thesis", deps.InsightHandler.GenerateVCThesis)
				insights.POST("/:id/insights/investor-deck", deps.InsightHandler.GenerateInvestorDeck)
			}
		}

		authed.GET("/shortlist", deps.IdeaHandler.ListShortlist)

		// Proposal review
		proposals := authed.Group("/proposals")
		proposals.Use(middleware.RequireFeature(tiers.FeatureCollaboration))
		{
			proposals.POST("/:id/approve", deps.CollabHandler.ApproveProposal)
			proposals.POST("/:id/reject", deps.CollabHandler.RejectProposal)
		}

		// Teams
		teams := authed.Group("/teams")
		{
			teams.POST("", deps.TeamHandler.Create)
			teams.GET("/:id", deps.TeamHandler.Get)
			teams.POST("/:id/invites", deps.TeamHandler.Invite)
			teams.POST("/invites/accept", deps.TeamHandler.AcceptInvite)
		}
	}
}
