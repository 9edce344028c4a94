package controllers

import (
	"net/http"

	"github.com/fsdevblog/urlkeeper/internal/controllers/middlewares"
	"github.com/fsdevblog/urlkeeper/internal/services"
	"github.com/gin-gonic/gin"
)

// UpdateProfileRequest новые имя и почта.
type UpdateProfileRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email"    json:"email"    binding:"required"`
}

type ProfileController struct {
	profiles ProfileUpdater
}

func NewProfileController(profiles ProfileUpdater) *ProfileController {
	return &ProfileController{profiles: profiles}
}

// Show GET /profile.
func (p *ProfileController) Show(ctx *gin.Context) {
	user, ok := middlewares.CurrentUser(ctx)
	if !ok {
		respondError(ctx, services.ErrUnauthenticated, middlewares.LoginPath)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// Update POST /profile. Имя и почта должны оставаться уникальными среди остальных пользователей.
func (p *ProfileController) Update(ctx *gin.Context) {
	user, ok := middlewares.CurrentUser(ctx)
	if !ok {
		respondError(ctx, services.ErrUnauthenticated, middlewares.LoginPath)
		return
	}

	var req UpdateProfileRequest
	if err := bindRequest(ctx, &req); err != nil {
		respondError(ctx, err, "/profile")
		return
	}

	updated, err := p.profiles.UpdateProfile(ctx, user.ID, services.UpdateProfileArgs{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		respondError(ctx, err, "/profile")
		return
	}

	respondSuccess(ctx, http.StatusOK, updated, "/profile", "Profile updated successfully!")
}
