package controller

import (
	"strconv"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	Gamification *service.GamificationService
}

func NewAchievementController(gamification *service.GamificationService) *AchievementController {
	return &AchievementController{Gamification: gamification}
}

// Leaderboard godoc
// @Summary 积分排行榜
// @Description 按累计积分排序的前N名，Redis缓存一分钟
// @Tags 成就
// @Produce  json
// @Param   limit query int false "名次数量" default(10)
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "成功"
// @Router /api/leaderboard [get]
func (c *AchievementController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	entries, err := c.Gamification.Leaderboard(ctx.Request.Context(), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// MyBadges godoc
// @Summary 我的徽章
// @Tags 成就
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.UserBadge} "成功"
// @Router /api/badges [get]
func (c *AchievementController) MyBadges(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	badges, err := c.Gamification.MyBadges(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}
