package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionKind 完成事件类型，决定积分额度
type CompletionKind int

const (
	CompletionLesson CompletionKind = iota // 普通课时完成
	CompletionQuizPerfect
	CompletionQuizPartial // 测验未满分的尝试，不推进进度
)

func (k CompletionKind) String() string {
	switch k {
	case CompletionQuizPerfect:
		return "quiz_perfect"
	case CompletionQuizPartial:
		return "quiz_partial"
	default:
		return "lesson"
	}
}

const leaderboardCacheKey = "gamification:leaderboard"

// GamificationService 积分/段位/徽章账本
// 积分只增不减，段位由累计积分导出，徽章去重入账
type GamificationService struct {
	UserRepo  *repository.UserRepository
	BadgeRepo *repository.BadgeRepository
	Cfg       *config.ProgressStore
	Redis     *redis.Client
}

func NewGamificationService(userRepo *repository.UserRepository, badgeRepo *repository.BadgeRepository, cfg *config.ProgressStore, rdb *redis.Client) *GamificationService {
	return &GamificationService{
		UserRepo:  userRepo,
		BadgeRepo: badgeRepo,
		Cfg:       cfg,
		Redis:     rdb,
	}
}

// PointsFor 完成事件对应的积分额度
func (s *GamificationService) PointsFor(kind CompletionKind) int {
	cfg := s.Cfg.Load()
	switch kind {
	case CompletionQuizPerfect:
		return cfg.PointsQuizPerfect
	case CompletionQuizPartial:
		return cfg.PointsQuizPartial
	default:
		return cfg.PointsLesson
	}
}

// AwardResult 一次积分入账的结果
type AwardResult struct {
	PointsAdded int            `json:"pointsAdded"`
	TotalPoints int            `json:"totalPoints"`
	NewRank     model.UserRank `json:"newRank"`
}

// Award 在调用方事务内给用户加分并重算段位
func (s *GamificationService) Award(tx *gorm.DB, userID uint, kind CompletionKind) (*AwardResult, error) {
	points := s.PointsFor(kind)

	if err := tx.Model(&model.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", points)).Error; err != nil {
		return nil, err
	}

	var user model.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, err
	}

	newRank := RankForPoints(s.Cfg.Load(), user.Points)
	if newRank != user.Rank {
		if err := tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("rank", newRank).Error; err != nil {
			return nil, err
		}
	}

	return &AwardResult{
		PointsAdded: points,
		TotalPoints: user.Points,
		NewRank:     newRank,
	}, nil
}

// AwardCourseBadge 课程 100% 完成时的徽章，唯一索引保证不重复入账
func (s *GamificationService) AwardCourseBadge(tx *gorm.DB, userID uint, course *model.Course) error {
	badge := model.UserBadge{
		UserID:   userID,
		CourseID: course.ID,
		Name:     fmt.Sprintf("Course Master – %s", course.Title),
		EarnedAt: time.Now(),
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&badge).Error
}

func (s *GamificationService) MyBadges(userID uint) ([]model.UserBadge, error) {
	return s.BadgeRepo.ListByUser(userID)
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank   int            `json:"rank"`
	Name   string         `json:"name"`
	Points int            `json:"points"`
	Tier   model.UserRank `json:"tier"`
	Avatar string         `json:"avatar,omitempty"`
}

// Leaderboard 按累计积分取前 N 名，结果在 Redis 缓存一分钟
func (s *GamificationService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	key := fmt.Sprintf("%s:%d", leaderboardCacheKey, limit)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				return entries, nil
			}
		}
	}

	users, err := s.UserRepo.FindTopByPoints(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		entries[i] = LeaderboardEntry{
			Rank:   i + 1,
			Name:   user.Name,
			Points: user.Points,
			Tier:   user.Rank,
			Avatar: user.Avatar,
		}
	}

	if s.Redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.Redis.Set(ctx, key, data, time.Minute).Err(); err != nil {
				logger.Log.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}

	return entries, nil
}

// InvalidateLeaderboard 积分入账后让缓存过期
func (s *GamificationService) InvalidateLeaderboard(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	iter := s.Redis.Scan(ctx, 0, leaderboardCacheKey+":*", 50).Iterator()
	for iter.Next(ctx) {
		s.Redis.Del(ctx, iter.Val())
	}
}
