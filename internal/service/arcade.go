package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"

	"molt-core/internal/model"
	"molt-core/pkg/errno"
)

const arcadeCooldown = 24 * time.Hour

// spinRewards 转盘奖励表, 等概率
var spinRewards = []SpinReward{
	{Type: "xp", Amount: 50},
	{Type: "xp", Amount: 100},
	{Type: "xp", Amount: 500},
	{Type: "token", Amount: 10},
	{Type: "nothing", Amount: 0},
}

// quizAnswers 固定答案
var quizAnswers = []string{"Base", "Blue", "2023"}

const quizXPPerCorrect int64 = 50

type SpinReward struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
}

type SpinResult struct {
	Reward   SpinReward `json:"result"`
	NextSpin int64      `json:"nextSpin"` // ms epoch
}

type QuizResult struct {
	Score          int   `json:"score"`
	TotalQuestions int   `json:"totalQuestions"`
	XPEarned       int64 `json:"xpEarned"`
	NextPlay       int64 `json:"nextPlay"` // ms epoch
}

// Arcade 每日小游戏, 冷却时间存在用户元数据里
type Arcade struct {
	db *gorm.DB
}

func NewArcade(db *gorm.DB) *Arcade {
	return &Arcade{db: db}
}

// Spin 每日转盘
func (a *Arcade) Spin(ctx context.Context, fid int64) (*SpinResult, error) {
	now := time.Now()
	nowMs := now.UnixMilli()
	var result SpinResult

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadOrInitUser(tx, fid, now)
		if err != nil {
			return err
		}

		if nowMs-user.Metadata.LastSpin < arcadeCooldown.Milliseconds() {
			return errno.ErrCooldownActive
		}

		reward := spinRewards[rand.IntN(len(spinRewards))]
		if reward.Type == "xp" {
			user.XP += reward.Amount
		}
		user.Metadata.LastSpin = nowMs
		user.LastActive = now
		user.UpdatedAt = now
		if err := tx.Save(user).Error; err != nil {
			return errno.ErrDatabase
		}

		result = SpinResult{Reward: reward, NextSpin: nowMs + arcadeCooldown.Milliseconds()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Quiz 每日问答, 按对题数给分
func (a *Arcade) Quiz(ctx context.Context, fid int64, answers []string) (*QuizResult, error) {
	now := time.Now()
	nowMs := now.UnixMilli()
	var result QuizResult

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadOrInitUser(tx, fid, now)
		if err != nil {
			return err
		}

		if nowMs-user.Metadata.LastQuiz < arcadeCooldown.Milliseconds() {
			return errno.ErrCooldownActive
		}

		score := 0
		for i, ans := range answers {
			if i < len(quizAnswers) && ans == quizAnswers[i] {
				score++
			}
		}
		earned := int64(score) * quizXPPerCorrect

		user.XP += earned
		user.Metadata.LastQuiz = nowMs
		user.LastActive = now
		user.UpdatedAt = now
		if err := tx.Save(user).Error; err != nil {
			return errno.ErrDatabase
		}

		result = QuizResult{
			Score:          score,
			TotalQuestions: len(quizAnswers),
			XPEarned:       earned,
			NextPlay:       nowMs + arcadeCooldown.Milliseconds(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func loadOrInitUser(tx *gorm.DB, fid int64, now time.Time) (*model.User, error) {
	var user model.User
	if err := tx.First(&user, "fid = ?", fid).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrDatabase
		}
		user = model.User{FID: fid, CreatedAt: now}
	}
	return &user, nil
}
