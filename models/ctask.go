// file: models/ctask.go
package models

import (
	"time"
)

// CompetitionTask（ctask）对应 comp_ctask 表：链中的一道任务
type CompetitionTask struct {
	ID            uint32  `gorm:"primarykey" json:"id"`
	CompetitionID uint32  `gorm:"index;not null" json:"competition_id"`
	ChainID       *uint32 `gorm:"index" json:"chain_id"`
	// 链内位置，从 1 开始；脱离链后为 -1
	ChainPosition int `gorm:"default:-1" json:"chain_position"`
	// 答案描述符（如正确结果），校验提交时使用
	Descriptor string `gorm:"size:255" json:"descriptor"`
	MaxScore   int    `gorm:"default:1" json:"max_score"`
	// 0 表示沿用链/赛事的默认提交次数上限
	MaxSubmissions int       `gorm:"default:0" json:"max_submissions"`
	Text           string    `gorm:"type:text" json:"text"`
	Comment        string    `gorm:"type:text" json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (CompetitionTask) TableName() string {
	return "comp_ctask"
}

// EffectiveMaxSubmissions 按 ctask -> chain -> competition 的顺序取提交上限
func (t *CompetitionTask) EffectiveMaxSubmissions(chain *Chain, competition *Competition) int {
	if t.MaxSubmissions > 0 {
		return t.MaxSubmissions
	}
	if chain != nil && chain.MaxSubmissions > 0 {
		return chain.MaxSubmissions
	}
	return competition.DefaultMaxSubmissions
}
