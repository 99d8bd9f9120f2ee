// file: models/submission.go
package models

import (
	"time"
)

// Submission 提交记录，只追加不修改（管理员删除除外）
type Submission struct {
	ID      uint64    `gorm:"primarykey" json:"id"`
	CtaskID uint32    `gorm:"index;not null" json:"ctask_id"`
	TeamID  uint32    `gorm:"index;not null" json:"team_id"`
	Date    time.Time `gorm:"not null" json:"date"`
	Result  string    `gorm:"size:255;not null" json:"result"`
	// 得分，正确时等于 ctask.max_score，否则 0
	Score int `gorm:"default:0" json:"score"`
}

func (Submission) TableName() string {
	return "comp_submission"
}
