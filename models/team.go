// file: models/team.go
package models

import (
	"time"
)

// 自定义队伍类型：普通参赛队伍或管理员的私有测试队伍
type TeamType string

const (
	TeamTypeNormal       TeamType = "normal"
	TeamTypeAdminPrivate TeamType = "admin_private"
)

type Team struct {
	ID            uint32   `gorm:"primarykey" json:"id"`
	CompetitionID uint32   `gorm:"index;not null" json:"competition_id"`
	Name          string   `gorm:"size:100;not null" json:"name"`
	AuthorID      uint32   `gorm:"not null" json:"author_id"`
	Author        User     `gorm:"foreignKey:AuthorID" json:"author"`
	// 分类 id，0 表示无分类；允许指向配置中不存在的分类（展示为 Invalid category）
	Category int      `gorm:"default:0" json:"category"`
	TeamType TeamType `gorm:"type:enum('normal','admin_private');default:'normal'" json:"team_type"`
	// 邀请码，队伍作者可以用它拉人入队
	InvitationCode string `gorm:"size:20;unique;not null" json:"invitation_code"`
	// 三个得分缓存由 score_service 维护，这里只读
	CacheScore               int          `gorm:"default:0" json:"cache_score"`
	CacheScoreBeforeFreeze   int          `gorm:"default:0" json:"cache_score_before_freeze"`
	CacheMaxScoreAfterFreeze int          `gorm:"default:0" json:"cache_max_score_after_freeze"`
	CreatedAt                time.Time    `json:"created_at"`
	UpdatedAt                time.Time    `json:"updated_at"`
	Members                  []TeamMember `gorm:"foreignKey:TeamID" json:"members"`
}

func (Team) TableName() string {
	return "comp_team"
}

func (t *Team) IsNormal() bool {
	return t.TeamType == TeamTypeNormal
}
