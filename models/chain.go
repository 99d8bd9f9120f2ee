// file: models/chain.go
package models

import (
	"time"
)

// UnlockMode 链内任务的解锁方式
type UnlockMode string

const (
	UnlockGradual UnlockMode = "gradual"
	UnlockAll     UnlockMode = "all"
)

// DescriptorManual 表示该链不按时间关闭，只能由管理员手动关闭。
// 设置后 close_minutes 被完全忽略，也不展示剩余时间倒计时。
const DescriptorManual = "MANUAL"

// Chain 对应 comp_chain 表：同一赛事下一组有序任务，共享解锁/关闭时间
type Chain struct {
	ID            uint32 `gorm:"primarykey" json:"id"`
	CompetitionID uint32 `gorm:"index;not null" json:"competition_id"`
	Name          string `gorm:"size:200;not null" json:"name"`
	// 分类名（自由文本），仅用于任务列表的分组展示
	Category string `gorm:"size:200;index" json:"category"`
	Position int    `gorm:"default:0" json:"position"`
	// 相对赛事开始时刻的分钟偏移；到达前整条链对参赛者不可见
	UnlockMinutes int `gorm:"default:0" json:"unlock_minutes"`
	// 相对赛事开始时刻的分钟偏移；到达后不再接受提交，但链保持可见。0 表示永不关闭
	CloseMinutes int        `gorm:"default:0" json:"close_minutes"`
	UnlockMode   UnlockMode `gorm:"type:enum('gradual','all');default:'gradual'" json:"unlock_mode"`
	// 空串或 MANUAL
	Descriptor string `gorm:"size:20" json:"descriptor"`
	// MANUAL 链的关闭开关，由管理员操作
	ManuallyClosed bool `gorm:"default:0" json:"manually_closed"`
	// 全部做对后的附加分
	BonusScore int `gorm:"default:1" json:"bonus_score"`
	// 链级别的提交次数上限覆盖，0 表示沿用赛事默认值
	MaxSubmissions int `gorm:"default:0" json:"max_submissions"`
	// 开启后仅白名单（ChainTeam）内的队伍可见、可解
	RestrictedAccess bool      `gorm:"default:0" json:"restricted_access"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Chain) TableName() string {
	return "comp_chain"
}

func (ch *Chain) IsManuallyClosable() bool {
	return ch.Descriptor == DescriptorManual
}

// ChainTeam 链与队伍的显式访问白名单
type ChainTeam struct {
	ID      uint32 `gorm:"primarykey" json:"id"`
	ChainID uint32 `gorm:"uniqueIndex:unique_chain_team;not null" json:"chain_id"`
	TeamID  uint32 `gorm:"uniqueIndex:unique_chain_team;not null" json:"team_id"`
}

func (ChainTeam) TableName() string {
	return "comp_chain_team"
}
