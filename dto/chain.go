// file: dto/chain.go
package dto

import "strings"

// ========== 请求 DTO ==========

type CreateChainReq struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	Position         int    `json:"position"`
	UnlockMinutes    int    `json:"unlock_minutes"`
	CloseMinutes     int    `json:"close_minutes"`
	UnlockMode       string `json:"unlock_mode"` // gradual / all
	Descriptor       string `json:"descriptor"`  // "" / MANUAL
	BonusScore       *int   `json:"bonus_score"`
	MaxSubmissions   int    `json:"max_submissions"`
	RestrictedAccess bool   `json:"restricted_access"`
}

// Normalize 清洗与默认值
func (r *CreateChainReq) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	r.UnlockMode = strings.ToLower(strings.TrimSpace(r.UnlockMode))
	r.Descriptor = strings.ToUpper(strings.TrimSpace(r.Descriptor))
	if r.UnlockMode == "" {
		r.UnlockMode = "gradual"
	}
}

type UpdateChainReq struct {
	Name             *string `json:"name"`
	Category         *string `json:"category"`
	Position         *int    `json:"position"`
	UnlockMinutes    *int    `json:"unlock_minutes"`
	CloseMinutes     *int    `json:"close_minutes"`
	UnlockMode       *string `json:"unlock_mode"`
	Descriptor       *string `json:"descriptor"`
	BonusScore       *int    `json:"bonus_score"`
	MaxSubmissions   *int    `json:"max_submissions"`
	RestrictedAccess *bool   `json:"restricted_access"`
}

// UpdateChainAccessReq 白名单的完整替换；不属于本赛事的 team_id 会被忽略
type UpdateChainAccessReq struct {
	TeamIDs []uint32 `json:"team_ids"`
}

// ========== 响应 DTO ==========

// ChainAccessRow 白名单编辑表的一行
type ChainAccessRow struct {
	TeamID       uint32 `json:"team_id"`
	TeamName     string `json:"team_name"`
	CategoryName string `json:"category_name,omitempty"`
	HasAccess    bool   `json:"has_access"`
}

type ChainAccessResp struct {
	ChainID           uint32           `json:"chain_id"`
	RestrictedAccess  bool             `json:"restricted_access"`
	HasTeamCategories bool             `json:"has_team_categories"`
	Teams             []ChainAccessRow `json:"teams"`
}
