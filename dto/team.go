// file: dto/team.go
package dto

import "strings"

// ========== 请求 DTO ==========

// RegistrationReq 赛事报名：创建或更新队伍。
// members 里已注册用户按用户名邀请，其余按占位名字记录。
type RegistrationReq struct {
	TeamName string   `json:"team_name"`
	Category int      `json:"category"`
	Members  []string `json:"members"`
}

func (r *RegistrationReq) Normalize() {
	r.TeamName = strings.TrimSpace(r.TeamName)
	cleaned := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		m = strings.TrimSpace(m)
		if m != "" {
			cleaned = append(cleaned, m)
		}
	}
	r.Members = cleaned
}

type InvitationAnswerReq struct {
	TeamID uint32 `json:"team_id" binding:"required"`
	Accept bool   `json:"accept"`
}

// ========== 响应 DTO ==========

type TeamMemberResp struct {
	MemberID         uint32 `json:"member_id,omitempty"`
	MemberName       string `json:"member_name"`
	InvitationStatus string `json:"invitation_status"`
}

type TeamResp struct {
	ID             uint32           `json:"id"`
	Name           string           `json:"name"`
	Category       int              `json:"category"`
	CategoryName   string           `json:"category_name,omitempty"`
	CacheScore     int              `json:"cache_score"`
	InvitationCode string           `json:"invitation_code,omitempty"`
	Members        []TeamMemberResp `json:"members"`
}
