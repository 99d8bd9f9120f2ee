// file: models/team_member.go
package models

import "time"

// InvitationStatus 成员邀请状态
type InvitationStatus string

const (
	InvitationUnanswered InvitationStatus = "unanswered"
	InvitationAccepted   InvitationStatus = "accepted"
	InvitationDeclined   InvitationStatus = "declined"
)

// TeamMember 既表示已接受的成员，也表示尚未回应的邀请。
// MemberID 为空时是仅有名字的占位成员（未注册用户）。
type TeamMember struct {
	ID               uint32           `gorm:"primarykey" json:"id"`
	TeamID           uint32           `gorm:"uniqueIndex:unique_team_member;not null" json:"team_id"`
	MemberID         *uint32          `gorm:"uniqueIndex:unique_team_member" json:"member_id"`
	Member           *User            `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	MemberName       string           `gorm:"size:100;not null" json:"member_name"`
	// 占位成员（未注册用户）的认领标识，注册后凭它接管该席位
	MemberToken      string           `gorm:"size:32" json:"-"`
	InvitationStatus InvitationStatus `gorm:"type:enum('unanswered','accepted','declined');default:'unanswered'" json:"invitation_status"`
	// 用户同时在多个队伍时，is_selected 标记当前生效的那个
	IsSelected bool      `gorm:"default:0" json:"is_selected"`
	CreatedAt  time.Time `json:"created_at"`
}

func (TeamMember) TableName() string {
	return "comp_team_member"
}
