// file: models/task_status.go
package models

import "time"

// PersonalStatus 用户对任务的个人标记（与队伍得分无关）
type PersonalStatus string

const (
	PersonalBlank    PersonalStatus = "blank"
	PersonalTodo     PersonalStatus = "todo"
	PersonalAsSolved PersonalStatus = "as_solved"
)

// TaskStatus 对应 comp_task_status 表
type TaskStatus struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	UserID    uint32         `gorm:"uniqueIndex:unique_user_ctask;not null" json:"user_id"`
	CtaskID   uint32         `gorm:"uniqueIndex:unique_user_ctask;not null" json:"ctask_id"`
	Status    PersonalStatus `gorm:"type:enum('blank','todo','as_solved');default:'blank'" json:"status"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (TaskStatus) TableName() string {
	return "comp_task_status"
}

// LabelClass 返回前端徽标的样式类与文案
func (s PersonalStatus) LabelClass() (string, string) {
	switch s {
	case PersonalAsSolved:
		return "label-success", "Solved"
	case PersonalTodo:
		return "label-warning", "To-do"
	default:
		return "", ""
	}
}

// TrClass 返回任务列表行的样式类
func (s PersonalStatus) TrClass() string {
	switch s {
	case PersonalAsSolved:
		return "task-as-solved"
	case PersonalTodo:
		return "task-todo"
	default:
		return ""
	}
}
