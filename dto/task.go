// file: dto/task.go
package dto

// ========== 请求 DTO ==========

type SubmitResultReq struct {
	Result string `json:"result" binding:"required"`
}

// PersonalStatusReq 个人任务标记，action 取 as_solved / todo / blank
type PersonalStatusReq struct {
	Action string `json:"action" form:"action" binding:"required"`
}

type CreateCtaskReq struct {
	ChainID        *uint32 `json:"chain_id"`
	Descriptor     string  `json:"descriptor" binding:"required"`
	MaxScore       int     `json:"max_score"`
	MaxSubmissions int     `json:"max_submissions"`
	Text           string  `json:"text"`
	Comment        string  `json:"comment"`
}

type UpdateCtaskReq struct {
	Descriptor     *string `json:"descriptor"`
	MaxScore       *int    `json:"max_score"`
	MaxSubmissions *int    `json:"max_submissions"`
	Text           *string `json:"text"`
	Comment        *string `json:"comment"`
}

// ChainTasksActionReq 链内任务的调序/摘除操作
// action 取 move-up / move-down / detach
type ChainTasksActionReq struct {
	Action  string `json:"action" binding:"required"`
	CtaskID uint32 `json:"ctask_id" binding:"required"`
}

// ========== 响应 DTO ==========

// TaskStateResp 任务列表里单个 ctask 的可见状态
type TaskStateResp struct {
	ID              uint32 `json:"id"`
	ChainPosition   int    `json:"chain_position"`
	MaxScore        int    `json:"max_score"`
	State           string `json:"state"` // locked / open / closed / solved
	CSSClass        string `json:"css_class"`
	SubmissionCount int    `json:"submission_count"`
	IsSolved        bool   `json:"is_solved"`
}

// ChainItemResp 任务列表里的一条链
type ChainItemResp struct {
	ID       uint32          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Position int             `json:"position"`
	Status   string          `json:"status"` // locked / open / closed_automatic / closed_manual
	Ctasks   []TaskStateResp `json:"ctasks"`
	// 下一个还能做的任务，没有则为 0
	NextCtaskID uint32 `json:"next_ctask_id,omitempty"`
}

type SubmissionResp struct {
	ID     uint64 `json:"id"`
	Result string `json:"result"`
	Score  int    `json:"score"`
	Date   string `json:"date"`
}

type TaskDetailResp struct {
	ID            uint32 `json:"id"`
	ChainID       uint32 `json:"chain_id"`
	ChainName     string `json:"chain_name"`
	ChainPosition int    `json:"chain_position"`
	// 链名 + 位置拼出的展示名，如 "chain A #1"
	Name     string `json:"name"`
	Text     string `json:"text"`
	MaxScore int    `json:"max_score"`
	// 提交表单只在 open 为 true 时渲染
	Open            bool   `json:"open"`
	ClosedMessage   string `json:"closed_message,omitempty"`
	SubmissionsLeft int    `json:"submissions_left"`
	IsSolved        bool   `json:"is_solved"`
	// 倒计时描述，见 ShowCountdown；MANUAL 链不展示
	ShowCountdown    bool             `json:"show_countdown"`
	RemainingSeconds int64            `json:"remaining_seconds,omitempty"`
	Submissions      []SubmissionResp `json:"submissions"`
}
