// file: models/competition.go
package models

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

type CompetitionKind string

const (
	KindCompetition CompetitionKind = "competition"
	KindCourse      CompetitionKind = "course"
)

// ScoreboardMode 排行榜拆分模式，来自 team_categories 配置里的 SCOREBOARD 键
type ScoreboardMode string

const (
	ScoreboardAll                     ScoreboardMode = "ALL"
	ScoreboardAllAndMyCategory        ScoreboardMode = "ALL_AND_MY_CATEGORY"
	ScoreboardAllAndPerCategory       ScoreboardMode = "ALL_AND_PER_CATEGORY"
	ScoreboardAllAndMyThenRest        ScoreboardMode = "ALL_AND_MY_THEN_REST"
	ScoreboardAllAndNonzeroMy         ScoreboardMode = "ALL_AND_NONZERO_MY"
	ScoreboardAllAndNonzeroEach       ScoreboardMode = "ALL_AND_NONZERO_EACH"
	ScoreboardAllAndNonzeroMyThenRest ScoreboardMode = "ALL_AND_NONZERO_MY_THEN_REST"
)

var validScoreboardModes = map[ScoreboardMode]bool{
	ScoreboardAll:                     true,
	ScoreboardAllAndMyCategory:        true,
	ScoreboardAllAndPerCategory:       true,
	ScoreboardAllAndMyThenRest:        true,
	ScoreboardAllAndNonzeroMy:         true,
	ScoreboardAllAndNonzeroEach:       true,
	ScoreboardAllAndNonzeroMyThenRest: true,
}

// Competition 对应 comp_competition 表
type Competition struct {
	ID            uint32          `gorm:"primarykey" json:"id,omitempty"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	URLPathPrefix string          `gorm:"size:100;unique;not null" json:"url_path_prefix"`
	Kind          CompetitionKind `gorm:"type:enum('competition','course');default:'competition'" json:"kind"`
	Description   string          `gorm:"type:text" json:"description"`
	StartDate     time.Time       `gorm:"not null" json:"start_date" binding:"required"`
	EndDate       time.Time       `gorm:"not null" json:"end_date" binding:"required"`
	// 排行榜冻结时刻，冻结后的得分只计入 cache_score，不计入对外展示的分数
	ScoreboardFreezeDate  *time.Time `json:"scoreboard_freeze_date,omitempty"`
	TeamCategories        string     `gorm:"type:text" json:"team_categories"`
	DefaultMaxSubmissions int        `gorm:"default:3" json:"default_max_submissions"`
	MaxTeamSize           int        `gorm:"default:1" json:"max_team_size"`
	PublicScoreboard      bool       `gorm:"default:1" json:"public_scoreboard"`
	CreatedAt             time.Time  `json:"created_at,omitempty"`
	UpdatedAt             time.Time  `json:"updated_at,omitempty"`
}

func (Competition) TableName() string {
	return "comp_competition"
}

func (c *Competition) IsCourse() bool {
	return c.Kind == KindCourse
}

// FreezeDate 未配置冻结时刻时视为永不冻结
func (c *Competition) FreezeDate() time.Time {
	if c.ScoreboardFreezeDate != nil {
		return *c.ScoreboardFreezeDate
	}
	return c.EndDate
}

// TeamCategoriesConfig 是 team_categories 字段解析后的表示。
//
// 原始格式（JSON，按语言给出分类 id 到名称的映射，外加控制键）：
//
//	{
//	    "hr": {"1": "Crvena", "2": "Zelena"},
//	    "en": {"1": "Red", "2": "Green"},
//	    "CONFIGURABLE": true,
//	    "HIDDEN": false,
//	    "SCOREBOARD": "ALL_AND_PER_CATEGORY"
//	}
//
// 该格式是持久化状态的一部分，必须原样兼容。
type TeamCategoriesConfig struct {
	LangToCategories map[string]map[int]string
	Configurable     bool
	Hidden           bool
	Scoreboard       ScoreboardMode
}

// CategoriesFor 返回某语言下的分类映射，未配置时返回空映射
func (tc *TeamCategoriesConfig) CategoriesFor(lang string) map[int]string {
	if tc == nil {
		return map[int]string{}
	}
	if m, ok := tc.LangToCategories[lang]; ok {
		return m
	}
	return map[int]string{}
}

// SortedIDs 返回某语言下按 id 升序排列的分类 id 列表
func (tc *TeamCategoriesConfig) SortedIDs(lang string) []int {
	m := tc.CategoriesFor(lang)
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ParseTeamCategories 解析 team_categories 字段。
// 任何格式错误都返回 nil，调用方必须降级为单表渲染，绝不向用户报错。
func (c *Competition) ParseTeamCategories() *TeamCategoriesConfig {
	blob := strings.TrimSpace(c.TeamCategories)
	cfg := &TeamCategoriesConfig{
		LangToCategories: map[string]map[int]string{},
		Configurable:     true,
		Scoreboard:       ScoreboardAll,
	}
	if blob == "" {
		cfg.Configurable = false
		return cfg
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil
	}

	if v, ok := raw["CONFIGURABLE"]; ok {
		if err := json.Unmarshal(v, &cfg.Configurable); err != nil {
			return nil
		}
		delete(raw, "CONFIGURABLE")
	}
	if v, ok := raw["HIDDEN"]; ok {
		if err := json.Unmarshal(v, &cfg.Hidden); err != nil {
			return nil
		}
		delete(raw, "HIDDEN")
	}
	if v, ok := raw["SCOREBOARD"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil
		}
		if !validScoreboardModes[ScoreboardMode(s)] {
			return nil
		}
		cfg.Scoreboard = ScoreboardMode(s)
		delete(raw, "SCOREBOARD")
	}

	for lang, v := range raw {
		var categories map[string]string
		if err := json.Unmarshal(v, &categories); err != nil {
			return nil
		}
		parsed := make(map[int]string, len(categories))
		for idStr, name := range categories {
			id, err := strconv.Atoi(idStr)
			if err != nil {
				return nil
			}
			parsed[id] = name
		}
		cfg.LangToCategories[lang] = parsed
	}

	// HIDDEN 蕴含不可由队伍自行配置
	if cfg.Hidden {
		cfg.Configurable = false
	}
	return cfg
}
