// file: services/scoreboard_service.go
package services

import (
	"fmt"
	"log"
	"net/url"
	"sort"

	"skoljka/database"
	"skoljka/models"
)

// 排序方式，取自每个表自己的 GET 参数
const (
	SortByScore       = "score"
	SortByName        = "name"
	SortByActualScore = "actual_score" // 仅管理员：冻结前也看真实得分
	SortByCategory    = "category"     // 仅管理员
)

// TeamRow 排行榜计算的输入行
type TeamRow struct {
	ID          uint32
	Name        string
	Category    int
	Score       int // cache_score_before_freeze，对外展示的分数
	ActualScore int // cache_score
	IsNormal    bool
}

// ScoreboardEntry 渲染好的一行
type ScoreboardEntry struct {
	TeamID   uint32 `json:"team_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	// 分类展示名；无效分类对外显示 "Invalid category"，编号只给管理员看
	Category        string `json:"category,omitempty"`
	CategoryAdmin   string `json:"category_admin,omitempty"`
	IsCategoryValid bool   `json:"is_category_valid"`
	Score           int    `json:"score"`
}

// ScoreboardTable 一张独立排序的表。Key "main" 是主表，子表按 "0"、"1" 编号。
// SortKey 是控制这张表排序的 GET 参数名，各表互不影响。
type ScoreboardTable struct {
	Key          string           `json:"key"`
	Title        string           `json:"title,omitempty"`
	SortKey      string           `json:"sort_key"`
	CategoryID   int              `json:"category_id,omitempty"`
	ShowCategory bool             `json:"show_category"`
	Entries      []ScoreboardEntry `json:"entries"`
}

// BuildScoreboard 按 SCOREBOARD 模式把队伍拆成主表加若干子表。
//
// cfg 为 nil（配置无法解析）时退化为只有主表，绝不报错。主表永远包含全部
// 队伍；NONZERO_* 模式的零分过滤只作用于子表。分类 id 为 0 或不在配置里
// 的队伍不会进入任何子表，包括浏览者自己的。
func BuildScoreboard(
	cfg *models.TeamCategoriesConfig,
	lang string,
	teams []TeamRow,
	viewer *models.Team,
	query url.Values,
	isAdmin bool,
	defaultSort string,
) []ScoreboardTable {
	categories := cfg.CategoriesFor(lang)
	showCategory := len(categories) > 0 && (!cfg.Hidden || isAdmin)

	tables := []ScoreboardTable{
		makeTable("main", "sort", 0, teams, categories, showCategory, query, isAdmin, defaultSort),
	}

	mode := models.ScoreboardAll
	if cfg != nil {
		mode = cfg.Scoreboard
	}

	viewerCategory := 0
	if viewer != nil {
		if _, ok := categories[viewer.Category]; ok {
			viewerCategory = viewer.Category
		}
	}

	var subCategories []int
	switch mode {
	case models.ScoreboardAllAndMyCategory, models.ScoreboardAllAndNonzeroMy:
		if viewerCategory != 0 {
			subCategories = []int{viewerCategory}
		}
	case models.ScoreboardAllAndPerCategory, models.ScoreboardAllAndNonzeroEach:
		subCategories = cfg.SortedIDs(lang)
	case models.ScoreboardAllAndMyThenRest, models.ScoreboardAllAndNonzeroMyThenRest:
		subCategories = cfg.SortedIDs(lang)
		if viewerCategory != 0 {
			sort.SliceStable(subCategories, func(i, j int) bool {
				iMine := subCategories[i] == viewerCategory
				jMine := subCategories[j] == viewerCategory
				if iMine != jMine {
					return iMine
				}
				return subCategories[i] < subCategories[j]
			})
		}
	}

	nonzeroOnly := mode == models.ScoreboardAllAndNonzeroMy ||
		mode == models.ScoreboardAllAndNonzeroEach ||
		mode == models.ScoreboardAllAndNonzeroMyThenRest

	index := 0
	for _, category := range subCategories {
		if category == 0 {
			continue
		}
		var group []TeamRow
		for _, team := range teams {
			if team.Category != category {
				continue
			}
			if nonzeroOnly && team.Score == 0 {
				continue
			}
			group = append(group, team)
		}
		if len(group) == 0 {
			continue
		}
		table := makeTable(
			fmt.Sprintf("%d", index),
			fmt.Sprintf("sort%d", category),
			category,
			group,
			categories,
			showCategory,
			query,
			isAdmin,
			defaultSort,
		)
		table.Title = categories[category]
		tables = append(tables, table)
		index++
	}

	return tables
}

func makeTable(
	key, sortKey string,
	categoryID int,
	teams []TeamRow,
	categories map[int]string,
	showCategory bool,
	query url.Values,
	isAdmin bool,
	defaultSort string,
) ScoreboardTable {
	rows := make([]TeamRow, len(teams))
	copy(rows, teams)

	orderBy := query.Get(sortKey)
	if orderBy == "" {
		orderBy = query.Get("sortall")
	}
	if orderBy == "" {
		orderBy = defaultSort
	}
	sortTeams(rows, orderBy, isAdmin)

	// 并列得分共享名次；按名字排序时名次就是行号
	lastScore := -1
	lastPosition := 1
	position := 1
	entries := make([]ScoreboardEntry, 0, len(rows))
	for i, team := range rows {
		if team.IsNormal && team.Score != lastScore {
			lastPosition = position
		}
		entryPosition := lastPosition
		if orderBy == SortByName {
			entryPosition = i + 1
		}

		entry := ScoreboardEntry{
			TeamID:   team.ID,
			Name:     team.Name,
			Position: entryPosition,
			Score:    team.Score,
		}
		if len(categories) > 0 {
			if name, ok := categories[team.Category]; ok {
				entry.Category = name
				entry.CategoryAdmin = name
				entry.IsCategoryValid = true
			} else {
				// 编号不对外公开，只进管理员视图
				entry.Category = "Invalid category"
				entry.CategoryAdmin = fmt.Sprintf("Invalid category #%d", team.Category)
			}
		}
		if team.IsNormal {
			lastScore = team.Score
			position++
		}
		entries = append(entries, entry)
	}

	return ScoreboardTable{
		Key:          key,
		SortKey:      sortKey,
		CategoryID:   categoryID,
		ShowCategory: showCategory,
		Entries:      entries,
	}
}

// sortTeams 稳定排序，次级键恒为队伍 id 升序
func sortTeams(teams []TeamRow, orderBy string, isAdmin bool) {
	less := func(i, j TeamRow) bool {
		if i.Score != j.Score {
			return i.Score > j.Score
		}
		return i.ID < j.ID
	}
	switch {
	case orderBy == SortByActualScore && isAdmin:
		less = func(i, j TeamRow) bool {
			if i.ActualScore != j.ActualScore {
				return i.ActualScore > j.ActualScore
			}
			return i.ID < j.ID
		}
	case orderBy == SortByCategory && isAdmin:
		less = func(i, j TeamRow) bool {
			if i.Category != j.Category {
				return i.Category < j.Category
			}
			return i.ID < j.ID
		}
	case orderBy == SortByName:
		less = func(i, j TeamRow) bool {
			if i.Name != j.Name {
				return i.Name < j.Name
			}
			return i.ID < j.ID
		}
	}
	sort.SliceStable(teams, func(i, j int) bool { return less(teams[i], teams[j]) })
}

// InvalidateScoreboardCache 清掉某赛事的全部排行榜缓存，得分变化后调用
func InvalidateScoreboardCache(competitionID uint32) {
	if database.RDB == nil {
		return
	}
	pattern := fmt.Sprintf("scoreboard:%d:*", competitionID)
	keys, err := database.RDB.Keys(database.Ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		database.RDB.Del(database.Ctx, keys...)
		log.Printf("Cleared %d scoreboard cache keys from Redis.", len(keys))
	}
}
