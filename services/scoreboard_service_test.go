// file: services/scoreboard_service_test.go
package services

import (
	"net/url"
	"testing"

	"skoljka/models"
)

func categoriesConfig(mode models.ScoreboardMode) *models.TeamCategoriesConfig {
	return &models.TeamCategoriesConfig{
		LangToCategories: map[string]map[int]string{
			"en": {1: "Red", 2: "Green", 3: "Blue"},
		},
		Configurable: true,
		Scoreboard:   mode,
	}
}

// 六支队伍，两两一组分属 Red/Green/Blue
func sixTeams() []TeamRow {
	return []TeamRow{
		{ID: 1, Name: "c1", Category: 1, Score: 100, ActualScore: 100, IsNormal: true},
		{ID: 2, Name: "c2", Category: 1, Score: 105, ActualScore: 105, IsNormal: true},
		{ID: 3, Name: "c3", Category: 2, Score: 200, ActualScore: 200, IsNormal: true},
		{ID: 4, Name: "c4", Category: 2, Score: 205, ActualScore: 205, IsNormal: true},
		{ID: 5, Name: "c5", Category: 3, Score: 300, ActualScore: 300, IsNormal: true},
		{ID: 6, Name: "c6", Category: 3, Score: 305, ActualScore: 305, IsNormal: true},
	}
}

func tableNames(table ScoreboardTable) []string {
	names := make([]string, 0, len(table.Entries))
	for _, e := range table.Entries {
		names = append(names, e.Name)
	}
	return names
}

func equalNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestBuildScoreboardAllMode(t *testing.T) {
	cfg := categoriesConfig(models.ScoreboardAll)
	tables := BuildScoreboard(cfg, "en", sixTeams(), nil, url.Values{}, false, SortByScore)

	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	if tables[0].Key != "main" || tables[0].SortKey != "sort" {
		t.Errorf("main table key/sortKey = %q/%q", tables[0].Key, tables[0].SortKey)
	}
	want := []string{"c6", "c5", "c4", "c3", "c2", "c1"}
	if got := tableNames(tables[0]); !equalNames(got, want) {
		t.Errorf("main table order = %v, want %v", got, want)
	}
}

func TestBuildScoreboardNonzeroEach(t *testing.T) {
	cfg := categoriesConfig(models.ScoreboardAllAndNonzeroEach)
	viewer := &models.Team{ID: 3, Category: 2}
	tables := BuildScoreboard(cfg, "en", sixTeams(), viewer, url.Values{}, false, SortByScore)

	if len(tables) != 4 {
		t.Fatalf("got %d tables, want main + 3 sub-tables", len(tables))
	}
	if got := tableNames(tables[0]); !equalNames(got, []string{"c6", "c5", "c4", "c3", "c2", "c1"}) {
		t.Errorf("main table order = %v", got)
	}

	// 子表按 "0"、"1"、"2" 编号，各自独立的排序参数
	wantSubs := []struct {
		key, sortKey, title string
		names               []string
	}{
		{"0", "sort1", "Red", []string{"c2", "c1"}},
		{"1", "sort2", "Green", []string{"c4", "c3"}},
		{"2", "sort3", "Blue", []string{"c6", "c5"}},
	}
	for i, want := range wantSubs {
		table := tables[i+1]
		if table.Key != want.key || table.SortKey != want.sortKey || table.Title != want.title {
			t.Errorf("sub-table %d = %q/%q/%q, want %q/%q/%q",
				i, table.Key, table.SortKey, table.Title, want.key, want.sortKey, want.title)
		}
		if got := tableNames(table); !equalNames(got, want.names) {
			t.Errorf("sub-table %q order = %v, want %v", want.key, got, want.names)
		}
	}
}

func TestBuildScoreboardMyCategory(t *testing.T) {
	cfg := categoriesConfig(models.ScoreboardAllAndMyCategory)

	viewer := &models.Team{ID: 3, Category: 2}
	tables := BuildScoreboard(cfg, "en", sixTeams(), viewer, url.Values{}, false, SortByScore)
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want main + my category", len(tables))
	}
	if tables[1].Title != "Green" {
		t.Errorf("sub-table title = %q, want Green", tables[1].Title)
	}

	// 没有队伍或分类无效时只有主表
	for _, viewer := range []*models.Team{nil, {ID: 9, Category: 0}, {ID: 9, Category: 42}} {
		tables := BuildScoreboard(cfg, "en", sixTeams(), viewer, url.Values{}, false, SortByScore)
		if len(tables) != 1 {
			t.Errorf("viewer %+v: got %d tables, want 1", viewer, len(tables))
		}
	}
}

func TestBuildScoreboardMyThenRest(t *testing.T) {
	cfg := categoriesConfig(models.ScoreboardAllAndMyThenRest)
	viewer := &models.Team{ID: 3, Category: 2}
	tables := BuildScoreboard(cfg, "en", sixTeams(), viewer, url.Values{}, false, SortByScore)

	if len(tables) != 4 {
		t.Fatalf("got %d tables, want 4", len(tables))
	}
	// 自己的分类排第一，其余按 id 升序
	wantTitles := []string{"Green", "Red", "Blue"}
	for i, want := range wantTitles {
		if tables[i+1].Title != want {
			t.Errorf("sub-table %d title = %q, want %q", i, tables[i+1].Title, want)
		}
	}
}

func TestBuildScoreboardNonzeroFiltersSubTablesOnly(t *testing.T) {
	cfg := categoriesConfig(models.ScoreboardAllAndNonzeroMy)
	teams := []TeamRow{
		{ID: 1, Name: "scored", Category: 1, Score: 50, IsNormal: true},
		{ID: 2, Name: "zero", Category: 1, Score: 0, IsNormal: true},
	}
	viewer := &models.Team{ID: 1, Category: 1}
	tables := BuildScoreboard(cfg, "en", teams, viewer, url.Values{}, false, SortByScore)

	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	// 主表保留零分队伍
	if got := tableNames(tables[0]); !equalNames(got, []string{"scored", "zero"}) {
		t.Errorf("main table = %v", got)
	}
	// 子表过滤零分队伍
	if got := tableNames(tables[1]); !equalNames(got, []string{"scored"}) {
		t.Errorf("sub-table = %v", got)
	}
}

func TestBuildScoreboardEmptyGroupDropped(t *testing.T) {
	cfg := categoriesConfig(models.ScoreboardAllAndNonzeroEach)
	teams := []TeamRow{
		{ID: 1, Name: "red-zero", Category: 1, Score: 0, IsNormal: true},
		{ID: 2, Name: "green", Category: 2, Score: 10, IsNormal: true},
	}
	tables := BuildScoreboard(cfg, "en", teams, nil, url.Values{}, false, SortByScore)

	// Red 组全零分、Blue 组没有队伍，都不该出现
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if tables[1].Title != "Green" || tables[1].Key != "0" {
		t.Errorf("sub-table = %q/%q, want Green/0", tables[1].Title, tables[1].Key)
	}
}

func TestBuildScoreboardNilConfigFallsBack(t *testing.T) {
	tables := BuildScoreboard(nil, "en", sixTeams(), nil, url.Values{}, false, SortByScore)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	if tables[0].ShowCategory {
		t.Error("ShowCategory = true without categories")
	}
	for _, e := range tables[0].Entries {
		if e.Category != "" {
			t.Errorf("entry %q has category %q", e.Name, e.Category)
		}
	}
}

func TestBuildScoreboardIndependentSubTableSort(t *testing.T) {
	cfg := categoriesConfig(models.ScoreboardAllAndPerCategory)
	query := url.Values{}
	query.Set("sort1", SortByName)
	tables := BuildScoreboard(cfg, "en", sixTeams(), nil, query, false, SortByScore)

	// 主表仍按得分
	if got := tableNames(tables[0]); !equalNames(got, []string{"c6", "c5", "c4", "c3", "c2", "c1"}) {
		t.Errorf("main table order = %v", got)
	}
	// Red 子表按名字
	if got := tableNames(tables[1]); !equalNames(got, []string{"c1", "c2"}) {
		t.Errorf("sub-table sort1=name order = %v", got)
	}
	// Green 子表不受影响
	if got := tableNames(tables[2]); !equalNames(got, []string{"c4", "c3"}) {
		t.Errorf("sub-table 1 order = %v", got)
	}
}

func TestBuildScoreboardSortallFallback(t *testing.T) {
	cfg := categoriesConfig(models.ScoreboardAllAndPerCategory)
	query := url.Values{}
	query.Set("sortall", SortByName)
	query.Set("sort2", SortByScore)
	tables := BuildScoreboard(cfg, "en", sixTeams(), nil, query, false, SortByScore)

	if got := tableNames(tables[0]); !equalNames(got, []string{"c1", "c2", "c3", "c4", "c5", "c6"}) {
		t.Errorf("main table order = %v", got)
	}
	// 显式参数优先于 sortall
	if got := tableNames(tables[2]); !equalNames(got, []string{"c4", "c3"}) {
		t.Errorf("sub-table sort2=score order = %v", got)
	}
}

func TestMakeTableTiedPositions(t *testing.T) {
	teams := []TeamRow{
		{ID: 1, Name: "a", Score: 10, IsNormal: true},
		{ID: 2, Name: "b", Score: 10, IsNormal: true},
		{ID: 3, Name: "c", Score: 5, IsNormal: true},
	}
	table := makeTable("main", "sort", 0, teams, nil, false, url.Values{}, false, SortByScore)

	wantPositions := []int{1, 1, 3}
	for i, e := range table.Entries {
		if e.Position != wantPositions[i] {
			t.Errorf("entry %q position = %d, want %d", e.Name, e.Position, wantPositions[i])
		}
	}
}

func TestMakeTableAdminTeamsDoNotAdvancePosition(t *testing.T) {
	teams := []TeamRow{
		{ID: 1, Name: "staff", Score: 99, IsNormal: false},
		{ID: 2, Name: "a", Score: 10, IsNormal: true},
		{ID: 3, Name: "b", Score: 5, IsNormal: true},
	}
	table := makeTable("main", "sort", 0, teams, nil, false, url.Values{}, false, SortByScore)

	// 非普通队伍不占名次，后面的普通队伍从 1 开始
	if table.Entries[1].Name != "a" || table.Entries[1].Position != 1 {
		t.Errorf("entry a: %+v, want position 1", table.Entries[1])
	}
	if table.Entries[2].Position != 2 {
		t.Errorf("entry b position = %d, want 2", table.Entries[2].Position)
	}
}

func TestMakeTableNameSortUsesRowIndex(t *testing.T) {
	teams := []TeamRow{
		{ID: 1, Name: "b", Score: 10, IsNormal: true},
		{ID: 2, Name: "a", Score: 10, IsNormal: true},
	}
	query := url.Values{}
	query.Set("sort", SortByName)
	table := makeTable("main", "sort", 0, teams, nil, false, query, false, SortByScore)

	if table.Entries[0].Name != "a" || table.Entries[0].Position != 1 {
		t.Errorf("first entry = %+v", table.Entries[0])
	}
	if table.Entries[1].Name != "b" || table.Entries[1].Position != 2 {
		t.Errorf("second entry = %+v", table.Entries[1])
	}
}

func TestMakeTableInvalidCategoryLabel(t *testing.T) {
	categories := map[int]string{1: "Red"}
	teams := []TeamRow{
		{ID: 1, Name: "ghost", Category: 42, Score: 10, IsNormal: true},
	}
	table := makeTable("main", "sort", 0, teams, categories, true, url.Values{}, false, SortByScore)

	e := table.Entries[0]
	if e.Category != "Invalid category" {
		t.Errorf("public label = %q", e.Category)
	}
	if e.CategoryAdmin != "Invalid category #42" {
		t.Errorf("admin label = %q", e.CategoryAdmin)
	}
	if e.IsCategoryValid {
		t.Error("IsCategoryValid = true for unknown category")
	}
}

func TestSortTeamsAdminOnlyKeys(t *testing.T) {
	teams := []TeamRow{
		{ID: 1, Score: 5, ActualScore: 100},
		{ID: 2, Score: 10, ActualScore: 50},
	}

	// 非管理员请求 actual_score 时回落到按得分排序
	rows := append([]TeamRow(nil), teams...)
	sortTeams(rows, SortByActualScore, false)
	if rows[0].ID != 2 {
		t.Errorf("non-admin actual_score sort: first = %d, want 2", rows[0].ID)
	}

	rows = append([]TeamRow(nil), teams...)
	sortTeams(rows, SortByActualScore, true)
	if rows[0].ID != 1 {
		t.Errorf("admin actual_score sort: first = %d, want 1", rows[0].ID)
	}
}

func TestSortTeamsTiebreakByID(t *testing.T) {
	teams := []TeamRow{
		{ID: 7, Score: 10},
		{ID: 2, Score: 10},
		{ID: 5, Score: 10},
	}
	sortTeams(teams, SortByScore, false)
	want := []uint32{2, 5, 7}
	for i := range teams {
		if teams[i].ID != want[i] {
			t.Fatalf("tiebreak order = %v, want %v", teams, want)
		}
	}
}
