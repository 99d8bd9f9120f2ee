// file: mappers/task_mapper.go
package mappers

import (
	"fmt"

	"skoljka/dto"
	"skoljka/models"
	"skoljka/services"
)

// CtaskStateName 任务在列表里的视觉状态
func CtaskStateName(state *services.CtaskState, chainStatus services.ChainStatus) string {
	switch {
	case state.IsSolved:
		return "solved"
	case state.IsLocked:
		return "locked"
	case chainStatus.Closed():
		return "closed"
	default:
		return "open"
	}
}

func MapCtaskState(state *services.CtaskState, chainStatus services.ChainStatus) dto.TaskStateResp {
	name := CtaskStateName(state, chainStatus)
	return dto.TaskStateResp{
		ID:              state.Ctask.ID,
		ChainPosition:   state.Ctask.ChainPosition,
		MaxScore:        state.Ctask.MaxScore,
		State:           name,
		CSSClass:        "ctask-" + name,
		SubmissionCount: state.SubmissionCount,
		IsSolved:        state.IsSolved,
	}
}

func MapChainItem(
	competition *models.Competition,
	chain *models.Chain,
	status services.ChainStatus,
	states []*services.CtaskState,
) dto.ChainItemResp {
	resp := dto.ChainItemResp{
		ID:       chain.ID,
		Name:     chain.Name,
		Category: chain.Category,
		Position: chain.Position,
		Status:   string(status),
	}
	for _, state := range states {
		resp.Ctasks = append(resp.Ctasks, MapCtaskState(state, status))
	}
	if next := services.NextTask(competition, chain, states); next != nil {
		resp.NextCtaskID = next.Ctask.ID
	}
	return resp
}

func MapTaskDetail(
	ctask *models.CompetitionTask,
	chain *models.Chain,
	state *services.CtaskState,
	submissions []models.Submission,
	maxSubmissions int,
) dto.TaskDetailResp {
	resp := dto.TaskDetailResp{
		ID:            ctask.ID,
		ChainID:       chain.ID,
		ChainName:     chain.Name,
		ChainPosition: ctask.ChainPosition,
		Name:          fmt.Sprintf("%s #%d", chain.Name, ctask.ChainPosition),
		Text:          ctask.Text,
		MaxScore:      ctask.MaxScore,
		IsSolved:      state.IsSolved,
	}
	for i := range submissions {
		if submissions[i].CtaskID != ctask.ID {
			continue
		}
		resp.Submissions = append(resp.Submissions, dto.SubmissionResp{
			ID:     submissions[i].ID,
			Result: submissions[i].Result,
			Score:  submissions[i].Score,
			Date:   submissions[i].Date.Format("2006-01-02 15:04:05"),
		})
	}
	resp.SubmissionsLeft = maxSubmissions - len(resp.Submissions)
	if resp.SubmissionsLeft < 0 {
		resp.SubmissionsLeft = 0
	}
	return resp
}
