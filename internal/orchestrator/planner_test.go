package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
	"github.com/fyrsmithlabs/docsmith/internal/task"
)

func TestPlannerBudgetShares(t *testing.T) {
	tests := []struct {
		total     int
		retrieval int
		analysis  int
		publish   int
	}{
		{20, 8, 4, 8},
		{10, 4, 2, 4},
		{7, 2, 1, 2},
		{5, 2, 1, 2},
		{1, 0, 0, 0},
	}

	tk := task.NewGenerate("DOCS", "a.ts", "")
	for _, tt := range tests {
		phases := NewPlanner(tt.total).Plan(tk)
		require.Len(t, phases, 3)
		assert.Equal(t, tt.retrieval, phases[0].StepBudget, "retrieval for B=%d", tt.total)
		assert.Equal(t, tt.analysis, phases[1].StepBudget, "analysis for B=%d", tt.total)
		assert.Equal(t, tt.publish, phases[2].StepBudget, "publish for B=%d", tt.total)

		sum := phases[0].StepBudget + phases[1].StepBudget + phases[2].StepBudget
		assert.LessOrEqual(t, sum, tt.total)
	}
}

func TestPlannerDefaultsBudget(t *testing.T) {
	assert.Equal(t, DefaultTotalStepBudget, NewPlanner(0).TotalBudget())
	assert.Equal(t, DefaultTotalStepBudget, NewPlanner(-3).TotalBudget())
	assert.Equal(t, 30, NewPlanner(30).TotalBudget())
}

func TestPlannerPhaseOrder(t *testing.T) {
	phases := NewPlanner(20).Plan(task.NewGenerate("DOCS", "a.ts", ""))
	require.Len(t, phases, 3)
	assert.Equal(t, PhaseRetrieval, phases[0].Name)
	assert.Equal(t, PhaseAnalysis, phases[1].Name)
	assert.Equal(t, PhasePublish, phases[2].Name)
	assert.Empty(t, phases[1].Required, "analysis is ungated")
}

func TestPlannerRequiredActions(t *testing.T) {
	tests := []struct {
		name      string
		task      task.DocumentationTask
		retrieval []actions.Name
		publish   []actions.Name
	}{
		{
			name: "generate",
			task: task.NewGenerate("DOCS", "a.ts", ""),
			retrieval: []actions.Name{
				actions.ActionReadFile,
				actions.ActionListInternalDependencies,
				actions.ActionGetHistory,
			},
			publish: []actions.Name{
				actions.ActionConvertToMarkup,
				actions.ActionCreatePage,
			},
		},
		{
			name: "update with known page",
			task: task.NewUpdate("DOCS", "4f2a91c", "12345"),
			retrieval: []actions.Name{
				actions.ActionGetPage,
				actions.ActionDiffCommit,
			},
			publish: []actions.Name{
				actions.ActionConvertToMarkup,
				actions.ActionUpdatePage,
			},
		},
		{
			name: "update discovering page",
			task: task.NewUpdate("DOCS", "4f2a91c", ""),
			retrieval: []actions.Name{
				actions.ActionDiffCommit,
				actions.ActionFindPageByTitle,
			},
			publish: []actions.Name{
				actions.ActionConvertToMarkup,
				actions.ActionUpdatePage,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phases := NewPlanner(20).Plan(tt.task)
			assert.Equal(t, tt.retrieval, phases[0].Required)
			assert.Equal(t, tt.publish, phases[2].Required)
		})
	}
}
