package orchestrator

import (
	"github.com/fyrsmithlabs/docsmith/internal/actions"
	"github.com/fyrsmithlabs/docsmith/internal/task"
)

// DefaultTotalStepBudget is the engine-round budget B when none is
// configured.
const DefaultTotalStepBudget = 20

// Budget shares per phase, applied as floor(share * B).
const (
	retrievalShareNum = 4
	analysisShareNum  = 2
	publishShareNum   = 4
	shareDen          = 10
)

// Planner computes the ordered phase list for a task. Planning is pure
// computation over validated input; it has no error conditions.
type Planner struct {
	totalBudget int
}

// NewPlanner creates a planner with the given total step budget.
func NewPlanner(totalBudget int) Planner {
	if totalBudget <= 0 {
		totalBudget = DefaultTotalStepBudget
	}
	return Planner{totalBudget: totalBudget}
}

// TotalBudget returns the configured budget B.
func (p Planner) TotalBudget() int {
	return p.totalBudget
}

// Plan returns the phases in execution order: Retrieval, Analysis, Publish.
func (p Planner) Plan(t task.DocumentationTask) []Phase {
	return []Phase{
		{
			Name:       PhaseRetrieval,
			StepBudget: p.totalBudget * retrievalShareNum / shareDen,
			Required:   retrievalRequired(t),
		},
		{
			Name:       PhaseAnalysis,
			StepBudget: p.totalBudget * analysisShareNum / shareDen,
		},
		{
			Name:       PhasePublish,
			StepBudget: p.totalBudget * publishShareNum / shareDen,
			Required:   publishRequired(t),
		},
	}
}

func retrievalRequired(t task.DocumentationTask) []actions.Name {
	if t.Kind == task.KindGenerate {
		return []actions.Name{
			actions.ActionReadFile,
			actions.ActionListInternalDependencies,
			actions.ActionGetHistory,
		}
	}
	if t.PageID != "" {
		return []actions.Name{
			actions.ActionGetPage,
			actions.ActionDiffCommit,
		}
	}
	return []actions.Name{
		actions.ActionDiffCommit,
		actions.ActionFindPageByTitle,
	}
}

func publishRequired(t task.DocumentationTask) []actions.Name {
	if t.Kind == task.KindGenerate {
		return []actions.Name{
			actions.ActionConvertToMarkup,
			actions.ActionCreatePage,
		}
	}
	return []actions.Name{
		actions.ActionConvertToMarkup,
		actions.ActionUpdatePage,
	}
}

// publishCritical is the subset of publish actions whose absence means the
// documentation write itself cannot be confirmed.
func publishCritical(t task.DocumentationTask) []actions.Name {
	return publishRequired(t)
}
