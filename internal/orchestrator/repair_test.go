package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
)

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"123", true},
		{"0", true},
		{"[Retrieved pageId]", true},
		{"[anything the model invented]", true},
		{"[title]", true},
		{"98765", false},
		{"Billing Service", false},
		{"", false},
		{"[unclosed", false},
		{"[a][b]", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPlaceholder(tt.value, DefaultPlaceholderSentinels), "value %q", tt.value)
	}
}

func TestIsPlaceholderCustomSentinels(t *testing.T) {
	sentinels := []string{"TBD"}
	assert.True(t, IsPlaceholder("TBD", sentinels))
	assert.False(t, IsPlaceholder("123", sentinels), "default sentinels must not leak in")
	assert.True(t, IsPlaceholder("[made up]", sentinels), "bracketed tokens are always placeholders")
}

func TestRepairArgumentsReplacesPlaceholders(t *testing.T) {
	args := map[string]any{
		"page_id": "123",
		"title":   "[Retrieved title]",
		"version": float64(0),
		"content": "<p>doc</p>",
	}
	ent := Entities{PageID: "98765", PageTitle: "Billing Service", PageVersion: 7}

	repaired, count := RepairArguments(args, ent, DefaultPlaceholderSentinels)

	assert.Equal(t, 3, count)
	assert.Equal(t, "98765", repaired["page_id"])
	assert.Equal(t, "Billing Service", repaired["title"])
	assert.Equal(t, 7, repaired["version"])
	assert.Equal(t, "<p>doc</p>", repaired["content"], "non-placeholder arguments pass through")
}

func TestRepairArgumentsDoesNotMutateInput(t *testing.T) {
	args := map[string]any{"page_id": "123"}
	ent := Entities{PageID: "98765"}

	_, count := RepairArguments(args, ent, DefaultPlaceholderSentinels)

	assert.Equal(t, 1, count)
	assert.Equal(t, "123", args["page_id"])
}

func TestRepairArgumentsIsIdempotent(t *testing.T) {
	args := map[string]any{"page_id": "123", "title": "[title]", "version": "0"}
	ent := Entities{PageID: "98765", PageTitle: "Billing", PageVersion: 7}

	once, count := RepairArguments(args, ent, DefaultPlaceholderSentinels)
	require.Equal(t, 3, count)

	twice, count := RepairArguments(once, ent, DefaultPlaceholderSentinels)
	assert.Equal(t, 0, count)
	assert.Equal(t, once, twice)
}

func TestRepairArgumentsNeedsDiscoveredEntities(t *testing.T) {
	args := map[string]any{"page_id": "123", "title": "[title]", "version": "0"}

	repaired, count := RepairArguments(args, Entities{}, DefaultPlaceholderSentinels)

	assert.Equal(t, 0, count, "nothing discovered means nothing to repair with")
	assert.Equal(t, args, repaired)
}

func TestRepairArgumentsKeepsRealValues(t *testing.T) {
	args := map[string]any{"page_id": "55555", "title": "Existing Title", "version": 4}
	ent := Entities{PageID: "98765", PageTitle: "Billing", PageVersion: 7}

	repaired, count := RepairArguments(args, ent, DefaultPlaceholderSentinels)

	assert.Equal(t, 0, count)
	assert.Equal(t, "55555", repaired["page_id"])
	assert.Equal(t, "Existing Title", repaired["title"])
	assert.Equal(t, 4, repaired["version"])
}

func TestRepairRecordOnlyTouchesUpdatePage(t *testing.T) {
	ent := Entities{PageID: "98765"}

	create := Record{
		Action:    actions.ActionCreatePage,
		Arguments: map[string]any{"page_id": "123"},
	}
	assert.Equal(t, "123", RepairRecord(create, ent, DefaultPlaceholderSentinels).Arguments["page_id"])

	update := Record{
		Action:    actions.ActionUpdatePage,
		Arguments: map[string]any{"page_id": "123"},
	}
	assert.Equal(t, "98765", RepairRecord(update, ent, DefaultPlaceholderSentinels).Arguments["page_id"])
}
