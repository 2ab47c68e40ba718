package assemble

import (
	"testing"

	"github.com/interviewkit/retriever/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *core.Result {
	return &core.Result{
		Query: "reward shaping",
		Candidates: []core.Candidate{
			{DocumentID: "qa:1", Text: "reward shaping guides learning", Kind: core.KindQA, LexicalScore: 4.2, FinalRank: 1},
			{DocumentID: "note:2", Text: "notes on reward functions", Kind: core.KindNote, LexicalScore: 2.1, FinalRank: 2},
			{DocumentID: "qa:3", Text: "q-learning basics", Kind: core.KindQA, LexicalScore: 0.8, FinalRank: 3},
		},
	}
}

func TestAssemble_GroupsByKind(t *testing.T) {
	ctx := NewAssembler().Assemble(sampleResult())

	assert.Equal(t, "reward shaping", ctx.Query)
	assert.Equal(t, []string{"qa:1", "note:2", "qa:3"}, ctx.DocumentIDs)

	require.Len(t, ctx.Sections, 2)
	assert.Equal(t, core.KindQA, ctx.Sections[0].Kind)
	assert.Equal(t, core.KindNote, ctx.Sections[1].Kind)

	// Both QA excerpts land in the QA section, still in rank order.
	qa := ctx.Sections[0].Excerpts
	require.Len(t, qa, 2)
	assert.Equal(t, "qa:1", qa[0].DocumentID)
	assert.Equal(t, 1, qa[0].Rank)
	assert.Equal(t, "qa:3", qa[1].DocumentID)
}

func TestAssemble_BudgetDropsTail(t *testing.T) {
	result := sampleResult()
	// Enough for the first candidate only.
	first := len(result.Candidates[0].Text) + len(result.Candidates[0].DocumentID)
	ctx := NewAssembler(WithBudget(first + 5)).Assemble(result)

	assert.Equal(t, []string{"qa:1"}, ctx.DocumentIDs)
	require.Len(t, ctx.Sections, 1)
	assert.Len(t, ctx.Sections[0].Excerpts, 1)
}

func TestAssemble_BudgetNeverReordersRanks(t *testing.T) {
	result := sampleResult()
	// qa:3 alone would fit in this budget, but qa:1 ranks above it and
	// does not fit, so the cut happens at qa:1.
	ctx := NewAssembler(WithBudget(20)).Assemble(result)
	assert.Empty(t, ctx.DocumentIDs)
	assert.Empty(t, ctx.Sections)
}

func TestAssemble_EdgeCases(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		ctx := NewAssembler().Assemble(nil)
		assert.Empty(t, ctx.DocumentIDs)
		assert.Empty(t, ctx.Sections)
	})

	t.Run("empty result", func(t *testing.T) {
		ctx := NewAssembler().Assemble(&core.Result{Query: "q"})
		assert.Equal(t, "q", ctx.Query)
		assert.Empty(t, ctx.DocumentIDs)
	})

	t.Run("zero budget means unlimited", func(t *testing.T) {
		ctx := NewAssembler(WithBudget(0)).Assemble(sampleResult())
		assert.Len(t, ctx.DocumentIDs, 3)
	})
}

func TestRender(t *testing.T) {
	ctx := NewAssembler().Assemble(sampleResult())
	rendered := ctx.Render()

	assert.Contains(t, rendered, "【相关知识1】类型: qa")
	assert.Contains(t, rendered, "reward shaping guides learning")
	assert.Contains(t, rendered, "相关度得分: 4.20")

	assert.Empty(t, NewAssembler().Assemble(nil).Render())
}
