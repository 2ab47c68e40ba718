package kb

import (
	"strings"
	"testing"

	"github.com/interviewkit/retriever/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocuments_QA(t *testing.T) {
	t.Run("answered question yields one document", func(t *testing.T) {
		docs := BuildDocuments([]core.SourceRecord{{
			Key:        7,
			Kind:       core.KindQA,
			PromptText: "什么是乐观锁",
			AnswerText: "基于版本号的并发控制",
			Domain:     "数据库",
			Keywords:   "锁,并发",
		}})
		require.Len(t, docs, 1)

		doc := docs[0]
		assert.Equal(t, "qa:7", doc.ID)
		assert.Equal(t, core.KindQA, doc.Kind)
		assert.Contains(t, doc.Text, "【问题】什么是乐观锁")
		assert.Contains(t, doc.Text, "【答案】基于版本号的并发控制")
		assert.Contains(t, doc.Text, "【领域】数据库")
		assert.Contains(t, doc.Text, "【关键词】锁,并发")
		assert.Equal(t, "7", doc.Metadata["source_key"])
		assert.Equal(t, "数据库", doc.Metadata["domain"])
	})

	t.Run("unanswered question is skipped", func(t *testing.T) {
		docs := BuildDocuments([]core.SourceRecord{{
			Key:        8,
			Kind:       core.KindQA,
			PromptText: "讲讲MVCC",
			AnswerText: "   ",
		}})
		assert.Empty(t, docs)
	})

	t.Run("optional lines omitted when empty", func(t *testing.T) {
		docs := BuildDocuments([]core.SourceRecord{{
			Key:        9,
			Kind:       core.KindQA,
			PromptText: "q",
			AnswerText: "a",
		}})
		require.Len(t, docs, 1)
		assert.NotContains(t, docs[0].Text, "【领域】")
		assert.NotContains(t, docs[0].Text, "【关键词】")
	})
}

func TestBuildDocuments_Note(t *testing.T) {
	docs := BuildDocuments([]core.SourceRecord{{
		Key:      3,
		Kind:     core.KindNote,
		Title:    "GMP 模型",
		NoteType: "概念",
		NoteText: "G 是 goroutine，M 是线程，P 是处理器",
		Tags:     "go,调度",
	}})
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "note:3", doc.ID)
	assert.Equal(t, core.KindNote, doc.Kind)
	assert.True(t, strings.HasPrefix(doc.Text, "【笔记】GMP 模型\n"))
	assert.Contains(t, doc.Text, "【类型】概念")
	assert.Contains(t, doc.Text, "【标签】go,调度")
}

func TestBuildDocuments_PastQuery(t *testing.T) {
	docs := BuildDocuments([]core.SourceRecord{{
		Key:        12,
		Kind:       core.KindPastQuery,
		PromptText: "如何排查 goroutine 泄漏",
	}})
	require.Len(t, docs, 1)
	assert.Equal(t, "query:12", docs[0].ID)
	assert.Equal(t, "如何排查 goroutine 泄漏", docs[0].Text)
}

func TestBuildDocuments_StableIDsAndHashes(t *testing.T) {
	record := core.SourceRecord{
		Key:        1,
		Kind:       core.KindQA,
		PromptText: "q",
		AnswerText: "a",
	}

	first := BuildDocuments([]core.SourceRecord{record})
	second := BuildDocuments([]core.SourceRecord{record})
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].Hash(), second[0].Hash())

	// Changing the answer changes the hash, not the ID.
	record.AnswerText = "a revised"
	changed := BuildDocuments([]core.SourceRecord{record})
	require.Len(t, changed, 1)
	assert.Equal(t, first[0].ID, changed[0].ID)
	assert.NotEqual(t, first[0].Hash(), changed[0].Hash())
}

func TestBuildDocuments_UnknownKindSkipped(t *testing.T) {
	docs := BuildDocuments([]core.SourceRecord{{Key: 1, Kind: core.DocKind(99)}})
	assert.Empty(t, docs)
}
