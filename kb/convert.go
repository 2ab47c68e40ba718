package kb

import (
	"strconv"
	"strings"

	"github.com/interviewkit/retriever/core"
)

// BuildDocuments converts source records into retrievable documents.
// QA records without an answer yield nothing: an unanswered question has no
// content worth surfacing, so it is skipped rather than rejected. Every
// other record yields exactly one document.
func BuildDocuments(records []core.SourceRecord) []core.Document {
	docs := make([]core.Document, 0, len(records))
	for _, record := range records {
		if doc, ok := buildDocument(record); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

func buildDocument(record core.SourceRecord) (core.Document, bool) {
	switch record.Kind {
	case core.KindQA:
		if strings.TrimSpace(record.AnswerText) == "" {
			return core.Document{}, false
		}
		return qaDocument(record), true
	case core.KindNote:
		return noteDocument(record), true
	case core.KindPastQuery:
		return queryDocument(record), true
	default:
		return core.Document{}, false
	}
}

// qaDocument assembles the labeled question/answer layout the knowledge
// base uses for QA pairs. Domain and keyword lines join the text so
// lexical matching sees them too, not only the metadata.
func qaDocument(record core.SourceRecord) core.Document {
	var sb strings.Builder
	sb.WriteString("【问题】" + record.PromptText + "\n")
	sb.WriteString("【答案】" + record.AnswerText)
	if record.Domain != "" {
		sb.WriteString("\n【领域】" + record.Domain)
	}
	if record.Keywords != "" {
		sb.WriteString("\n【关键词】" + record.Keywords)
	}

	return core.Document{
		ID:   core.DocumentID(core.KindQA, record.Key),
		Text: sb.String(),
		Kind: core.KindQA,
		Metadata: map[string]string{
			"source_key": strconv.FormatInt(record.Key, 10),
			"domain":     record.Domain,
			"keywords":   record.Keywords,
		},
	}
}

func noteDocument(record core.SourceRecord) core.Document {
	var sb strings.Builder
	sb.WriteString("【笔记】" + record.Title + "\n")
	sb.WriteString("【类型】" + record.NoteType + "\n")
	sb.WriteString("【内容】" + record.NoteText)
	if record.Tags != "" {
		sb.WriteString("\n【标签】" + record.Tags)
	}

	return core.Document{
		ID:   core.DocumentID(core.KindNote, record.Key),
		Text: sb.String(),
		Kind: core.KindNote,
		Metadata: map[string]string{
			"source_key": strconv.FormatInt(record.Key, 10),
			"note_type":  record.NoteType,
			"tags":       record.Tags,
		},
	}
}

// queryDocument keeps past queries verbatim. They are short and already
// phrased the way future queries will be phrased.
func queryDocument(record core.SourceRecord) core.Document {
	return core.Document{
		ID:   core.DocumentID(core.KindPastQuery, record.Key),
		Text: record.PromptText,
		Kind: core.KindPastQuery,
		Metadata: map[string]string{
			"source_key": strconv.FormatInt(record.Key, 10),
		},
	}
}
