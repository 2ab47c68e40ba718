package assemble

import (
	"fmt"
	"strings"

	"github.com/interviewkit/retriever/core"
)

// Context is the assembled downstream payload for one retrieval: verbatim
// excerpts grouped by document kind, plus the flat ranked DocumentIDs list
// callers use to surface recommended items.
type Context struct {
	Query       string
	Sections    []Section
	DocumentIDs []string
}

// Section groups the excerpts of one document kind, in rank order.
type Section struct {
	Kind     core.DocKind
	Excerpts []Excerpt
}

// Excerpt is one candidate's verbatim text with its provenance.
type Excerpt struct {
	DocumentID   string
	Text         string
	LexicalScore float64
	Rank         int
}

// Assembler turns retrieval results into budgeted context payloads.
type Assembler struct {
	budget int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithBudget caps the accumulated excerpt size in bytes. Zero or negative
// means unlimited. Default is unlimited.
func WithBudget(budget int) Option {
	return func(a *Assembler) {
		a.budget = budget
	}
}

// NewAssembler creates a context assembler.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the context payload from a retrieval result. Candidates
// are taken strictly in rank order; once the running size would exceed the
// budget, that candidate and everything ranked below it is dropped, so a
// lower-ranked excerpt never displaces a higher-ranked one.
func (a *Assembler) Assemble(result *core.Result) *Context {
	ctx := &Context{DocumentIDs: []string{}}
	if result == nil {
		return ctx
	}
	ctx.Query = result.Query

	sections := make(map[core.DocKind]*Section)
	var order []core.DocKind
	var used int

	for _, candidate := range result.Candidates {
		cost := len(candidate.Text) + len(candidate.DocumentID)
		if a.budget > 0 && used+cost > a.budget {
			break
		}
		used += cost

		section, ok := sections[candidate.Kind]
		if !ok {
			section = &Section{Kind: candidate.Kind}
			sections[candidate.Kind] = section
			order = append(order, candidate.Kind)
		}
		section.Excerpts = append(section.Excerpts, Excerpt{
			DocumentID:   candidate.DocumentID,
			Text:         candidate.Text,
			LexicalScore: candidate.LexicalScore,
			Rank:         candidate.FinalRank,
		})
		ctx.DocumentIDs = append(ctx.DocumentIDs, candidate.DocumentID)
	}

	// Sections appear in order of their best-ranked member.
	for _, kind := range order {
		ctx.Sections = append(ctx.Sections, *sections[kind])
	}
	return ctx
}

// Render flattens the context into the prompt block consumed by the
// generation step.
func (c *Context) Render() string {
	if len(c.Sections) == 0 {
		return ""
	}

	var sb strings.Builder
	n := 0
	for _, section := range c.Sections {
		for _, excerpt := range section.Excerpts {
			n++
			fmt.Fprintf(&sb, "\n【相关知识%d】类型: %s\n", n, section.Kind)
			sb.WriteString(excerpt.Text)
			fmt.Fprintf(&sb, "\n相关度得分: %.2f", excerpt.LexicalScore)
		}
	}
	return strings.TrimPrefix(sb.String(), "\n")
}
