package search

import "github.com/interviewkit/retriever/core"

// RetrievalMonitor provides hooks to observe the retrieval pipeline.
// Implement this interface to track intermediate steps and results during retrieval.
type RetrievalMonitor interface {
	Start(query string)
	AfterEmbedding(dimensions int)
	AfterSemanticSearch(documentIDs []string)
	AfterRerank(candidates []core.Candidate)
	Finish(result *core.Result)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterEmbedding(_ int)            {}
func (n *noopMonitor) AfterSemanticSearch(_ []string)  {}
func (n *noopMonitor) AfterRerank(_ []core.Candidate)  {}
func (n *noopMonitor) Finish(_ *core.Result)           {}
