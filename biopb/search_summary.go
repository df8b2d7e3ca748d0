// Package biopb holds the wire-format messages exchanged with tooling
// downstream of a search run.
package biopb

import "github.com/gogo/protobuf/proto"

// SearchSummary is the run-level aggregate a search driver emits once
// all workers have joined: counts a caller needs to sanity-check a run
// without re-reading every query's result store.
type SearchSummary struct {
	ProteinsSearched  int64 `protobuf:"varint,1,opt,name=proteins_searched,json=proteinsSearched,proto3" json:"proteins_searched,omitempty"`
	PeptidesScored    int64 `protobuf:"varint,2,opt,name=peptides_scored,json=peptidesScored,proto3" json:"peptides_scored,omitempty"`
	QueriesSearched   int64 `protobuf:"varint,3,opt,name=queries_searched,json=queriesSearched,proto3" json:"queries_searched,omitempty"`
	TotalMatches      int64 `protobuf:"varint,4,opt,name=total_matches,json=totalMatches,proto3" json:"total_matches,omitempty"`
	TotalDecoyMatches int64 `protobuf:"varint,5,opt,name=total_decoy_matches,json=totalDecoyMatches,proto3" json:"total_decoy_matches,omitempty"`
}

func (m *SearchSummary) Reset()         { *m = SearchSummary{} }
func (m *SearchSummary) String() string { return proto.CompactTextString(m) }
func (*SearchSummary) ProtoMessage()    {}
