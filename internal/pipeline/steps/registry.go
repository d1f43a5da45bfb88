// Package steps provides the document dependency table and the resolver that
// orders a requested set of documents so every in-set dependency comes first.
package steps

import (
	"github.com/jonathan/docpack/internal/types"
)

// DependencyTable maps a document type to the document types it reads from.
type DependencyTable map[types.DocumentType][]types.DocumentType

// defaultTable is the process-wide dependency table. It is never mutated;
// DefaultTable hands out copies.
var defaultTable = DependencyTable{
	types.DocCoverLetter:           {},
	types.DocOfferAnalysis:         {},
	types.DocMarketAnalysis:        {},
	types.DocExplanationMemo:       {types.DocOfferAnalysis},
	types.DocCompetitiveComparison: {types.DocMarketAnalysis},
	types.DocNegotiationStrategy:   {types.DocOfferAnalysis, types.DocMarketAnalysis},
	types.DocRiskAssessment:        {types.DocOfferAnalysis, types.DocMarketAnalysis},
	types.DocClientSummary:         {types.DocOfferAnalysis, types.DocNegotiationStrategy, types.DocRiskAssessment},
}

// DefaultTable returns a copy of the built-in dependency table.
func DefaultTable() DependencyTable {
	return defaultTable.Clone()
}

// Clone returns a deep copy of the table.
func (t DependencyTable) Clone() DependencyTable {
	out := make(DependencyTable, len(t))
	for k, deps := range t {
		out[k] = append([]types.DocumentType{}, deps...)
	}
	return out
}

// DependenciesOf returns the direct dependencies of docType.
func (t DependencyTable) DependenciesOf(docType types.DocumentType) []types.DocumentType {
	return append([]types.DocumentType{}, t[docType]...)
}

// Dependents returns the document types that directly depend on docType,
// in AllDocumentTypes order.
func (t DependencyTable) Dependents(docType types.DocumentType) []types.DocumentType {
	var out []types.DocumentType
	for _, candidate := range types.AllDocumentTypes() {
		for _, dep := range t[candidate] {
			if dep == docType {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}

// Validate checks that every referenced type is known and the table is acyclic.
func (t DependencyTable) Validate() error {
	for docType, deps := range t {
		if !docType.Valid() {
			return &UnknownTypeError{Type: docType}
		}
		for _, dep := range deps {
			if !dep.Valid() {
				return &DependencyError{Step: docType, MissingDependencies: []types.DocumentType{dep}}
			}
		}
	}

	// Kahn topological sort, stable by AllDocumentTypes order.
	inDegree := make(map[types.DocumentType]int, len(t))
	dependents := make(map[types.DocumentType][]types.DocumentType)
	nodes := t.nodes()
	for _, n := range nodes {
		inDegree[n] = 0
	}
	for _, n := range nodes {
		for _, dep := range t[n] {
			inDegree[n]++
			dependents[dep] = append(dependents[dep], n)
		}
	}

	added := make(map[types.DocumentType]bool, len(nodes))
	for {
		progressed := false
		for _, n := range nodes {
			if added[n] || inDegree[n] != 0 {
				continue
			}
			added[n] = true
			progressed = true
			for _, d := range dependents[n] {
				inDegree[d]--
			}
		}
		if !progressed {
			break
		}
	}

	if len(added) != len(nodes) {
		var remaining []types.DocumentType
		for _, n := range nodes {
			if !added[n] {
				remaining = append(remaining, n)
			}
		}
		return &CycleError{Path: remaining}
	}
	return nil
}

// nodes returns every type mentioned by the table, known types first in
// declaration order.
func (t DependencyTable) nodes() []types.DocumentType {
	seen := make(map[types.DocumentType]bool)
	var out []types.DocumentType
	add := func(n types.DocumentType) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, n := range types.AllDocumentTypes() {
		if _, ok := t[n]; ok {
			add(n)
		}
		for _, deps := range t {
			for _, d := range deps {
				if d == n {
					add(n)
				}
			}
		}
	}
	return out
}

// Resolve orders requested so that, for each type, every dependency that is
// also requested appears strictly before it. Dependencies outside the request
// are ignored, never added. Ties follow request order. A type requested more
// than once appears once.
func Resolve(requested []types.DocumentType, table DependencyTable) ([]types.DocumentType, error) {
	inSet := make(map[types.DocumentType]bool, len(requested))
	for _, docType := range requested {
		if !docType.Valid() {
			return nil, &UnknownTypeError{Type: docType}
		}
		inSet[docType] = true
	}

	r := resolver{
		table:    table,
		inSet:    inSet,
		visited:  make(map[types.DocumentType]bool, len(requested)),
		visiting: make(map[types.DocumentType]bool),
		order:    make([]types.DocumentType, 0, len(requested)),
	}
	for _, docType := range requested {
		if err := r.visit(docType, nil); err != nil {
			return nil, err
		}
	}
	return r.order, nil
}

type resolver struct {
	table    DependencyTable
	inSet    map[types.DocumentType]bool
	visited  map[types.DocumentType]bool
	visiting map[types.DocumentType]bool
	order    []types.DocumentType
}

func (r *resolver) visit(docType types.DocumentType, path []types.DocumentType) error {
	if r.visited[docType] {
		return nil
	}
	path = append(path, docType)
	if r.visiting[docType] {
		return &CycleError{Path: append([]types.DocumentType{}, path...)}
	}
	r.visiting[docType] = true

	for _, dep := range r.table[docType] {
		if !r.inSet[dep] {
			continue
		}
		if err := r.visit(dep, path); err != nil {
			return err
		}
	}

	r.visiting[docType] = false
	r.visited[docType] = true
	r.order = append(r.order, docType)
	return nil
}
