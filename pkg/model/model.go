// Package model defines the JSON report types emitted by xqscope: variables, functions, namespaces, imported modules and references.
package model

import "time"

// Location is a 1-based source position inside a module file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Name is a qualified name in lexical and expanded form.
type Name struct {
	Lexical   string `json:"lexical"`
	Namespace string `json:"namespace,omitempty"`
	Local     string `json:"local"`
	Prefix    string `json:"prefix,omitempty"`
}

// Variable is a variable binding visible at a position, or reachable through imports.
type Variable struct {
	Name     Name     `json:"name"`
	Kind     string   `json:"kind"`
	Location Location `json:"location"`
}

// Function is a function declaration with its accepted arity range.
type Function struct {
	Name     Name     `json:"name"`
	MinArity int      `json:"min_arity"`
	MaxArity int      `json:"max_arity"`
	Module   string   `json:"module"`
	Location Location `json:"location"`
}

// Namespace is a namespace binding in the static context.
type Namespace struct {
	Prefix string `json:"prefix,omitempty"`
	URI    string `json:"uri"`
	Kind   string `json:"kind"`
	Line   int    `json:"line,omitempty"`
}

// Module is a module reached through the import graph.
type Module struct {
	Resource  string `json:"resource"`
	Namespace string `json:"namespace,omitempty"`
	Library   bool   `json:"library"`
	Functions int    `json:"functions"`
	Variables int    `json:"variables"`
}

// Reference is a variable or function reference and the declarations it resolves to.
type Reference struct {
	Kind     string     `json:"kind"`
	Name     string     `json:"name"`
	Location Location   `json:"location"`
	Targets  []Location `json:"targets,omitempty"`
}

// Resolved reports whether the reference resolved to at least one declaration.
func (r Reference) Resolved() bool {
	return len(r.Targets) > 0
}

// Report is the result of one xqscope query. Only the sections relevant to
// the query are populated.
type Report struct {
	Version     string      `json:"version"`
	Root        string      `json:"root"`
	File        string      `json:"file,omitempty"`
	At          *Location   `json:"at,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
	Expansions  []Name      `json:"expansions,omitempty"`
	Variables   []Variable  `json:"variables,omitempty"`
	Functions   []Function  `json:"functions,omitempty"`
	Namespaces  []Namespace `json:"namespaces,omitempty"`
	Modules     []Module    `json:"modules,omitempty"`
	References  []Reference `json:"references,omitempty"`
}

// ResolvedCount returns the number of references that resolved.
func (r *Report) ResolvedCount() int {
	if r == nil {
		return 0
	}

	total := 0
	for _, ref := range r.References {
		if ref.Resolved() {
			total++
		}
	}
	return total
}

// UnresolvedCount returns the number of references that resolved to nothing.
func (r *Report) UnresolvedCount() int {
	if r == nil {
		return 0
	}
	return len(r.References) - r.ResolvedCount()
}

// DeclarationCount returns the number of function and variable declarations
// across the report's modules.
func (r *Report) DeclarationCount() int {
	if r == nil {
		return 0
	}

	total := 0
	for _, m := range r.Modules {
		total += m.Functions + m.Variables
	}
	return total
}
