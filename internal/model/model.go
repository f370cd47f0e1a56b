// Package model defines core data structures for codemodel.
package model

// Strategy names the extraction path that produced a StructuralRecord.
type Strategy string

const (
	// StrategyAST means the primary tree-sitter parse succeeded.
	StrategyAST Strategy = "ast"
	// StrategyRegex means the parse failed and the regex fallback ran.
	StrategyRegex Strategy = "regex"
)

// Import records one import declaration: the module source string and the
// local names bound from it.
type Import struct {
	Source     string   `json:"source"`
	Specifiers []string `json:"specifiers"`
}

// FunctionDetail describes one function (or method) declaration.
type FunctionDetail struct {
	Name       string   `json:"name"`
	Params     []string `json:"params"`
	IsAsync    bool     `json:"isAsync"`
	StartLine  int      `json:"startLine"`
	EndLine    int      `json:"endLine"`
	DocComment string   `json:"docComment,omitempty"`
	// Kind is set for class methods only: constructor, method, get, set.
	Kind string `json:"kind,omitempty"`
}

// ClassDetail describes one class declaration and its methods.
type ClassDetail struct {
	Name       string           `json:"name"`
	Superclass string           `json:"superclass,omitempty"`
	StartLine  int              `json:"startLine"`
	EndLine    int              `json:"endLine"`
	DocComment string           `json:"docComment,omitempty"`
	Methods    []FunctionDetail `json:"methods,omitempty"`
}

// StructuralRecord holds the structural facts extracted from one file.
// ParseError is non-empty exactly when Strategy is StrategyRegex.
type StructuralRecord struct {
	Exports         []string         `json:"exports"`
	Imports         []Import         `json:"imports"`
	Classes         []string         `json:"classes"`
	Functions       []string         `json:"functions"`
	FunctionDetails []FunctionDetail `json:"functionDetails"`
	ClassDetails    []ClassDetail    `json:"classDetails"`
	Strategy        Strategy         `json:"strategy"`
	ParseError      string           `json:"parseError,omitempty"`
}

// RawArtifact is a StructuralRecord bound to a file, produced once per
// source file during a discovery pass.
type RawArtifact struct {
	Path string `json:"path"` // project-relative, slash-separated
	StructuralRecord
	ModuleDoc   string `json:"moduleDoc,omitempty"`
	ContentHash uint64 `json:"contentHash,omitempty"`
}

// FileInfo is the walk-time record of one kept file.
type FileInfo struct {
	RelPath string `json:"relativePath"`
	Ext     string `json:"extension"`
	Size    int64  `json:"sizeBytes"`
}

// DirectoryTree is a nested map built from kept file paths; a leaf file
// maps to nil.
type DirectoryTree map[string]DirectoryTree

// TermFrequency counts namespaced naming/structural terms across one
// discovery pass. Counts only grow within a pass.
type TermFrequency map[string]int

// ImportGraph maps a file path to its resolved project-relative import
// targets, in declaration order. Only intra-project relative imports
// become entries; external packages are counted in TermFrequency instead.
type ImportGraph map[string][]string

// ArtifactEntry is the persisted form of an artifact: a RawArtifact plus
// the classification and prose fields a later populate stage fills in.
type ArtifactEntry struct {
	Path        string `json:"path"`
	Kind        string `json:"kind"`
	Size        int64  `json:"size"`
	ContentHash uint64 `json:"contentHash,omitempty"`
	StructuralRecord
	ModuleDoc string `json:"moduleDoc,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Intent    string `json:"intent,omitempty"`
}

// DependencyEdge is a directed relation between two artifacts.
type DependencyEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

// Stats summarizes an Instance.
type Stats struct {
	ArtifactCount   int `json:"artifactCount"`
	DependencyCount int `json:"dependencyCount"`
}

// Instance is the persisted project model, written by the full-build
// pipeline and patched in place by the incremental updater.
type Instance struct {
	Artifacts    map[string]*ArtifactEntry `json:"artifacts"`
	Dependencies []DependencyEdge          `json:"dependencies"`
	Stats        Stats                     `json:"stats"`
}

// RecomputeStats refreshes the summary counters from the current maps.
func (in *Instance) RecomputeStats() {
	in.Stats.ArtifactCount = len(in.Artifacts)
	in.Stats.DependencyCount = len(in.Dependencies)
}

// FreshnessStatus enumerates the outcomes of a freshness check.
type FreshnessStatus string

const (
	StatusMissing      FreshnessStatus = "missing"
	StatusFresh        FreshnessStatus = "fresh"
	StatusStale        FreshnessStatus = "stale"
	StatusUnknown      FreshnessStatus = "unknown"
	StatusRefreshed    FreshnessStatus = "refreshed"
	StatusForceRefresh FreshnessStatus = "force-refresh"
)

// FreshnessReport is the result of one freshness check. Computed fresh on
// every check, never persisted.
type FreshnessReport struct {
	Status       FreshnessStatus `json:"status"`
	ModelExists  bool            `json:"modelExists"`
	ModelTime    int64           `json:"modelTimestamp"` // unix seconds, 0 if absent
	VCSTime      int64           `json:"vcsTimestamp"`   // unix seconds, 0 if unknown
	Stale        bool            `json:"stale"`
	ChangedFiles []string        `json:"changedFiles,omitempty"`
	Reason       string          `json:"reason"`
}

// UpdateSummary reports what one incremental update did.
type UpdateSummary struct {
	Added              []string `json:"added"`
	Modified           []string `json:"modified"`
	Removed            []string `json:"removed"`
	TotalChanged       int      `json:"totalChanged"`
	NewArtifactCount   int      `json:"newArtifactCount"`
	NewDependencyCount int      `json:"newDependencyCount"`
}

// Action tells an EnsureFresh caller what happened or what it must do next.
type Action string

const (
	ActionNone            Action = "none"
	ActionBootstrap       Action = "bootstrap-required"
	ActionIncremental     Action = "incremental-update"
	ActionStale           Action = "stale"
	ActionRebuildRequired Action = "rebuild-required"
)

// EnsureResult bundles the freshness outcome with the action taken.
type EnsureResult struct {
	Freshness *FreshnessReport `json:"freshness,omitempty"`
	Action    Action           `json:"action"`
	Update    *UpdateSummary   `json:"update,omitempty"`
}
