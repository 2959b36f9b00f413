package internal

import (
	"sort"
)

// IssueSeverity ranks a validation finding
type IssueSeverity int

const (
	// IssueError marks text that renders differently from what it appears to mean
	IssueError IssueSeverity = iota
	// IssueWarning marks a reference that may resolve later, such as a partial
	// registered after validation
	IssueWarning
)

// Issue is one validation finding
type Issue struct {
	Severity IssueSeverity
	Message  string
	Tag      string
	Position Position
}

// Validation messages
const (
	IssueMsgUnknownPartial = "unknown partial - tag renders verbatim"
	IssueMsgUnknownFunc    = "unknown pipeline function - stage is skipped"
	IssueMsgEmptyStage     = "empty pipeline stage"
	IssueMsgEmptyPath      = "empty lookup path"
)

// Validate checks a parsed template against the partials and functions it
// would be rendered with. Issues are ordered by position.
func Validate(root *RootNode, partials map[string]string, funcs *FuncRegistry) []Issue {
	var issues []Issue

	for _, lit := range root.Literals {
		issues = append(issues, Issue{
			Severity: IssueError,
			Message:  lit.Reason,
			Tag:      lit.Raw,
			Position: lit.Position,
		})
	}

	v := &validator{partials: partials, funcs: funcs}
	v.walk(root.Children)
	issues = append(issues, v.issues...)

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Position.Offset < issues[j].Position.Offset
	})
	return issues
}

type validator struct {
	partials map[string]string
	funcs    *FuncRegistry
	issues   []Issue
}

func (v *validator) walk(nodes []Node) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *PartialNode:
			if _, ok := v.partials[n.Name]; !ok {
				v.warn(IssueMsgUnknownPartial, n.Raw, n.Pos())
			}
		case *VariableNode:
			v.checkVariable(n)
		case *SectionNode:
			v.walk(n.Main)
			v.walk(n.Else)
		}
	}
}

func (v *validator) checkVariable(n *VariableNode) {
	if n.Path == "" {
		v.warn(IssueMsgEmptyPath, n.Raw, n.Pos())
	}
	for _, stage := range n.Stages {
		switch {
		case stage.Name == "":
			v.warn(IssueMsgEmptyStage, n.Raw, n.Pos())
		case v.funcs == nil || !v.funcs.Has(stage.Name):
			v.warn(IssueMsgUnknownFunc, n.Raw, n.Pos())
		}
	}
}

func (v *validator) warn(msg, tag string, pos Position) {
	v.issues = append(v.issues, Issue{
		Severity: IssueWarning,
		Message:  msg,
		Tag:      tag,
		Position: pos,
	})
}
