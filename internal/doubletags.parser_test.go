package internal

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, source string) *RootNode {
	t.Helper()
	root, err := Parse(source, DefaultLexerConfig(), nil)
	require.NoError(t, err)
	return root
}

func TestParser_TextAndVariables(t *testing.T) {
	root := mustParse(t, "Hello {{ name | upper | pad 2 x }}!")
	require.Len(t, root.Children, 3)

	v, ok := root.Children[1].(*VariableNode)
	require.True(t, ok)
	assert.Equal(t, "name", v.Path)
	require.Len(t, v.Stages, 2)
	assert.Equal(t, Stage{Name: "upper", Args: []string{}}, v.Stages[0])
	assert.Equal(t, Stage{Name: "pad", Args: []string{"2", "x"}}, v.Stages[1])
	assert.Equal(t, "{{ name | upper | pad 2 x }}", v.Raw)
}

func TestParser_Partial(t *testing.T) {
	root := mustParse(t, "{{> greet }}")
	require.Len(t, root.Children, 1)
	p, ok := root.Children[0].(*PartialNode)
	require.True(t, ok)
	assert.Equal(t, "greet", p.Name)
	assert.Equal(t, "{{> greet }}", p.Raw)
}

func TestParser_SectionWithElse(t *testing.T) {
	source := "{{#ok}}yes{{@else}}no{{/ok}}"
	root := mustParse(t, source)
	require.Len(t, root.Children, 1)

	s, ok := root.Children[0].(*SectionNode)
	require.True(t, ok)
	assert.Equal(t, "ok", s.Name)
	assert.True(t, s.HasElse)
	require.Len(t, s.Main, 1)
	require.Len(t, s.Else, 1)
	assert.Equal(t, "yes", s.Main[0].(*TextNode).Content)
	assert.Equal(t, "no", s.Else[0].(*TextNode).Content)
	assert.Equal(t, "yes{{@else}}no", s.Body(source))
}

func TestParser_NestedSameName(t *testing.T) {
	source := "{{#a}}1{{#a}}2{{/a}}3{{/a}}"
	root := mustParse(t, source)
	require.Len(t, root.Children, 1)

	outer := root.Children[0].(*SectionNode)
	require.Len(t, outer.Main, 3)
	inner, ok := outer.Main[1].(*SectionNode)
	require.True(t, ok)
	assert.Equal(t, "a", inner.Name)
	assert.Equal(t, "1{{#a}}2{{/a}}3", outer.Body(source))
	assert.Equal(t, "2", inner.Body(source))
}

func TestParser_ElseBelongsToInnermostSection(t *testing.T) {
	root := mustParse(t, "{{#a}}{{#b}}x{{@else}}y{{/b}}z{{/a}}")
	outer := root.Children[0].(*SectionNode)
	assert.False(t, outer.HasElse)
	inner := outer.Main[0].(*SectionNode)
	assert.True(t, inner.HasElse)
}

func TestParser_StrayTagsAreLiteral(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"stray close", "a{{/x}}b"},
		{"stray else", "a{{@else}}b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.source)
			var content string
			for _, child := range root.Children {
				text, ok := child.(*TextNode)
				require.True(t, ok)
				content += text.Content
			}
			assert.Equal(t, tt.source, content)
		})
	}
}

func TestParser_SecondElseIsLiteral(t *testing.T) {
	root := mustParse(t, "{{#a}}x{{@else}}y{{@else}}z{{/a}}")
	s := root.Children[0].(*SectionNode)
	require.Len(t, s.Else, 3)
	assert.Equal(t, "{{@else}}", s.Else[1].(*TextNode).Content)
}

func TestParser_UnclosedSectionIsFlattened(t *testing.T) {
	root := mustParse(t, "{{#a}}x{{name}}")
	require.Len(t, root.Children, 3)
	assert.Equal(t, "{{#a}}", root.Children[0].(*TextNode).Content)
	assert.Equal(t, "x", root.Children[1].(*TextNode).Content)
	assert.IsType(t, &VariableNode{}, root.Children[2])
}

func TestParser_UnclosedInnerSectionIsFlattened(t *testing.T) {
	root := mustParse(t, "{{#a}}{{#b}}x{{/a}}")
	require.Len(t, root.Children, 1)
	outer := root.Children[0].(*SectionNode)
	require.Len(t, outer.Main, 2)
	assert.Equal(t, "{{#b}}", outer.Main[0].(*TextNode).Content)
	assert.Equal(t, "x", outer.Main[1].(*TextNode).Content)
}

func TestParser_RootKeepsSource(t *testing.T) {
	root := mustParse(t, "abc")
	assert.Equal(t, "abc", root.Source)
	assert.Contains(t, root.String(), "TextNode")
}

func TestTruncateForDisplay(t *testing.T) {
	short := "short text"
	assert.Equal(t, short, truncateForDisplay(short))

	ascii := strings.Repeat("x", 60)
	assert.Equal(t, strings.Repeat("x", TruncatedStringLength)+TruncationSuffix, truncateForDisplay(ascii))

	// "é" occupies the bytes at 46 and 47, straddling the cut
	accented := strings.Repeat("a", 46) + "é" + strings.Repeat("b", 10)
	got := truncateForDisplay(accented)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 46)+TruncationSuffix, got)

	node := NewTextNode(strings.Repeat("日本", 20), Position{})
	assert.True(t, utf8.ValidString(node.String()))
}
