package internal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, config RenderConfig, source string, view any) string {
	t.Helper()
	out, err := NewExecutor(config, nil).Render(context.Background(), source, view)
	require.NoError(t, err)
	return out
}

func TestExecutor_PlainTextIsIdentity(t *testing.T) {
	sources := []string{"", "Hello, World!", "multi\nline\ttext", "{ not a tag }", "{{ unterminated"}
	for _, source := range sources {
		assert.Equal(t, source, render(t, DefaultRenderConfig(), source, map[string]any{"x": 1}))
	}
}

func TestExecutor_Variables(t *testing.T) {
	view := map[string]any{
		"name":  "bob",
		"count": 3,
		"ratio": 0.5,
		"ok":    true,
		"user":  map[string]any{"name": "inner"},
		"html":  "<b>",
	}

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"simple", "Hi {{name}}", "Hi bob"},
		{"number", "{{count}}/{{ratio}}", "3/0.5"},
		{"bool", "{{ok}}", "true"},
		{"nested", "{{user.name}}", "inner"},
		{"missing", "[{{missing}}]", "[]"},
		{"pipeline left to right", "{{name | upper | capitalize}}", "Bob"},
		{"unknown function passes value", "{{name | nope | upper}}", "BOB"},
		{"no escaping by default", "{{html}}", "<b>"},
		{"explicit escape", "{{html | escape}}", "&lt;b&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, DefaultRenderConfig(), tt.source, view))
		})
	}
}

func TestExecutor_FunctionArguments(t *testing.T) {
	config := DefaultRenderConfig()
	config.Funcs.MustSet("wrap", func(value any, args ...string) (any, error) {
		if len(args) != 2 {
			return value, nil
		}
		return args[0] + Stringify(value) + args[1], nil
	})

	assert.Equal(t, "[x]", render(t, config, "{{v | wrap [ ]}}", map[string]any{"v": "x"}))
}

func TestExecutor_FunctionErrorAbortsRender(t *testing.T) {
	cause := errors.New("boom")
	config := DefaultRenderConfig()
	config.Funcs.MustSet("fail", func(any, ...string) (any, error) { return nil, cause })

	out, err := NewExecutor(config, nil).Render(context.Background(), "a {{x | fail}} b", nil)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, cause)

	var execErr *FuncExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "fail", execErr.FuncName)
}

func TestExecutor_PanicIsRecovered(t *testing.T) {
	config := DefaultRenderConfig()
	config.Funcs.MustSet("explode", func(any, ...string) (any, error) { panic("kaboom") })

	out, err := NewExecutor(config, nil).Render(context.Background(), "{{x | explode}}", nil)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), ErrMsgRenderPanic)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestExecutor_EscapeByDefault(t *testing.T) {
	config := DefaultRenderConfig()
	config.EscapeByDefault = true
	config.Partials["p"] = "<i>{{v}}</i>"

	out := render(t, config, "{{v}}|{{#s}}<b>{{v}}</b>{{/s}}|{{> p}}", map[string]any{"v": "a&b", "s": true})
	assert.Equal(t, "a&amp;b|<b>a&amp;b</b>|<i>a&amp;b</i>", out)
}

func TestExecutor_SectionSequence(t *testing.T) {
	view := map[string]any{
		"items": []any{map[string]any{"n": 1}, map[string]any{"n": 2}},
	}
	assert.Equal(t, "1 2 ", render(t, DefaultRenderConfig(), "{{#items}}{{n}} {{/items}}", view))
}

func TestExecutor_SectionScalarItemsBindDot(t *testing.T) {
	view := map[string]any{"tags": []string{"a", "b", "c"}}
	assert.Equal(t, "a,b,c,", render(t, DefaultRenderConfig(), "{{#tags}}{{.}},{{/tags}}", view))
}

func TestExecutor_EmptySequenceIgnoresElse(t *testing.T) {
	view := map[string]any{"items": []any{}}
	config := DefaultRenderConfig()

	assert.Equal(t, "", render(t, config, "{{#items}}x{{/items}}", view))
	assert.Equal(t, "", render(t, config, "{{#items}}x{{@else}}none{{/items}}", view))
}

func TestExecutor_SectionTruthiness(t *testing.T) {
	source := "{{#v}}yes{{@else}}no{{/v}}"
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"true", true, "yes"},
		{"false", false, "no"},
		{"zero", 0, "no"},
		{"nonzero", 2, "yes"},
		{"empty string", "", "no"},
		{"string", "s", "yes"},
		{"nil", nil, "no"},
		{"empty mapping", map[string]any{}, "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, DefaultRenderConfig(), source, map[string]any{"v": tt.value}))
		})
	}

	assert.Equal(t, "no", render(t, DefaultRenderConfig(), source, map[string]any{}))
	assert.Equal(t, "", render(t, DefaultRenderConfig(), "{{#v}}yes{{/v}}", map[string]any{}))
}

func TestExecutor_SectionShadowing(t *testing.T) {
	view := map[string]any{
		"name":  "outer",
		"title": "T",
		"user":  map[string]any{"name": "inner"},
	}
	out := render(t, DefaultRenderConfig(), "{{#user}}{{name}} of {{title}}{{/user}}", view)
	assert.Equal(t, "inner of T", out)
}

func TestExecutor_TruthyScalarBindsName(t *testing.T) {
	view := map[string]any{"greeting": "hello"}
	out := render(t, DefaultRenderConfig(), "{{#greeting}}{{greeting | upper}}/{{.}}{{/greeting}}", view)
	assert.Equal(t, "HELLO/hello", out)
}

func TestExecutor_ElseUsesUnmodifiedContext(t *testing.T) {
	view := map[string]any{"name": "n", "missing": false}
	out := render(t, DefaultRenderConfig(), "{{#missing}}x{{@else}}{{name}}:{{missing}}{{/missing}}", view)
	assert.Equal(t, "n:false", out)
}

func TestExecutor_IdenticalBodiesDoNotLeak(t *testing.T) {
	view := map[string]any{
		"items": []any{
			map[string]any{"n": "first"},
			map[string]any{"n": "second"},
		},
		"again": []any{map[string]any{"n": "third"}},
	}
	out := render(t, DefaultRenderConfig(), "{{#items}}{{n}};{{/items}}{{#again}}{{n}};{{/again}}", view)
	assert.Equal(t, "first;second;third;", out)
}

func TestExecutor_NestedSections(t *testing.T) {
	view := map[string]any{
		"groups": []any{
			map[string]any{"g": "A", "members": []any{map[string]any{"m": 1}, map[string]any{"m": 2}}},
			map[string]any{"g": "B", "members": []any{}},
		},
	}
	out := render(t, DefaultRenderConfig(), "{{#groups}}{{g}}:{{#members}}{{g}}{{m}} {{/members}};{{/groups}}", view)
	assert.Equal(t, "A:A1 A2 ;B:;", out)
}

func TestExecutor_NestedSameNameSections(t *testing.T) {
	view := map[string]any{"a": map[string]any{"a": map[string]any{"x": "deep"}, "x": "mid"}}
	out := render(t, DefaultRenderConfig(), "{{#a}}{{x}}-{{#a}}{{x}}{{/a}}{{/a}}", view)
	assert.Equal(t, "mid-deep", out)
}

func TestExecutor_UnclosedSectionStaysLiteral(t *testing.T) {
	out := render(t, DefaultRenderConfig(), "{{#a}} {{name}}", map[string]any{"name": "x", "a": true})
	assert.Equal(t, "{{#a}} x", out)
}

func TestExecutor_Partials(t *testing.T) {
	config := DefaultRenderConfig()
	config.Partials["greet"] = "Hi {{name}}!"
	config.Partials["list"] = "{{#items}}{{> item}}{{/items}}"
	config.Partials["item"] = "<{{.}}>"

	assert.Equal(t, "Hi Sam!", render(t, config, "{{> greet}}", map[string]any{"name": "Sam"}))
	assert.Equal(t, "<a><b>", render(t, config, "{{>list}}", map[string]any{"items": []any{"a", "b"}}))
	assert.Equal(t, "Hi Sam! Hi Sam!", render(t, config, "{{> greet}} {{> greet}}", map[string]any{"name": "Sam"}))
}

func TestExecutor_UnterminatedTagInsideSection(t *testing.T) {
	source := "{{#a}}{{b {{/a}}"
	assert.Equal(t, "{{b ", render(t, DefaultRenderConfig(), source, map[string]any{"a": true}))
	assert.Equal(t, "", render(t, DefaultRenderConfig(), source, map[string]any{}))
}

func TestExecutor_UnknownPartialIsVerbatim(t *testing.T) {
	assert.Equal(t, "{{> missing}}", render(t, DefaultRenderConfig(), "{{> missing}}", map[string]any{}))
	assert.Equal(t, "{{>missing }}", render(t, DefaultRenderConfig(), "{{>missing }}", nil))
}

func TestExecutor_PartialCycle(t *testing.T) {
	config := DefaultRenderConfig()
	config.Partials["a"] = "A{{> b}}"
	config.Partials["b"] = "B{{> a}}"

	out, err := NewExecutor(config, nil).Render(context.Background(), "{{> a}}", nil)
	require.Error(t, err)
	assert.Empty(t, out)

	var cycleErr *PartialCycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"a", "b", "a"}, cycleErr.Chain)
}

func TestExecutor_SelfPartial(t *testing.T) {
	config := DefaultRenderConfig()
	config.Partials["self"] = "{{> self}}"

	_, err := NewExecutor(config, nil).Render(context.Background(), "{{> self}}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgPartialCycle)
}

func TestExecutor_RecursionThroughSection(t *testing.T) {
	config := DefaultRenderConfig()
	config.Partials["node"] = "{{name}}[{{#children}}{{> node}}{{/children}}]"

	tree := map[string]any{
		"name": "root",
		"children": []any{
			map[string]any{
				"name":     "a",
				"children": []any{map[string]any{"name": "b", "children": []any{}}},
			},
			map[string]any{"name": "c", "children": []any{}},
		},
	}

	assert.Equal(t, "root[a[b[]]c[]]", render(t, config, "{{> node}}", tree))
}

func TestExecutor_EndlessRecursionThroughSection(t *testing.T) {
	config := DefaultRenderConfig()
	config.MaxDepth = 10
	config.Partials["forever"] = "{{#x}}{{> forever}}{{/x}}"

	_, err := NewExecutor(config, nil).Render(context.Background(), "{{> forever}}", map[string]any{"x": true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgMaxDepthExceeded)
}

func TestExecutor_CycleInsideSection(t *testing.T) {
	config := DefaultRenderConfig()
	config.Partials["outer"] = "{{#x}}{{> a}}{{/x}}"
	config.Partials["a"] = "{{> b}}"
	config.Partials["b"] = "{{> a}}"

	_, err := NewExecutor(config, nil).Render(context.Background(), "{{> outer}}", map[string]any{"x": true})
	require.Error(t, err)

	var cycleErr *PartialCycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"outer", "a", "b", "a"}, cycleErr.Chain)
}

func TestExecutor_DefaultDepthAllowsDeepNesting(t *testing.T) {
	source := strings.Repeat("{{#a}}", 120) + "deep" + strings.Repeat("{{/a}}", 120)
	assert.Equal(t, "deep", render(t, DefaultRenderConfig(), source, map[string]any{"a": true}))
}

func TestExecutor_MaxDepth(t *testing.T) {
	config := DefaultRenderConfig()
	config.MaxDepth = 2

	view := map[string]any{"a": true}
	_, err := NewExecutor(config, nil).Render(context.Background(), "{{#a}}{{#a}}{{#a}}x{{/a}}{{/a}}{{/a}}", view)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgMaxDepthExceeded)

	out, err := NewExecutor(config, nil).Render(context.Background(), "{{#a}}{{#a}}x{{/a}}{{/a}}", view)
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestExecutor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(DefaultRenderConfig(), nil).Render(ctx, "{{x}}", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_CustomDelimiters(t *testing.T) {
	config := DefaultRenderConfig()
	config.Lexer = LexerConfig{OpenDelim: "<%", CloseDelim: "%>"}

	out := render(t, config, "{{name}} <%name%> <%#ok%>y<%@else%>n<%/ok%>", map[string]any{"name": "x", "ok": false})
	assert.Equal(t, "{{name}} x n", out)
}

func TestExecutor_NonMappingView(t *testing.T) {
	assert.Equal(t, "7", render(t, DefaultRenderConfig(), "{{.}}", 7))
	assert.Equal(t, "a-b-", render(t, DefaultRenderConfig(), "{{#.}}{{.}}-{{/.}}", []any{"a", "b"}))
}

func TestExecutor_ParseCache(t *testing.T) {
	e := NewExecutor(DefaultRenderConfig(), nil)
	first, err := e.Parse("{{a}}")
	require.NoError(t, err)
	second, err := e.Parse("{{a}}")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestViewContext(t *testing.T) {
	var nilMap map[string]any
	assert.Equal(t, map[string]any{}, ViewContext(nil))
	assert.Equal(t, map[string]any{}, ViewContext(nilMap))
	assert.Equal(t, map[string]any{"a": "b"}, ViewContext(map[string]string{"a": "b"}))
	assert.Equal(t, map[string]any{".": "s"}, ViewContext("s"))
}
