// Package doubletags is a logic-lite text templating engine.
//
// A template is plain text with tags between two delimiters, "{{" and "}}" by
// default:
//
//	{{name}}                   interpolate a value looked up by dot path
//	{{name | upper}}           pipe the value through named functions
//	{{#items}}...{{/items}}    section: loop over a sequence, or render once for a truthy value
//	{{#a}}...{{@else}}...{{/a}} else branch for falsy or missing values
//	{{>footer}}                render a registered partial
//
// Lookups never fail: a missing path renders as an empty string, an unknown
// partial renders as its own tag text and an unknown function passes the
// value through. Malformed tags are kept as literal text; Engine.Validate
// reports them. An empty sequence renders nothing, even with an else branch.
//
// Basic usage:
//
//	engine := doubletags.MustNew()
//	out := engine.Render("Hello {{name | capitalize}}!", map[string]any{"name": "bob"})
//	// out == "Hello Bob!"
//
// Render swallows errors and returns an empty string; RenderContext returns
// them. Nesting deeper than WithMaxDepth (1000 sections and partials by
// default) is such an error, as is a partial that re-enters itself without a
// section in between. Recursion through a section, such as a partial that
// renders a tree's children, is allowed.
//
// Partials can be loaded from the memory, filesystem, postgres and sqlite
// stores through OpenPartialStore.
package doubletags
