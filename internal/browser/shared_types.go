// internal/browser/shared_types.go
package browser

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Strategy selects how a Locator expression is interpreted.
type Strategy int

const (
	ByXPath Strategy = iota
	ByCSS
)

func (s Strategy) String() string {
	switch s {
	case ByXPath:
		return "xpath"
	case ByCSS:
		return "css"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Locator identifies zero or more elements in the current render.
// Locators are plain values; pages declare them once and reuse them.
type Locator struct {
	Strategy Strategy
	Expr     string
}

// XPath returns a Locator that evaluates expr as an XPath expression.
func XPath(expr string) Locator { return Locator{Strategy: ByXPath, Expr: expr} }

// CSS returns a Locator that evaluates expr as a CSS selector.
func CSS(expr string) Locator { return Locator{Strategy: ByCSS, Expr: expr} }

func (l Locator) String() string {
	return l.Strategy.String() + "=" + l.Expr
}

// JSFirst returns a JavaScript expression yielding the first matched element, or null.
func (l Locator) JSFirst() string {
	q := JSString(l.Expr)
	if l.Strategy == ByCSS {
		return "document.querySelector(" + q + ")"
	}
	return "document.evaluate(" + q + ", document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue"
}

// JSCount returns a JavaScript expression yielding the number of matched elements.
func (l Locator) JSCount() string {
	q := JSString(l.Expr)
	if l.Strategy == ByCSS {
		return "document.querySelectorAll(" + q + ").length"
	}
	return "document.evaluate(" + q + ", document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null).snapshotLength"
}

// JSString quotes s as a JavaScript string literal. JSON string syntax is a subset of it.
func JSString(s string) string {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(s)
	if err != nil {
		// Marshalling a string cannot fail.
		panic(err)
	}
	return string(b)
}

// ElementState is a point in time snapshot of the first element a locator matched.
type ElementState struct {
	Count   int     `json:"count"`
	Present bool    `json:"present"`
	Visible bool    `json:"visible"`
	Enabled bool    `json:"enabled"`
	Tag     string  `json:"tag"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Interactable reports whether a real user could click or type into the element.
func (s ElementState) Interactable() bool {
	return s.Present && s.Visible && s.Enabled && s.Width > 0 && s.Height > 0
}

// Center returns the viewport coordinates of the element's centre.
func (s ElementState) Center() (float64, float64) {
	return s.X + s.Width/2, s.Y + s.Height/2
}
