package browser

import (
	"fmt"
	"strings"
)

type Strategy string

const (
	ByID       Strategy = "id"
	ByName     Strategy = "name"
	ByCSS      Strategy = "css selector"
	ByXPath    Strategy = "xpath"
	ByLinkText Strategy = "link text"
)

type Selector struct {
	By    Strategy
	Value string
}

func ID(id string) Selector         { return Selector{By: ByID, Value: id} }
func Name(name string) Selector     { return Selector{By: ByName, Value: name} }
func CSS(css string) Selector       { return Selector{By: ByCSS, Value: css} }
func XPath(xpath string) Selector   { return Selector{By: ByXPath, Value: xpath} }
func LinkText(text string) Selector { return Selector{By: ByLinkText, Value: text} }

func (s Selector) String() string {
	return fmt.Sprintf("%s=%s", s.By, s.Value)
}

// IsCSS reports whether the selector has to be evaluated as CSS. Every other
// strategy can be expressed with XPath.
func (s Selector) IsCSS() bool {
	return s.By == ByCSS
}

// XPath converts the selector for backends that only speak CSS and XPath.
// It returns an error for CSS selectors.
func (s Selector) XPath() (string, error) {
	switch s.By {
	case ByXPath:
		return s.Value, nil
	case ByID:
		return fmt.Sprintf("//*[@id=%s]", xpathLiteral(s.Value)), nil
	case ByName:
		return fmt.Sprintf("//*[@name=%s]", xpathLiteral(s.Value)), nil
	case ByLinkText:
		return fmt.Sprintf("//a[normalize-space(.)=%s]", xpathLiteral(strings.TrimSpace(s.Value))), nil
	default:
		return "", fmt.Errorf("selector %s has no xpath form", s)
	}
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		quoted = append(quoted, `"`+part+`"`)
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
