package chromedp

import (
	"strings"

	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/chromedp/chromedp"
)

// selectorFor maps a locator onto a chromedp selector and the query strategy
// that understands it. Text locators become an XPath matching elements whose
// own text contains the value.
func selectorFor(locator ports.Locator) (string, chromedp.QueryOption) {
	switch locator.Kind {
	case ports.SelectorXPath:
		return locator.Selector, chromedp.BySearch
	case ports.SelectorText:
		return textXPath(locator.Selector), chromedp.BySearch
	default:
		return locator.Selector, chromedp.ByQuery
	}
}

func textXPath(text string) string {
	return "//*[text()[contains(., " + xpathLiteral(text) + ")]]"
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if part != "" {
			quoted = append(quoted, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
