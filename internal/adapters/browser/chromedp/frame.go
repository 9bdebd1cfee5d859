package chromedp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
)

// firstMatchJS runs with this bound to a document, or to an iframe element
// whose content document chromedp has not loaded yet.
const firstMatchJS = `function() {
	const doc = this.nodeType === Node.DOCUMENT_NODE ? this : this.contentDocument;
	if (!doc) {
		return null;
	}
	return doc.evaluate(%s, doc, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
}`

// documentQuery evaluates an XPath against a single document.
type documentQuery interface {
	FirstMatch(ctx context.Context, doc *cdp.Node, xpath string) (cdp.NodeID, bool, error)
}

// byDocumentXPath is a chromedp ByFunc body for XPath queries scoped with
// FromNode. chromedp passes the iframe's content document as the root, and
// only that document is searched. BySearch would scan every document of the
// page and return the host page's match first.
func byDocumentXPath(xpath string, query documentQuery) func(context.Context, *cdp.Node) ([]cdp.NodeID, error) {
	return func(ctx context.Context, root *cdp.Node) ([]cdp.NodeID, error) {
		if root == nil {
			return []cdp.NodeID{}, nil
		}
		if root.ContentDocument != nil {
			root = root.ContentDocument
		}

		id, found, err := query.FirstMatch(ctx, root, xpath)
		if err != nil {
			return nil, err
		}
		if !found {
			return []cdp.NodeID{}, nil
		}
		return []cdp.NodeID{id}, nil
	}
}

type cdpDocumentQuery struct{}

func (cdpDocumentQuery) FirstMatch(ctx context.Context, doc *cdp.Node, xpath string) (cdp.NodeID, bool, error) {
	literal, err := json.Marshal(xpath)
	if err != nil {
		return cdp.EmptyNodeID, false, fmt.Errorf("quote xpath: %w", err)
	}

	target, err := dom.ResolveNode().WithNodeID(doc.NodeID).Do(ctx)
	if err != nil {
		return cdp.EmptyNodeID, false, fmt.Errorf("resolve frame document: %w", err)
	}
	defer func() { _ = runtime.ReleaseObject(target.ObjectID).Do(ctx) }()

	match, exception, err := runtime.CallFunctionOn(fmt.Sprintf(firstMatchJS, literal)).
		WithObjectID(target.ObjectID).
		Do(ctx)
	if err != nil {
		return cdp.EmptyNodeID, false, fmt.Errorf("evaluate xpath in frame: %w", err)
	}
	if exception != nil {
		return cdp.EmptyNodeID, false, exception
	}
	if match == nil || match.ObjectID == "" || match.Subtype == runtime.SubtypeNull {
		return cdp.EmptyNodeID, false, nil
	}
	defer func() { _ = runtime.ReleaseObject(match.ObjectID).Do(ctx) }()

	id, err := dom.RequestNode(match.ObjectID).Do(ctx)
	if err != nil {
		return cdp.EmptyNodeID, false, fmt.Errorf("request matched node: %w", err)
	}
	return id, id != cdp.EmptyNodeID, nil
}
