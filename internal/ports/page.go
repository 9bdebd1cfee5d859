package ports

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrWaitTimeout = errors.New("wait timed out")

type SelectorKind string

const (
	SelectorCSS   SelectorKind = "css"
	SelectorXPath SelectorKind = "xpath"
	// SelectorText matches the innermost element whose text contains the value.
	SelectorText SelectorKind = "text"
)

// Locator addresses an element. When Frame is set the selector is resolved
// inside the document of the iframe matched by Frame.
type Locator struct {
	Kind     SelectorKind
	Selector string
	Frame    string
}

func CSS(selector string) Locator {
	return Locator{Kind: SelectorCSS, Selector: selector}
}

func XPath(selector string) Locator {
	return Locator{Kind: SelectorXPath, Selector: selector}
}

func Text(text string) Locator {
	return Locator{Kind: SelectorText, Selector: text}
}

func (l Locator) InFrame(frame string) Locator {
	l.Frame = frame
	return l
}

func (l Locator) String() string {
	if l.Frame == "" {
		return fmt.Sprintf("%s=%s", l.Kind, l.Selector)
	}

	return fmt.Sprintf("%s >> %s=%s", l.Frame, l.Kind, l.Selector)
}

type ElementState string

const (
	StateAttached ElementState = "attached"
	StateDetached ElementState = "detached"
	StateVisible  ElementState = "visible"
	StateHidden   ElementState = "hidden"
)

type Viewport struct {
	Width  int
	Height int
}

type ResponseInfo struct {
	URL    string
	Method string
	Status int
	// PostData is the request body, empty for bodiless requests.
	PostData string
}

func (r ResponseInfo) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

type ResponseFilter func(ResponseInfo) bool

// PendingResponse resolves to the body of the first response accepted by the
// filter it was registered with.
type PendingResponse interface {
	Await(ctx context.Context, timeout time.Duration) ([]byte, error)
	Cancel()
}

// Page is the browser-control capability set the workflow drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor returns false, nil when the state is not reached within timeout.
	WaitFor(ctx context.Context, locator Locator, state ElementState, timeout time.Duration) (bool, error)
	WaitForURL(ctx context.Context, prefix string, timeout time.Duration) (bool, error)
	Click(ctx context.Context, locator Locator) error
	Clear(ctx context.Context, locator Locator) error
	Type(ctx context.Context, locator Locator, text string, perCharDelay time.Duration) error
	ReadText(ctx context.Context, locator Locator) (string, error)
	ClickAt(ctx context.Context, x, y float64) error
	Viewport(ctx context.Context) (Viewport, error)
	// OnResponse must be called before the action that triggers the response.
	OnResponse(ctx context.Context, filter ResponseFilter) (PendingResponse, error)
	Close() error
}

type Browser interface {
	NewPage(ctx context.Context) (Page, error)
}
