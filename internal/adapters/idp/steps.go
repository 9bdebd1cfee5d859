package idp

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

type stepKind int

const (
	stepNavigate stepKind = iota
	stepExpect
	stepClick
	stepFill
	stepType
	stepWaitURL
)

// Step is one scripted browser action. Text is never included in errors
// because it may hold the password.
type Step struct {
	kind    stepKind
	name    string
	url     string
	locator ports.Locator
	text    string
	timeout time.Duration
}

func navigate(url string) Step {
	return Step{kind: stepNavigate, name: "open " + url, url: url}
}

func expect(name string, locator ports.Locator, timeout time.Duration) Step {
	return Step{kind: stepExpect, name: name, locator: locator, timeout: timeout}
}

func click(name string, locator ports.Locator) Step {
	return Step{kind: stepClick, name: name, locator: locator}
}

func fill(name string, locator ports.Locator, text string) Step {
	return Step{kind: stepFill, name: name, locator: locator, text: text}
}

// typeSlowly presses one key per character like a person would.
func typeSlowly(name string, locator ports.Locator, text string) Step {
	return Step{kind: stepType, name: name, locator: locator, text: text}
}

func waitURL(prefix string) Step {
	return Step{kind: stepWaitURL, name: "return to " + prefix, url: prefix, timeout: defaultURLTimeout}
}

func run(ctx context.Context, page ports.Page, steps []Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.do(ctx, page); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

func (s Step) do(ctx context.Context, page ports.Page) error {
	switch s.kind {
	case stepNavigate:
		return page.Navigate(ctx, s.url)
	case stepExpect:
		timeout := s.timeout
		if timeout <= 0 {
			timeout = defaultElementTimeout
		}
		visible, err := page.WaitFor(ctx, s.locator, ports.StateVisible, timeout)
		if err != nil {
			return err
		}
		if !visible {
			return fmt.Errorf("%s not visible within %s", s.locator, timeout)
		}
		return nil
	case stepClick:
		return page.Click(ctx, s.locator)
	case stepFill:
		if err := page.Clear(ctx, s.locator); err != nil {
			return err
		}
		return page.Type(ctx, s.locator, s.text, 0)
	case stepType:
		return page.Type(ctx, s.locator, s.text, keystrokeDelay)
	case stepWaitURL:
		ok, err := page.WaitForURL(ctx, s.url, s.timeout)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("still not on %s after %s", s.url, s.timeout)
		}
		return nil
	default:
		return fmt.Errorf("unknown step kind %d", s.kind)
	}
}
