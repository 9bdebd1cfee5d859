package chromedp

import (
	"testing"

	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/stretchr/testify/assert"
)

func TestXPathLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Points History", want: `"Points History"`},
		{name: "double quote", in: `say "hi"`, want: `'say "hi"'`},
		{name: "both quotes", in: `it's "x"`, want: `concat("it's ", '"', "x", '"')`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, xpathLiteral(tt.in))
		})
	}
}

func TestSelectorFor(t *testing.T) {
	t.Parallel()

	sel, _ := selectorFor(ports.CSS(".particle-pwe-btn"))
	assert.Equal(t, ".particle-pwe-btn", sel)

	sel, _ = selectorFor(ports.XPath("//html/body/div[1]//button[2]"))
	assert.Equal(t, "//html/body/div[1]//button[2]", sel)

	sel, _ = selectorFor(ports.Text("View on block explorer").InFrame(".particle-pwe-iframe"))
	assert.Equal(t, `//*[text()[contains(., "View on block explorer")]]`, sel)
}

func TestWaitActionRejectsUnknownState(t *testing.T) {
	t.Parallel()

	for _, state := range []ports.ElementState{ports.StateAttached, ports.StateVisible, ports.StateHidden, ports.StateDetached} {
		wait, err := waitAction(state)
		assert.NoError(t, err)
		assert.NotNil(t, wait)
	}

	_, err := waitAction("stable")
	assert.Error(t, err)
}

func TestTypingTasksInterleavesDelays(t *testing.T) {
	t.Parallel()

	assert.Len(t, typingTasks("#a", nil, "abc", 100), 1+3+2)
	assert.Len(t, typingTasks("#a", nil, "abc", 0), 1+3)
	assert.Len(t, typingTasks("#a", nil, "", 100), 1)
}

func TestWithDefaults(t *testing.T) {
	t.Parallel()

	opts := withDefaults(Options{Headless: true})
	assert.Equal(t, DefaultWidth, opts.Width)
	assert.Equal(t, DefaultHeight, opts.Height)
	assert.Equal(t, defaultActionTimeout, opts.ActionTimeout)
	assert.Equal(t, defaultReadTimeout, opts.ReadTimeout)

	opts = withDefaults(Options{Width: 1280, Height: 720})
	assert.Equal(t, 1280, opts.Width)
	assert.Equal(t, 720, opts.Height)
}
