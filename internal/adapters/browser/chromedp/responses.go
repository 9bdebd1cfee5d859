package chromedp

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

type bodyFetcher func(ctx context.Context, id network.RequestID) ([]byte, error)

type responseResult struct {
	body []byte
	err  error
}

// responseWatch captures the first response accepted by its filter. The
// request method and body come from requestWillBeSent since responseReceived
// lacks them, and the response body is fetched once loading finished.
type responseWatch struct {
	ctx    context.Context
	cancel context.CancelFunc
	filter ports.ResponseFilter
	fetch  bodyFetcher

	mu      sync.Mutex
	requests map[network.RequestID]sentRequest
	matched map[network.RequestID]bool
	claimed bool

	result chan responseResult
}

var _ ports.PendingResponse = (*responseWatch)(nil)

func watchResponses(tabCtx context.Context, filter ports.ResponseFilter) *responseWatch {
	listenCtx, cancel := context.WithCancel(tabCtx)
	w := newResponseWatch(listenCtx, cancel, filter, fetchBody)
	chromedp.ListenTarget(listenCtx, w.handle)
	return w
}

func newResponseWatch(ctx context.Context, cancel context.CancelFunc, filter ports.ResponseFilter, fetch bodyFetcher) *responseWatch {
	return &responseWatch{
		ctx:     ctx,
		cancel:  cancel,
		filter:  filter,
		fetch:   fetch,
		requests: map[network.RequestID]sentRequest{},
		matched: map[network.RequestID]bool{},
		result:  make(chan responseResult, 1),
	}
}

// handle runs on the chromedp event loop and must not block.
func (w *responseWatch) handle(ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if e.Request == nil {
			return
		}
		w.mu.Lock()
		w.requests[e.RequestID] = sentRequest{method: e.Request.Method, postData: postData(e.Request)}
		w.mu.Unlock()

	case *network.EventResponseReceived:
		if e.Response == nil {
			return
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.claimed {
			return
		}
		sent := w.requests[e.RequestID]
		info := ports.ResponseInfo{
			URL:      e.Response.URL,
			Method:   sent.method,
			Status:   int(e.Response.Status),
			PostData: sent.postData,
		}
		if w.filter(info) {
			w.matched[e.RequestID] = true
		}

	case *network.EventLoadingFinished:
		w.mu.Lock()
		if w.claimed || !w.matched[e.RequestID] {
			w.mu.Unlock()
			return
		}
		w.claimed = true
		w.mu.Unlock()

		go func(id network.RequestID) {
			body, err := w.fetch(w.ctx, id)
			w.result <- responseResult{body: body, err: err}
		}(e.RequestID)
	}
}

type sentRequest struct {
	method   string
	postData string
}

// postData joins the request's body entries, which the protocol sends base64
// encoded. Entries that fail to decode are skipped.
func postData(req *network.Request) string {
	if !req.HasPostData || len(req.PostDataEntries) == 0 {
		return ""
	}

	var b strings.Builder
	for _, entry := range req.PostDataEntries {
		if entry == nil {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(entry.Bytes)
		if err != nil {
			continue
		}
		b.Write(raw)
	}
	return b.String()
}

func (w *responseWatch) Await(ctx context.Context, timeout time.Duration) ([]byte, error) {
	defer w.Cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-w.result:
		if res.err != nil {
			return nil, fmt.Errorf("read response body: %w", res.err)
		}
		return res.body, nil
	case <-timer.C:
		return nil, ports.ErrWaitTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *responseWatch) Cancel() {
	w.cancel()
}

func fetchBody(ctx context.Context, id network.RequestID) ([]byte, error) {
	var body []byte
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		body, err = network.GetResponseBody(id).Do(ctx)
		return err
	}))
	return body, err
}
