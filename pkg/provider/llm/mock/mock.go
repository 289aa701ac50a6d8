// Package mock provides a call-recording llm.Provider double.
//
// Tests script the outcome through the exported fields and assert on the
// recorded calls afterwards:
//
//	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: `{"rooms": []}`}}
//	_, _ = strategy.Parse(ctx, transcript, items)
//	req := p.CompleteCalls[0].Req
package mock

import (
	"context"
	"sync"

	"github.com/kairosUNIVERSAL/vizi-kp/pkg/provider/llm"
)

// CompleteCall is one recorded Complete invocation.
type CompleteCall struct {
	Ctx context.Context
	Req llm.CompletionRequest
}

// Provider implements llm.Provider with scripted results. Set the response
// fields before use; reading CompleteCalls is safe once calls have finished.
type Provider struct {
	mu sync.Mutex

	// CompleteResponse and CompleteErr are handed back by every Complete
	// call. Both may be set; error cases usually leave the response nil.
	CompleteResponse *llm.CompletionResponse
	CompleteErr      error

	// CompleteCalls collects invocations in order.
	CompleteCalls []CompleteCall
}

var _ llm.Provider = (*Provider)(nil)

// Complete records the invocation and returns the scripted result.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req})
	p.mu.Unlock()
	return p.CompleteResponse, p.CompleteErr
}
