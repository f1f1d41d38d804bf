package safe

import (
	"fmt"
	"sync"
)

// DefaultServiceURLs maps chain IDs to their public Safe Transaction Service.
var DefaultServiceURLs = map[int64]string{
	1:        "https://safe-transaction-mainnet.safe.global",
	10:       "https://safe-transaction-optimism.safe.global",
	100:      "https://safe-transaction-gnosis-chain.safe.global",
	137:      "https://safe-transaction-polygon.safe.global",
	8453:     "https://safe-transaction-base.safe.global",
	42161:    "https://safe-transaction-arbitrum.safe.global",
	42220:    "https://safe-transaction-celo.safe.global",
	84532:    "https://safe-transaction-base-sepolia.safe.global",
	11155111: "https://safe-transaction-sepolia.safe.global",
}

// ClientProvider resolves the confirmation API for a chain.
type ClientProvider interface {
	ForChain(chainID int64) (ConfirmationAPI, error)
}

// Provider lazily creates and caches one Client per chain.
type Provider struct {
	urls    map[int64]string
	opts    []Option
	mu      sync.Mutex
	clients map[int64]ConfirmationAPI
}

// NewProvider builds a provider from the default service URLs, with overrides taking precedence.
func NewProvider(overrides map[int64]string, opts ...Option) *Provider {
	urls := make(map[int64]string, len(DefaultServiceURLs)+len(overrides))
	for id, u := range DefaultServiceURLs {
		urls[id] = u
	}
	for id, u := range overrides {
		urls[id] = u
	}
	return &Provider{
		urls:    urls,
		opts:    opts,
		clients: make(map[int64]ConfirmationAPI),
	}
}

// Make sure we conform to the interface
var _ ClientProvider = (*Provider)(nil)

// ForChain returns the cached client for chainID, creating it on first use.
func (p *Provider) ForChain(chainID int64) (ConfirmationAPI, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[chainID]; ok {
		return c, nil
	}
	baseURL, ok := p.urls[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}
	c := NewClient(baseURL, p.opts...)
	p.clients[chainID] = c
	return c, nil
}
