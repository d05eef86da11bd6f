package wallet

import "context"

// Account is a connected wallet account.
type Account struct {
	Address string `json:"address"`
	ChainID int64  `json:"chain_id"`
}

// Provider is a wallet integration the user can pick from.
type Provider interface {
	ID() string
	Name() string
}

// Connector is a Provider that can actually connect and sign. Providers
// that only announce themselves are treated as not installed.
type Connector interface {
	Provider
	Connect(ctx context.Context) (Account, error)
	SignMessage(ctx context.Context, address, message string) (string, error)
	Disconnect(ctx context.Context) error
}

// Available returns the providers that can connect, in order, keeping the
// first of any that share an ID.
func Available(providers ...Provider) []Connector {
	seen := make(map[string]bool, len(providers))
	var out []Connector
	for _, p := range providers {
		c, ok := p.(Connector)
		if !ok || seen[c.ID()] {
			continue
		}
		seen[c.ID()] = true
		out = append(out, c)
	}
	return out
}
