package gateway

import (
	"strings"

	paymentdomain "github.com/prompttemplates/marketplace/internal/payment/domain"
)

// Registry resolves payment adapters by provider name.
type Registry struct {
	adapters map[string]paymentdomain.Adapter
}

func NewRegistry(adapters ...paymentdomain.Adapter) *Registry {
	byName := make(map[string]paymentdomain.Adapter, len(adapters))
	for _, a := range adapters {
		byName[strings.ToLower(a.Provider())] = a
	}
	return &Registry{adapters: byName}
}

func (r *Registry) Adapter(provider string) (paymentdomain.Adapter, error) {
	adapter, ok := r.adapters[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return nil, paymentdomain.ErrProviderNotFound
	}
	return adapter, nil
}
