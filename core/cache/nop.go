package cache

import "context"

// Nop is a Cache that never stores anything. GetOrLoad always calls the
// loader, which makes Nop a drop-in to switch caching off.
type Nop struct{}

func (n *Nop) Get(string) (any, bool) { return nil, false }

func (n *Nop) Put(string, any, ...PutOption) {}

func (n *Nop) Delete(string) {}

func (n *Nop) Close() {}

func (n *Nop) GetOrLoad(ctx context.Context, key string, load Loader, _ ...PutOption) (any, error) {
	if load == nil {
		return nil, ErrNilLoader
	}
	return load(ctx, key)
}

func NewNop() *Nop {
	return &Nop{}
}

var _ LoadingCache = (*Nop)(nil)
