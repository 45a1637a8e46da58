package taghelper

// Pool is a free list of tag helper builders. It is not safe for
// concurrent use: each compilation owns its own pool.
type Pool struct {
	free   []*Builder
	leased int
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Lease is a scoped handle on a pooled builder. After Release the handle is
// dead: Builder panics.
type Lease struct {
	pool *Pool
	b    *Builder
}

// Get leases a reset builder.
func (p *Pool) Get() *Lease {
	var b *Builder
	if n := len(p.free); n > 0 {
		b = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		b = &Builder{}
	}
	p.leased++
	return &Lease{pool: p, b: b}
}

// Builder returns the leased builder. It panics after Release.
func (l *Lease) Builder() *Builder {
	if l.b == nil {
		panic("taghelper: builder used after release")
	}
	return l.b
}

// Release resets the builder and returns it to the pool. A second Release
// is a no-op.
func (l *Lease) Release() {
	if l.b == nil {
		return
	}
	l.b.Reset()
	l.pool.free = append(l.pool.free, l.b)
	l.pool.leased--
	l.b = nil
}

// Build leases a builder, lets fn fill it, builds and releases.
func (p *Pool) Build(fn func(*Builder)) *Descriptor {
	l := p.Get()
	defer l.Release()
	b := l.Builder()
	fn(b)
	return b.Build()
}

// Leased returns the number of outstanding leases.
func (p *Pool) Leased() int {
	return p.leased
}

// Idle returns the number of pooled builders.
func (p *Pool) Idle() int {
	return len(p.free)
}
