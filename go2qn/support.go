package go2qn

import "sync"

func NewCatalogContext() CatalogContext {
	ctx := &catalogContext{
		openCatalogs: make(map[Catalog]struct{}),
		closing:      make(chan struct{}),
		closed:       make(chan struct{}),
	}
	ctx.openCount.Add(1)
	go func() {
		<-ctx.Closing()
		ctx.openCount.Done()
		ctx.openCount.Wait()
		close(ctx.closed)
	}()
	return ctx
}

type catalogContext struct {
	mu           sync.Mutex
	openCount    sync.WaitGroup
	openCatalogs map[Catalog]struct{}
	closing      chan struct{}
	closed       chan struct{}
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.openCount.Add(1)
	ctx.mu.Lock()
	ctx.openCatalogs[cat] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	if _, exists := ctx.openCatalogs[cat]; exists {
		delete(ctx.openCatalogs, cat)
		ctx.openCount.Done()
	}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) Closing() <-chan struct{} {
	return ctx.closing
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.closed
}

func (ctx *catalogContext) Close() {
	close(ctx.closing)
	ctx.mu.Lock()
	for cat := range ctx.openCatalogs {
		go cat.Close()
	}
	ctx.mu.Unlock()
}

// DefaultNetSelector selects all well formed go2qn networks.
var DefaultNetSelector = NetSelector{
	Min: NetInfo{
		NumQubits: 2,
		NumGates:  1,
	},
	Max: NetInfo{
		NumQubits: MaxQubits,
		NumGates:  MaxDepth,
	},
}

// SelectsNet is a convenience function used to see if a Net is selected according to a NetSelector.
func (sel *NetSelector) SelectsNet(X NetState) bool {
	info := X.GetInfo()
	if info.NumQubits < sel.Min.NumQubits || info.NumGates < sel.Min.NumGates {
		return false
	}
	if info.NumQubits > sel.Max.NumQubits || info.NumGates > sel.Max.NumGates {
		return false
	}
	return true
}
