package cache

// ScopedKeyer prefixes every key of an inner keyer. It keeps mizgra entries
// apart from other tenants of a shared Redis instance:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mizgra:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey returns the prefixed key of the inner keyer.
func (k *ScopedKeyer) HTTPKey(namespace, url string) string {
	return k.prefix + k.inner.HTTPKey(namespace, url)
}
