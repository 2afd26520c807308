package core

import "sync"

// codecPair holds the registered codecs for one format.  Either side may be
// nil: HEIF registers only a decoder, and a caller could plug in an
// encode-only target.
type codecPair struct {
	dec Decoder
	enc Encoder
}

// DefaultRegistry is a mutex-guarded Format to codec mapping.  Registration
// happens during facade construction; lookups happen on every scrub.
type DefaultRegistry struct {
	mu     sync.RWMutex
	codecs map[Format]codecPair
}

// NewRegistry returns an empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{codecs: make(map[Format]codecPair)}
}

func (r *DefaultRegistry) RegisterDecoder(f Format, d Decoder) {
	r.mu.Lock()
	pair := r.codecs[f]
	pair.dec = d
	r.codecs[f] = pair
	r.mu.Unlock()
}

func (r *DefaultRegistry) RegisterEncoder(f Format, e Encoder) {
	r.mu.Lock()
	pair := r.codecs[f]
	pair.enc = e
	r.codecs[f] = pair
	r.mu.Unlock()
}

func (r *DefaultRegistry) DecoderFor(f Format) (Decoder, bool) {
	r.mu.RLock()
	pair := r.codecs[f]
	r.mu.RUnlock()
	return pair.dec, pair.dec != nil
}

func (r *DefaultRegistry) EncoderFor(f Format) (Encoder, bool) {
	r.mu.RLock()
	pair := r.codecs[f]
	r.mu.RUnlock()
	return pair.enc, pair.enc != nil
}

var _ Registry = (*DefaultRegistry)(nil)
