package rc4

import (
	"context"
	"fmt"

	"github.com/rbaliyan/config/codec"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Codec wraps an inner codec with RC4.
// On Encode, the inner codec serializes the value, then the result is passed
// through the keystream of the provider's current key and prefixed with a
// header naming that key.
// On Decode, the header selects the key, the payload is passed through the
// keystream again, and the inner codec deserializes the plaintext.
//
// RC4 provides confidentiality only. Encoding the same value twice under the
// same key yields the same bytes, and tampering is not detected.
//
// Codec is safe for concurrent use if the underlying KeyProvider and inner codec are safe
// for concurrent use. StaticKeyProvider satisfies this requirement.
type Codec struct {
	inner    codec.Codec
	provider KeyProvider
	name     string
	tel      *telemetry
}

// Compile-time interface check.
var _ codec.Codec = (*Codec)(nil)

// CodecOption configures a Codec.
type CodecOption func(*codecOptions)

type codecOptions struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider sets the tracer provider used for codec spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) CodecOption {
	return func(o *codecOptions) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider used for codec metrics.
// Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) CodecOption {
	return func(o *codecOptions) {
		o.meterProvider = mp
	}
}

// NewCodec creates an RC4 codec that wraps the given inner codec.
// The codec name is "rc4:<inner>", e.g. "rc4:json".
// Returns an error if inner or provider is nil.
func NewCodec(inner codec.Codec, provider KeyProvider, opts ...CodecOption) (*Codec, error) {
	if inner == nil {
		return nil, fmt.Errorf("rc4: NewCodec inner codec is nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("rc4: NewCodec provider is nil")
	}

	var o codecOptions
	for _, opt := range opts {
		opt(&o)
	}
	tel, err := newTelemetry(o.tracerProvider, o.meterProvider)
	if err != nil {
		return nil, err
	}

	return &Codec{
		inner:    inner,
		provider: provider,
		name:     "rc4:" + inner.Name(),
		tel:      tel,
	}, nil
}

// Name returns the codec name, e.g. "rc4:json".
func (c *Codec) Name() string {
	return c.name
}

// Encode serializes the value using the inner codec, then encrypts the result.
func (c *Codec) Encode(v any) ([]byte, error) {
	return c.EncodeContext(context.Background(), v)
}

// Decode decrypts the data, then deserializes the plaintext using the inner codec.
func (c *Codec) Decode(data []byte, v any) error {
	return c.DecodeContext(context.Background(), data, v)
}

// EncodeContext is like Encode but records telemetry under ctx.
func (c *Codec) EncodeContext(ctx context.Context, v any) (data []byte, err error) {
	var (
		keyID string
		n     int
	)
	ctx, span := c.tel.start(ctx, opEncode, c.name)
	defer func() { c.tel.finish(ctx, span, opEncode, keyID, n, err) }()

	plaintext, err := c.inner.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("rc4: inner encode failed: %w", err)
	}

	key, err := c.provider.CurrentKey()
	if err != nil {
		return nil, fmt.Errorf("rc4: failed to get current key: %w", err)
	}
	defer clear(key.Bytes)
	keyID = key.ID

	data, err = encrypt(plaintext, key)
	if err != nil {
		return nil, err
	}
	n = len(plaintext)
	return data, nil
}

// DecodeContext is like Decode but records telemetry under ctx.
func (c *Codec) DecodeContext(ctx context.Context, data []byte, v any) (err error) {
	var (
		keyID string
		n     int
	)
	ctx, span := c.tel.start(ctx, opDecode, c.name)
	defer func() { c.tel.finish(ctx, span, opDecode, keyID, n, err) }()

	if h, _, herr := readHeader(data); herr == nil {
		keyID = h.keyID
	}

	plaintext, err := decrypt(data, c.provider)
	if err != nil {
		return fmt.Errorf("rc4: decrypt failed: %w", err)
	}
	n = len(plaintext)

	if err := c.inner.Decode(plaintext, v); err != nil {
		return fmt.Errorf("rc4: inner decode failed: %w", err)
	}
	return nil
}
