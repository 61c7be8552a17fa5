// Package gcpkms provides an RC4 KeyProvider backed by Google Cloud KMS.
//
// Each RC4 key is stored encrypted under a Cloud KMS CryptoKey and unwrapped
// with the Decrypt RPC when the provider is built. Requests carry a CRC32C
// checksum of the ciphertext and the plaintext checksum in the response is
// verified before the key is accepted.
//
// Usage:
//
//	client, err := kms.NewKeyManagementClient(ctx)
//	provider, err := gcpkms.New(ctx, client,
//	    gcpkms.WithEncryptedKey(ciphertext, "key-1", resourceName),
//	)
package gcpkms

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"

	kmspb "cloud.google.com/go/kms/apiv1/kmspb"
	rc4 "github.com/rbaliyan/config-rc4"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ErrChecksumMismatch is returned when the plaintext returned by Cloud KMS
// does not match its CRC32C checksum.
var ErrChecksumMismatch = errors.New("gcpkms: plaintext checksum mismatch")

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Client is the subset of the Cloud KMS API used by this provider.
type Client interface {
	Decrypt(ctx context.Context, req *kmspb.DecryptRequest) (*kmspb.DecryptResponse, error)
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	keys []wrappedKey
	aad  []byte
}

type wrappedKey struct {
	id           string
	resourceName string // projects/*/locations/*/keyRings/*/cryptoKeys/*
	ciphertext   []byte
}

// WithEncryptedKey adds an RC4 key encrypted under the Cloud KMS CryptoKey
// named by resourceName. The first key added becomes the current key.
func WithEncryptedKey(ciphertext []byte, id, resourceName string) Option {
	return func(o *options) {
		o.keys = append(o.keys, wrappedKey{id: id, resourceName: resourceName, ciphertext: ciphertext})
	}
}

// WithAdditionalAuthenticatedData sets the AAD that was supplied when the
// keys were encrypted. It applies to every key.
func WithAdditionalAuthenticatedData(aad []byte) Option {
	return func(o *options) {
		o.aad = aad
	}
}

// New unwraps every configured key with Cloud KMS and returns a provider
// holding them. The client is not retained.
func New(ctx context.Context, client Client, opts ...Option) (*rc4.StaticKeyProvider, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.keys) == 0 {
		return nil, fmt.Errorf("gcpkms: at least one encrypted key is required")
	}

	keys := make([]rc4.Key, 0, len(o.keys))
	defer func() {
		for _, k := range keys {
			clear(k.Bytes)
		}
	}()

	for _, wk := range o.keys {
		plaintext, err := decrypt(ctx, client, wk, o.aad)
		if err != nil {
			return nil, fmt.Errorf("gcpkms: failed to decrypt key %q: %w", wk.id, err)
		}
		keys = append(keys, rc4.Key{ID: wk.id, Bytes: plaintext})
	}

	provider, err := rc4.NewStaticKeyProviderFromKeys(keys...)
	if err != nil {
		return nil, fmt.Errorf("gcpkms: %w", err)
	}
	return provider, nil
}

func decrypt(ctx context.Context, client Client, wk wrappedKey, aad []byte) ([]byte, error) {
	req := &kmspb.DecryptRequest{
		Name:             wk.resourceName,
		Ciphertext:       wk.ciphertext,
		CiphertextCrc32C: checksum(wk.ciphertext),
	}
	if len(aad) > 0 {
		req.AdditionalAuthenticatedData = aad
		req.AdditionalAuthenticatedDataCrc32C = checksum(aad)
	}

	resp, err := client.Decrypt(ctx, req)
	if err != nil {
		return nil, err
	}
	if want := resp.GetPlaintextCrc32C(); want != nil && checksum(resp.GetPlaintext()).GetValue() != want.GetValue() {
		clear(resp.Plaintext)
		return nil, ErrChecksumMismatch
	}
	return resp.GetPlaintext(), nil
}

func checksum(b []byte) *wrapperspb.Int64Value {
	return wrapperspb.Int64(int64(crc32.Checksum(b, castagnoli)))
}
