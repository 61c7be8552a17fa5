// Package azurekv provides an RC4 KeyProvider backed by Azure Key Vault.
//
// RC4 keys are wrapped with a Key Vault key (WrapKey) ahead of time and
// unwrapped with UnwrapKey when the provider is built.
//
// Usage:
//
//	cred, err := azidentity.NewDefaultAzureCredential(nil)
//	client, err := azkeys.NewClient("https://my-vault.vault.azure.net/", cred, nil)
//
//	provider, err := azurekv.New(ctx, client,
//	    azurekv.WithWrappedKey(wrapped, "key-1", azurekv.KeyRef{Name: "rc4-kek", Version: "v1"}),
//	)
package azurekv

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azkeys"
	rc4 "github.com/rbaliyan/config-rc4"
)

// Client is the subset of the Azure Key Vault API used by this provider.
type Client interface {
	UnwrapKey(ctx context.Context, keyName string, keyVersion string, parameters azkeys.KeyOperationParameters, options *azkeys.UnwrapKeyOptions) (azkeys.UnwrapKeyResponse, error)
}

// KeyRef names the Key Vault key that wrapped an RC4 key. An empty Version
// selects the latest version.
type KeyRef struct {
	Name    string
	Version string
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	wrapped   []wrappedKey
	algorithm azkeys.EncryptionAlgorithm
}

type wrappedKey struct {
	id        string
	ref       KeyRef
	value     []byte
	algorithm *azkeys.EncryptionAlgorithm // nil uses options.algorithm
}

// WithWrappedKey adds a wrapped RC4 key. The first key added becomes the
// current key.
func WithWrappedKey(wrapped []byte, id string, ref KeyRef) Option {
	return func(o *options) {
		o.wrapped = append(o.wrapped, wrappedKey{id: id, ref: ref, value: wrapped})
	}
}

// WithWrappedKeyAlgorithm is like WithWrappedKey with an explicit unwrap
// algorithm for this key.
func WithWrappedKeyAlgorithm(wrapped []byte, id string, ref KeyRef, alg azkeys.EncryptionAlgorithm) Option {
	return func(o *options) {
		o.wrapped = append(o.wrapped, wrappedKey{id: id, ref: ref, value: wrapped, algorithm: to.Ptr(alg)})
	}
}

// WithAlgorithm sets the default unwrap algorithm. RSA-OAEP-256 if unset.
func WithAlgorithm(alg azkeys.EncryptionAlgorithm) Option {
	return func(o *options) {
		o.algorithm = alg
	}
}

// New unwraps every configured key with Key Vault and returns a provider
// holding them. The client is not retained.
func New(ctx context.Context, client Client, opts ...Option) (*rc4.StaticKeyProvider, error) {
	o := options{algorithm: azkeys.EncryptionAlgorithmRSAOAEP256}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.wrapped) == 0 {
		return nil, fmt.Errorf("azurekv: at least one wrapped key is required")
	}

	keys := make([]rc4.Key, 0, len(o.wrapped))
	defer func() {
		for _, k := range keys {
			clear(k.Bytes)
		}
	}()

	for _, wk := range o.wrapped {
		alg := wk.algorithm
		if alg == nil {
			alg = to.Ptr(o.algorithm)
		}
		resp, err := client.UnwrapKey(ctx, wk.ref.Name, wk.ref.Version, azkeys.KeyOperationParameters{
			Algorithm: alg,
			Value:     wk.value,
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("azurekv: failed to unwrap key %q with %s: %w", wk.id, wk.ref.Name, err)
		}
		keys = append(keys, rc4.Key{ID: wk.id, Bytes: resp.Result})
	}

	provider, err := rc4.NewStaticKeyProviderFromKeys(keys...)
	if err != nil {
		return nil, fmt.Errorf("azurekv: %w", err)
	}
	return provider, nil
}
