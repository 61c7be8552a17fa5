// Package awskms provides an RC4 KeyProvider backed by AWS KMS.
//
// RC4 keys are stored encrypted under a KMS key and unwrapped with KMS
// Decrypt at construction time. The plaintext keys are then held in a
// memguard-sealed rc4.StaticKeyProvider.
//
// Usage:
//
//	cfg, err := awsconfig.LoadDefaultConfig(ctx)
//	kmsClient := kms.NewFromConfig(cfg)
//
//	provider, err := awskms.New(ctx, kmsClient,
//	    awskms.WithEncryptedKey(encryptedKeyBytes, "key-1"),
//	)
package awskms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	rc4 "github.com/rbaliyan/config-rc4"
)

// Client is the subset of the AWS KMS API used by this provider.
type Client interface {
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	entries []entry
}

type entry struct {
	id    string
	input kms.DecryptInput
}

// WithEncryptedKey adds a KMS-encrypted RC4 key. The first key added becomes
// the current key; later keys are kept for decoding after rotation.
func WithEncryptedKey(ciphertext []byte, id string) Option {
	return func(o *options) {
		o.entries = append(o.entries, entry{
			id:    id,
			input: kms.DecryptInput{CiphertextBlob: ciphertext},
		})
	}
}

// WithEncryptedKeyForKMSKey is like WithEncryptedKey but names the KMS key
// (ARN or alias) that encrypted the ciphertext.
func WithEncryptedKeyForKMSKey(ciphertext []byte, id, kmsKeyID string) Option {
	return func(o *options) {
		o.entries = append(o.entries, entry{
			id:    id,
			input: kms.DecryptInput{CiphertextBlob: ciphertext, KeyId: &kmsKeyID},
		})
	}
}

// New unwraps every configured key with KMS Decrypt and returns a provider
// holding them. The KMS client is not retained.
func New(ctx context.Context, client Client, opts ...Option) (*rc4.StaticKeyProvider, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.entries) == 0 {
		return nil, fmt.Errorf("awskms: at least one encrypted key is required")
	}

	keys := make([]rc4.Key, 0, len(o.entries))
	defer func() {
		for _, k := range keys {
			clear(k.Bytes)
		}
	}()

	for _, e := range o.entries {
		out, err := client.Decrypt(ctx, &e.input)
		if err != nil {
			return nil, fmt.Errorf("awskms: failed to decrypt key %q: %w", e.id, err)
		}
		keys = append(keys, rc4.Key{ID: e.id, Bytes: out.Plaintext})
	}

	provider, err := rc4.NewStaticKeyProviderFromKeys(keys...)
	if err != nil {
		return nil, fmt.Errorf("awskms: %w", err)
	}
	return provider, nil
}
