/*
 *  Copyright (c) 2025, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 */

package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
)

const (
	// NonceSize is the size of the nonce for AES-GCM (12 bytes is standard)
	NonceSize = 12

	// TagSize is the size of the GCM authentication tag
	TagSize = 16
)

// SealedSecret is the at-rest form of a password. All three byte components are hex encoded
// and only meaningful together.
type SealedSecret struct {
	Ciphertext string `json:"encryptedData"`
	IV         string `json:"iv"`
	AuthTag    string `json:"authTag"`
	KeyID      string `json:"keyId,omitempty"`
}

// Codec seals and unseals secrets with AES-256-GCM
type Codec struct {
	keys   *KeyRing
	logger *zap.Logger
}

// NewCodec creates a codec over the given key ring and verifies it with a round trip
func NewCodec(keys *KeyRing, logger *zap.Logger) (*Codec, error) {
	if keys.Primary() == nil {
		return nil, ErrKeyMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	codec := &Codec{keys: keys, logger: logger}
	if err := codec.HealthCheck(); err != nil {
		return nil, err
	}

	logger.Info("Sealing codec initialized",
		zap.String("primary_key_id", keys.Primary().ID),
		zap.Strings("key_ids", keys.IDs()),
	)

	return codec, nil
}

// Seal encrypts plaintext with the primary key and a fresh random nonce
func (c *Codec) Seal(plaintext string) (*SealedSecret, error) {
	if c == nil || c.keys.Primary() == nil {
		return nil, ErrKeyMissing
	}
	if plaintext == "" {
		return nil, ErrEmptySecret
	}

	key := c.keys.Primary()
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// GCM appends the auth tag to the ciphertext
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	split := len(sealed) - TagSize

	c.logger.Debug("Sealed secret",
		zap.String("key_id", key.ID),
		zap.Int("ciphertext_size", split),
	)

	return &SealedSecret{
		Ciphertext: hex.EncodeToString(sealed[:split]),
		IV:         hex.EncodeToString(nonce),
		AuthTag:    hex.EncodeToString(sealed[split:]),
		KeyID:      key.ID,
	}, nil
}

// Unseal verifies and decrypts a sealed secret
func (c *Codec) Unseal(secret *SealedSecret) (string, error) {
	if c == nil || c.keys.Primary() == nil {
		return "", ErrKeyMissing
	}
	if secret == nil {
		return "", fmt.Errorf("%w: sealed secret is nil", ErrMalformedInput)
	}

	ciphertext, err := decodeComponent("ciphertext", secret.Ciphertext, -1)
	if err != nil {
		return "", err
	}
	nonce, err := decodeComponent("iv", secret.IV, NonceSize)
	if err != nil {
		return "", err
	}
	tag, err := decodeComponent("auth tag", secret.AuthTag, TagSize)
	if err != nil {
		return "", err
	}

	key, err := c.keys.Key(secret.KeyID)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		c.logger.Warn("Sealed secret failed authentication",
			zap.String("key_id", key.ID),
		)
		return "", ErrIntegrityFailure
	}

	return string(plaintext), nil
}

// HealthCheck validates that the primary key can seal and unseal
func (c *Codec) HealthCheck() error {
	const sample = "health-check-test-data"

	sealed, err := c.Seal(sample)
	if err != nil {
		return fmt.Errorf("health check seal failed: %w", err)
	}
	opened, err := c.Unseal(sealed)
	if err != nil {
		return fmt.Errorf("health check unseal failed: %w", err)
	}
	if opened != sample {
		return fmt.Errorf("health check round-trip failed: data mismatch")
	}
	return nil
}

func newGCM(key *Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// decodeComponent hex decodes one part of a sealed secret. size < 0 accepts any non-empty length.
func decodeComponent(name, encoded string, size int) ([]byte, error) {
	if encoded == "" {
		return nil, fmt.Errorf("%w: %s is missing", ErrMalformedInput, name)
	}
	data, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid hex", ErrMalformedInput, name)
	}
	if size >= 0 && len(data) != size {
		return nil, fmt.Errorf("%w: %s must be %d bytes, got %d", ErrMalformedInput, name, size, len(data))
	}
	return data, nil
}
