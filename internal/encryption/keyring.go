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
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// KeySize is the required key size for AES-256 (32 bytes)
	KeySize = 32
)

// Key represents a single sealing key with its identifier
type Key struct {
	ID   string
	Data []byte
}

// KeyRing holds the primary sealing key and any retired keys still accepted for unsealing.
// It is read-only once built.
type KeyRing struct {
	keys    map[string]*Key
	primary *Key
}

// NewKeyRing creates a key ring. The primary key seals; all keys unseal.
func NewKeyRing(primary *Key, previous ...*Key) (*KeyRing, error) {
	if primary == nil || len(primary.Data) == 0 {
		return nil, ErrKeyMissing
	}

	ring := &KeyRing{keys: make(map[string]*Key)}
	for _, key := range append([]*Key{primary}, previous...) {
		if key == nil {
			continue
		}
		if strings.TrimSpace(key.ID) == "" {
			return nil, fmt.Errorf("encryption key id must not be empty")
		}
		if strings.Contains(key.ID, ":") || strings.Contains(key.ID, ",") {
			return nil, fmt.Errorf("encryption key id %q must not contain ':' or ','", key.ID)
		}
		if len(key.Data) != KeySize {
			return nil, &ErrInvalidKeySize{KeyID: key.ID, Expected: KeySize, Actual: len(key.Data)}
		}
		if _, exists := ring.keys[key.ID]; exists {
			return nil, fmt.Errorf("duplicate encryption key id: %s", key.ID)
		}
		ring.keys[key.ID] = key
	}
	ring.primary = primary

	return ring, nil
}

// ParseKeyRing builds a key ring from hex encoded configuration values.
// previousSpec lists retired keys as "id:hex,id:hex".
func ParseKeyRing(primaryHex, primaryID, previousSpec string) (*KeyRing, error) {
	primaryHex = strings.TrimSpace(primaryHex)
	if primaryHex == "" {
		return nil, ErrKeyMissing
	}

	primaryData, err := hex.DecodeString(primaryHex)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid hex: %w", err)
	}
	primary := &Key{ID: strings.TrimSpace(primaryID), Data: primaryData}

	var previous []*Key
	for _, entry := range strings.Split(previousSpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, encoded, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("previous key entry must be id:hex, got %q", entry)
		}
		data, err := hex.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return nil, fmt.Errorf("previous key %s is not valid hex: %w", id, err)
		}
		previous = append(previous, &Key{ID: strings.TrimSpace(id), Data: data})
	}

	return NewKeyRing(primary, previous...)
}

// Primary returns the key used for sealing
func (r *KeyRing) Primary() *Key {
	if r == nil {
		return nil
	}
	return r.primary
}

// Key returns the key with the given id. An empty id resolves to the primary key,
// which covers secrets sealed before key ids were recorded.
func (r *KeyRing) Key(id string) (*Key, error) {
	if r == nil || r.primary == nil {
		return nil, ErrKeyMissing
	}
	if id == "" {
		return r.primary, nil
	}
	key, exists := r.keys[id]
	if !exists {
		return nil, fmt.Errorf("%w: unknown key id %q", ErrMalformedInput, id)
	}
	return key, nil
}

// IDs returns the ids of all keys in the ring, primary first
func (r *KeyRing) IDs() []string {
	if r == nil || r.primary == nil {
		return nil
	}
	ids := []string{r.primary.ID}
	for id := range r.keys {
		if id != r.primary.ID {
			ids = append(ids, id)
		}
	}
	return ids
}
