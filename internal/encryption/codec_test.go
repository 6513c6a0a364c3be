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
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(id string, fill byte) *Key {
	return &Key{ID: id, Data: bytes.Repeat([]byte{fill}, KeySize)}
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	ring, err := NewKeyRing(testKey("k1", 0x42))
	require.NoError(t, err)
	codec, err := NewCodec(ring, nil)
	require.NoError(t, err)
	return codec
}

// flipBit returns a copy of the hex string with one bit inverted
func flipBit(t *testing.T, encoded string, bit int) string {
	t.Helper()
	data, err := hex.DecodeString(encoded)
	require.NoError(t, err)
	data[bit/8] ^= 1 << (bit % 8)
	return hex.EncodeToString(data)
}

func TestSealUnsealRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	secrets := []string{
		"correct-pw",
		"a",
		"pässwörd with ünïcode ✓",
		strings.Repeat("long-secret-", 200),
		"with\nnewline and \x00 null",
	}

	for _, secret := range secrets {
		sealed, err := codec.Seal(secret)
		require.NoError(t, err)

		opened, err := codec.Unseal(sealed)
		require.NoError(t, err)
		assert.Equal(t, secret, opened)
	}
}

func TestSealProducesWellFormedBundle(t *testing.T) {
	codec := newTestCodec(t)

	sealed, err := codec.Seal("correct-pw")
	require.NoError(t, err)

	iv, err := hex.DecodeString(sealed.IV)
	require.NoError(t, err)
	assert.Len(t, iv, NonceSize)

	tag, err := hex.DecodeString(sealed.AuthTag)
	require.NoError(t, err)
	assert.Len(t, tag, TagSize)

	ciphertext, err := hex.DecodeString(sealed.Ciphertext)
	require.NoError(t, err)
	assert.Len(t, ciphertext, len("correct-pw"))

	assert.Equal(t, "k1", sealed.KeyID)
	assert.NotContains(t, sealed.Ciphertext, hex.EncodeToString([]byte("correct-pw")))
}

func TestSealNonceFreshness(t *testing.T) {
	codec := newTestCodec(t)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		sealed, err := codec.Seal("same-plaintext")
		require.NoError(t, err)

		pair := sealed.Ciphertext + "|" + sealed.IV
		assert.False(t, seen[pair], "ciphertext/nonce pair repeated")
		assert.False(t, seen["iv:"+sealed.IV], "nonce repeated")
		seen[pair] = true
		seen["iv:"+sealed.IV] = true
	}
}

func TestUnsealDetectsSingleBitTampering(t *testing.T) {
	codec := newTestCodec(t)

	sealed, err := codec.Seal("tamper-target")
	require.NoError(t, err)

	ciphertextBits := len(sealed.Ciphertext) / 2 * 8
	for bit := 0; bit < ciphertextBits; bit++ {
		tampered := *sealed
		tampered.Ciphertext = flipBit(t, sealed.Ciphertext, bit)

		opened, err := codec.Unseal(&tampered)
		assert.ErrorIs(t, err, ErrIntegrityFailure, "ciphertext bit %d", bit)
		assert.Empty(t, opened)
	}

	for bit := 0; bit < TagSize*8; bit++ {
		tampered := *sealed
		tampered.AuthTag = flipBit(t, sealed.AuthTag, bit)

		opened, err := codec.Unseal(&tampered)
		assert.ErrorIs(t, err, ErrIntegrityFailure, "tag bit %d", bit)
		assert.Empty(t, opened)
	}
}

func TestUnsealWithWrongKeyFails(t *testing.T) {
	codec := newTestCodec(t)
	sealed, err := codec.Seal("secret")
	require.NoError(t, err)

	otherRing, err := NewKeyRing(testKey("k1", 0x17))
	require.NoError(t, err)
	other, err := NewCodec(otherRing, nil)
	require.NoError(t, err)

	_, err = other.Unseal(sealed)
	assert.ErrorIs(t, err, ErrIntegrityFailure)
}

func TestUnsealMalformedInput(t *testing.T) {
	codec := newTestCodec(t)
	valid, err := codec.Seal("secret")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(s *SealedSecret)
	}{
		{"missing ciphertext", func(s *SealedSecret) { s.Ciphertext = "" }},
		{"missing iv", func(s *SealedSecret) { s.IV = "" }},
		{"missing tag", func(s *SealedSecret) { s.AuthTag = "" }},
		{"ciphertext not hex", func(s *SealedSecret) { s.Ciphertext = "zz" + s.Ciphertext[2:] }},
		{"iv not hex", func(s *SealedSecret) { s.IV = "not-hex-at-all-xx" }},
		{"tag odd length", func(s *SealedSecret) { s.AuthTag = s.AuthTag[1:] }},
		{"iv too short", func(s *SealedSecret) { s.IV = s.IV[:len(s.IV)-2] }},
		{"iv too long", func(s *SealedSecret) { s.IV = s.IV + "00" }},
		{"tag too short", func(s *SealedSecret) { s.AuthTag = s.AuthTag[:len(s.AuthTag)-2] }},
		{"unknown key id", func(s *SealedSecret) { s.KeyID = "k9" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := *valid
			tt.mutate(&bundle)

			opened, err := codec.Unseal(&bundle)
			assert.ErrorIs(t, err, ErrMalformedInput)
			assert.False(t, errors.Is(err, ErrIntegrityFailure))
			assert.Empty(t, opened)
		})
	}

	_, err = codec.Unseal(nil)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestSealEmptySecret(t *testing.T) {
	codec := newTestCodec(t)

	_, err := codec.Seal("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestCodecWithoutKey(t *testing.T) {
	_, err := NewCodec(nil, nil)
	assert.ErrorIs(t, err, ErrKeyMissing)

	var codec *Codec
	_, err = codec.Seal("secret")
	assert.ErrorIs(t, err, ErrKeyMissing)

	_, err = (&Codec{}).Unseal(&SealedSecret{})
	assert.ErrorIs(t, err, ErrKeyMissing)
}

func TestUnsealAfterKeyRotation(t *testing.T) {
	oldRing, err := NewKeyRing(testKey("k1", 0x01))
	require.NoError(t, err)
	oldCodec, err := NewCodec(oldRing, nil)
	require.NoError(t, err)

	sealedWithOld, err := oldCodec.Seal("rotate-me")
	require.NoError(t, err)

	newRing, err := NewKeyRing(testKey("k2", 0x02), testKey("k1", 0x01))
	require.NoError(t, err)
	newCodec, err := NewCodec(newRing, nil)
	require.NoError(t, err)

	opened, err := newCodec.Unseal(sealedWithOld)
	require.NoError(t, err)
	assert.Equal(t, "rotate-me", opened)

	resealed, err := newCodec.Seal(opened)
	require.NoError(t, err)
	assert.Equal(t, "k2", resealed.KeyID)

	_, err = oldCodec.Unseal(resealed)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestUnsealLegacyBundleWithoutKeyID(t *testing.T) {
	codec := newTestCodec(t)

	sealed, err := codec.Seal("legacy")
	require.NoError(t, err)
	sealed.KeyID = ""

	opened, err := codec.Unseal(sealed)
	require.NoError(t, err)
	assert.Equal(t, "legacy", opened)
}
