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
	"errors"
	"fmt"
)

var (
	// ErrKeyMissing is returned when no sealing key is configured
	ErrKeyMissing = errors.New("encryption key is not configured")

	// ErrIntegrityFailure is returned when the authentication tag does not match the ciphertext
	ErrIntegrityFailure = errors.New("sealed secret failed integrity verification")

	// ErrMalformedInput is returned when a sealed secret component is missing, not hex or of the wrong length
	ErrMalformedInput = errors.New("sealed secret is malformed")

	// ErrEmptySecret is returned when sealing an empty plaintext
	ErrEmptySecret = errors.New("secret must not be empty")
)

// ErrInvalidKeySize indicates encryption key has wrong size
type ErrInvalidKeySize struct {
	KeyID    string
	Expected int
	Actual   int
}

func (e *ErrInvalidKeySize) Error() string {
	return fmt.Sprintf("invalid key size for %q: expected %d bytes, got %d bytes", e.KeyID, e.Expected, e.Actual)
}
