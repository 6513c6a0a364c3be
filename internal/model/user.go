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

package model

import (
	"time"

	"github.com/gilneto8/peggit/internal/encryption"
)

// User represents a Reddit account that has logged in at least once
type User struct {
	ID                string    `db:"id"`
	Username          string    `db:"username"`
	EncryptedPassword string    `db:"encrypted_password"`
	IV                string    `db:"iv"`
	AuthTag           string    `db:"auth_tag"`
	KeyID             string    `db:"key_id"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// SealedSecret returns the stored password bundle
func (u *User) SealedSecret() *encryption.SealedSecret {
	return &encryption.SealedSecret{
		Ciphertext: u.EncryptedPassword,
		IV:         u.IV,
		AuthTag:    u.AuthTag,
		KeyID:      u.KeyID,
	}
}
