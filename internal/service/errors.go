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

package service

import "strings"

// ValidationError carries per-field problems for a rejected request. It unwraps to the
// sentinel describing the kind of request that failed.
type ValidationError struct {
	Err     error
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Err.Error() + ": " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UnknownForumsError lists forum identifiers the identity provider does not know
type UnknownForumsError struct {
	Err    error
	Forums []string
}

func (e *UnknownForumsError) Error() string {
	return e.Err.Error() + ": " + strings.Join(e.Forums, ", ")
}

func (e *UnknownForumsError) Unwrap() error {
	return e.Err
}
