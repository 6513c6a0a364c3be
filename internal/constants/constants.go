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

package constants

// Order modes accepted for configurations and scrape requests
const (
	OrderByNew = "new"
	OrderByTop = "top"
)

// Configuration defaults applied when a user has not saved one yet
const (
	DefaultTopPostsLimit    = 10
	DefaultTopCommentsLimit = 10
	DefaultLastHours        = 24
	DefaultOrderBy          = OrderByNew
	DefaultTimeFilter       = "hour"
)

// HourOfDayStep is the granularity of time range bounds.
// Limits and enums live in the dto binding tags.
const HourOfDayStep = 0.5

// Gin context keys
const (
	ContextKeyUserID   = "userId"
	ContextKeyUsername = "username"
)
