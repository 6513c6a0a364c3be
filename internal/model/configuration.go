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

import "time"

// Configuration represents a user's scraping configuration
type Configuration struct {
	ID               int64     `db:"id"`
	UserID           string    `db:"user_id"`
	GeneralContext   string    `db:"general_context"`
	TopPostsLimit    int       `db:"top_posts_limit"`
	TopCommentsLimit int       `db:"top_comments_limit"`
	LastHours        int       `db:"last_hours"`
	OrderBy          string    `db:"order_by"`
	TimeFilter       string    `db:"time_filter"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`

	Forums     []Forum     `db:"-"`
	TimeRanges []TimeRange `db:"-"`
}

// TableName returns the table name for the Configuration model
func (Configuration) TableName() string {
	return "configurations"
}

// Forum represents a subreddit monitored by a configuration
type Forum struct {
	ID              int64  `db:"id"`
	ConfigID        int64  `db:"config_id"`
	Identifier      string `db:"identifier"`
	SpecificContext string `db:"specific_context"`
}

// TableName returns the table name for the Forum model
func (Forum) TableName() string {
	return "forums"
}

// TimeRange is a window of hours of the day, in half-hour steps
type TimeRange struct {
	ID       int64   `db:"id"`
	ConfigID int64   `db:"config_id"`
	Min      float64 `db:"min_hour"`
	Max      float64 `db:"max_hour"`
}

// TableName returns the table name for the TimeRange model
func (TimeRange) TableName() string {
	return "time_ranges"
}
