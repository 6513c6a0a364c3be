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

package dto

// Forum represents a monitored subreddit in API payloads
type Forum struct {
	ID              int64  `json:"id,omitempty"`
	Identifier      string `json:"identifier" binding:"required"`
	SpecificContext string `json:"specificContext"`
}

// TimeRange represents a window of hours of the day in API payloads.
// The half-hour grid is checked by the configuration service.
type TimeRange struct {
	ID  int64   `json:"id,omitempty"`
	Min float64 `json:"min" binding:"gte=0,lte=23.5,ltefield=Max"`
	Max float64 `json:"max" binding:"gte=0,lte=23.5"`
}

// Configuration represents a user's scraping configuration in API payloads
type Configuration struct {
	GeneralContext   string      `json:"generalContext"`
	TopPostsLimit    int         `json:"topPostsLimit"`
	TopCommentsLimit int         `json:"topCommentsLimit"`
	LastHours        int         `json:"lastHours"`
	OrderBy          string      `json:"orderBy"`
	TimeFilter       string      `json:"timeFilter"`
	Forums           []Forum     `json:"forums"`
	TimeRanges       []TimeRange `json:"timeRanges"`
}

// SaveConfigurationRequest represents the body of POST /api/config.
// Zero values are replaced by defaults.
type SaveConfigurationRequest struct {
	GeneralContext   string      `json:"generalContext"`
	TopPostsLimit    int         `json:"topPostsLimit" binding:"omitempty,min=1,max=100"`
	TopCommentsLimit int         `json:"topCommentsLimit" binding:"omitempty,min=1,max=100"`
	LastHours        int         `json:"lastHours" binding:"omitempty,min=1"`
	OrderBy          string      `json:"orderBy" binding:"omitempty,oneof=new top"`
	TimeFilter       string      `json:"timeFilter" binding:"omitempty,oneof=hour day week month year all"`
	Forums           []Forum     `json:"forums" binding:"dive"`
	TimeRanges       []TimeRange `json:"timeRanges" binding:"dive"`
}

// GetConfigurationResponse represents the body returned by GET /api/config
type GetConfigurationResponse struct {
	Success        bool           `json:"success"`
	Configurations *Configuration `json:"configurations"`
}

// SaveConfigurationResponse represents the body returned by POST /api/config
type SaveConfigurationResponse struct {
	Success        bool           `json:"success"`
	ConfigID       int64          `json:"configId"`
	Configurations *Configuration `json:"configurations"`
}

// SaveTimeRangesRequest represents the body of POST /api/time-ranges
type SaveTimeRangesRequest struct {
	TimeRanges []TimeRange `json:"timeRanges" binding:"dive"`
}

// SaveTimeRangesResponse represents the body returned by POST /api/time-ranges
type SaveTimeRangesResponse struct {
	Success    bool        `json:"success"`
	TimeRanges []TimeRange `json:"timeRanges"`
}
