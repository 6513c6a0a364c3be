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

// ScrapeRequest represents the body of POST /api/scrape-posts.
// The caller's user id is taken from the session, never from the body.
type ScrapeRequest struct {
	OrderBy          string `json:"order_by" binding:"required,oneof=top new"`
	LastHours        *int   `json:"last_hours,omitempty" binding:"omitempty,min=1"`
	TimeFilter       string `json:"time_filter,omitempty" binding:"omitempty,oneof=hour day week month year all"`
	TopPostsLimit    int    `json:"top_posts_limit" binding:"required,min=1,max=100"`
	TopCommentsLimit int    `json:"top_comments_limit" binding:"required,min=1,max=100"`
}

// ScrapeResponse wraps the posts returned by the scraping backend
type ScrapeResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}
