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

package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationMessages converts ValidationErrors to one message per failed field
func ValidationMessages(validationErrors validator.ValidationErrors) []string {
	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, getValidationErrorMessage(fieldPath(fieldError), fieldError.Tag(), fieldError.Param()))
	}
	return messages
}

// fieldPath is the namespace without the root struct, e.g. "timeRanges[0].max"
func fieldPath(fieldError validator.FieldError) string {
	if _, path, found := strings.Cut(fieldError.Namespace(), "."); found {
		return path
	}
	return fieldError.Field()
}

// getValidationErrorMessage creates user-friendly validation error messages
func getValidationErrorMessage(fieldName, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", fieldName)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fieldName, param)
	case "max", "lte":
		return fmt.Sprintf("%s must not exceed %s", fieldName, param)
	case "ltefield":
		return fmt.Sprintf("%s must not be greater than %s", fieldName, strings.ToLower(param))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldName, strings.ReplaceAll(param, " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", fieldName)
	}
}
