// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exception

import (
	"fmt"
	"sort"
	"strings"
)

type CustomError struct {
	Status  int                    `json:"status"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Debug   string                 `json:"debug,omitempty"`
}

func (c CustomError) Error() string {
	msg := c.Message
	// longest names first, so that $env is not replaced inside $envName
	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, k := range keys {
		msg = strings.ReplaceAll(msg, "$"+k, fmt.Sprintf("%v", c.Params[k]))
	}
	return msg
}

const InvalidURLEscape = "6"
const InvalidURLEscapeMsg = "Failed to unescape parameter $param"

const BadRequestBody = "10"
const BadRequestBodyMsg = "Invalid request body"

const RequiredParamsMissing = "15"
const RequiredParamsMissingMsg = "Required parameters are missing: $params"

const MethodNotAllowed = "16"
const MethodNotAllowedMsg = "Method not allowed"

const EntityNotFound = "100"
const EntityNotFoundMsg = "$entity with id $id is not found"

const MissingCredential = "3000"
const MissingCredentialMsg = "$env not configured"

const ProviderError = "3001"
const ProviderErrorMsg = "LLM provider $provider request failed: $error"

const InvalidReviewResult = "3002"
const InvalidReviewResultMsg = "Review result does not match the output schema: $violations"

const RemoteWorkflowFailed = "3100"
const RemoteWorkflowFailedMsg = "Workflow $workflow failed on $url: $error"
