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

package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Netcracker/qubership-code-review-agent/exception"
	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// MaxRequestBodySize caps request bodies read by controllers.
const MaxRequestBodySize = 5 << 20

func RespondWithCustomError(w http.ResponseWriter, err *exception.CustomError) {
	log.Debugf("Request failed. Code = %d. Message = %s. Params: %v. Debug: %s", err.Status, err.Message, err.Params, err.Debug)
	respondWithJson(w, err.Status, err)
}

func respondWithError(w http.ResponseWriter, msg string, err error) {
	var customError *exception.CustomError
	if errors.As(err, &customError) {
		RespondWithCustomError(w, customError)
		return
	}
	log.Errorf("%s: %s", msg, err.Error())
	RespondWithCustomError(w, &exception.CustomError{
		Status:  http.StatusInternalServerError,
		Message: msg,
		Debug:   err.Error(),
	})
}

func respondWithJson(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("Failed to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithText(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(text))
}

// respondWithApiError answers in the review response shape. The message of a
// CustomError is rendered with its params, the status is taken from it.
func respondWithApiError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := view.ErrorResponse(err)
	var customError *exception.CustomError
	if errors.As(err, &customError) {
		status = customError.Status
		resp.Code = customError.Code
		log.Debugf("Request failed. Code = %d. Message = %s. Params: %v. Debug: %s", customError.Status, customError.Message, customError.Params, customError.Debug)
	}
	respondWithJson(w, status, resp)
}

func getStringParam(r *http.Request, p string) string {
	params := mux.Vars(r)
	return params[p]
}

func getUnescapedStringParam(r *http.Request, param string) (string, error) {
	value, err := url.PathUnescape(getStringParam(r, param))
	if err != nil {
		return "", fmt.Errorf("failed to unescape %s: %w", param, err)
	}
	return value, nil
}
