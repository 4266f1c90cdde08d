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

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netcracker/qubership-code-review-agent/controller"
	"github.com/Netcracker/qubership-code-review-agent/security"
	"github.com/Netcracker/qubership-code-review-agent/service"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	systemInfoService, err := service.NewSystemInfoService()
	if err != nil {
		return err
	}
	if err = configureLogging(systemInfoService); err != nil {
		return err
	}
	a, err := newApp(systemInfoService, nil)
	if err != nil {
		return err
	}

	srv := makeServer(systemInfoService, makeRouter(a))
	a.markReady()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Infof("Code Review Agent started in %s mode", a.reviewService.Mode())
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err = <-errChan:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func makeRouter(a *app) http.Handler {
	reviewController := controller.NewReviewController(a.reviewService)
	workflowController := controller.NewWorkflowController(a.workflowRegistry)
	healthController := a.healthController

	router := mux.NewRouter()
	router.HandleFunc("/api/review", security.NoSecure(reviewController.ReviewCode))
	router.HandleFunc("/api/workflows/{name}", security.NoSecure(workflowController.GetWorkflow)).Methods(http.MethodGet)
	router.HandleFunc("/api/workflows/{name}/execute", security.NoSecure(workflowController.ExecuteWorkflow)).Methods(http.MethodPost)

	router.HandleFunc("/health", healthController.Health).Methods(http.MethodGet)
	router.HandleFunc("/live", healthController.HandleLiveRequest).Methods(http.MethodGet)
	router.HandleFunc("/ready", healthController.HandleReadyRequest).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/", healthController.Docs).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(healthController.Default)
	router.MethodNotAllowedHandler = http.HandlerFunc(healthController.Default)

	return security.CORS(a.systemInfo.GetOriginAllowed())(
		security.LogRequests(handlers.CompressHandler(router)))
}

func makeServer(systemInfoService service.SystemInfoService, handler http.Handler) *http.Server {
	listenAddr := systemInfoService.GetListenAddress()

	log.Infof("Listen addr = %s", listenAddr)

	return &http.Server{
		Handler:      handler,
		Addr:         listenAddr,
		WriteTimeout: 600 * time.Second,
		ReadTimeout:  60 * time.Second,
	}
}
