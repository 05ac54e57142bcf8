package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradewind/internal/api"
	"github.com/wonny/tradewind/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `스케줄러와 함께 REST API 서버를 시작합니다.

이 명령어는:
- 세 작업 클래스를 스케줄러에 등록하고 시작
- 작업 조회/트리거 엔드포인트 제공
- 최신 판단 원장 조회 제공

Endpoints:
  GET  /health                  - Health check
  GET  /api/jobs                - 작업 통계 조회
  POST /api/jobs/{name}/run     - 작업 즉시 실행
  GET  /api/decisions/latest    - 최신 판단 원장 조회

Example:
  go run ./cmd/tradewind api
  go run ./cmd/tradewind api --port 8090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tradewind API Server ===")

	// 1. Wire the pipeline and scheduler
	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	// Override port if flag is set
	if apiPort != "" {
		deps.cfg.Port = apiPort
	}

	log := deps.log
	log.WithFields(map[string]interface{}{
		"port": deps.cfg.Port,
		"env":  deps.cfg.Env,
	}).Info("Initializing API server")

	// 2. Start the scheduler alongside the server
	sched.Start()

	// 3. Create handlers and router
	jobsHandler := handlers.NewJobsHandler(sched, log)
	decisionsHandler := handlers.NewDecisionsHandler(deps.ledger, log)
	router := api.NewRouter(jobsHandler, decisionsHandler, log)

	// 4. Create server
	server := api.New(deps.cfg, log, router)

	// 5. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", deps.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/jobs")
	fmt.Println("  POST /api/jobs/{name}/run")
	fmt.Println("  GET  /api/decisions/latest")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	sched.Stop(deps.cfg.Scheduler.StopTimeout)

	log.Info("Server stopped")
	return nil
}
