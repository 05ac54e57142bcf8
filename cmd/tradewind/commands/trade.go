package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// decideCmd produces a fresh decision ledger without placing orders
var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "매수/매도 판단 생성 (주문 없음)",
	Long: `저장된 모델과 최신 감성 점수로 판단 원장을 새로 만듭니다.

주문은 실행하지 않습니다. 결과는 원장 CSV에 기록되고,
DATABASE_URL이 설정되어 있으면 이력 테이블에도 적재됩니다.

Example:
  go run ./cmd/tradewind decide`,
	RunE: runDecide,
}

// tradeCmd runs the full daily cycle: decisions then orders
var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "일일 트레이딩 사이클 실행",
	Long: `판단 원장을 새로 만든 뒤 브로커에 주문을 제출합니다.

- Buy 판단: 시장가 매수 주문
- Sell 판단: 보유 수량 확인 후 시장가 매도 주문
- Hold 판단: 주문 없음

브로커 자격 증명이 없으면 주문 단계는 실패합니다.

Example:
  go run ./cmd/tradewind trade`,
	RunE: runTrade,
}

func init() {
	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(tradeCmd)
}

func runDecide(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tradewind Decision Run ===")

	deps, err := initDependencies()
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer deps.Close()

	decisions, err := deps.orch.RunDecisions(context.Background())
	if err != nil {
		return fmt.Errorf("decision run: %w", err)
	}

	fmt.Printf("✅ %d decisions written to %s\n", len(decisions), deps.cfg.Trading.LedgerPath)
	for _, d := range decisions {
		fmt.Printf("  %-8s %-4s (score %.4f)\n", d.InstrumentID, d.Action, d.DecisionScore)
	}

	return nil
}

func runTrade(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tradewind Daily Trading ===")

	deps, err := initDependencies()
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer deps.Close()

	if err := deps.orch.RunTrading(context.Background()); err != nil {
		return fmt.Errorf("trading run: %w", err)
	}

	fmt.Println("✅ Trading cycle completed")
	return nil
}
