package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// sentimentCmd refreshes the per-instrument news sentiment scores
var sentimentCmd = &cobra.Command{
	Use:   "sentiment",
	Short: "뉴스 감성 점수 갱신",
	Long: `티커 파일의 모든 종목에 대해 뉴스 감성 점수를 갱신합니다.

각 종목마다:
- RSS 헤드라인 수집
- 기사 본문 스크래핑
- 어휘 기반 감성 분류
- 점수 파일 저장 (실패한 종목은 중립 0.0)

Example:
  go run ./cmd/tradewind sentiment`,
	RunE: runSentiment,
}

func init() {
	rootCmd.AddCommand(sentimentCmd)
}

func runSentiment(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tradewind Sentiment Refresh ===")

	deps, err := initDependencies()
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer deps.Close()

	if err := deps.orch.RunSentiment(context.Background()); err != nil {
		return fmt.Errorf("sentiment run: %w", err)
	}

	fmt.Println("✅ Sentiment scores refreshed")
	return nil
}
