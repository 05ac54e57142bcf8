package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// trainCmd retrains every instrument's return model
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "종목별 수익률 모델 학습",
	Long: `티커 파일의 모든 종목에 대해 수익률 예측 모델을 학습합니다.

각 종목마다:
- 과거 일봉 시세 수집
- 기술적 지표 피처 생성
- 앙상블 모델 학습 (random forest + gradient boosting 스태킹)
- 모델 아티팩트와 성능 리포트 저장

Example:
  go run ./cmd/tradewind train`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tradewind Model Training ===")

	deps, err := initDependencies()
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer deps.Close()

	if err := deps.orch.RunTraining(context.Background()); err != nil {
		return fmt.Errorf("training run: %w", err)
	}

	fmt.Println("✅ Training completed")
	return nil
}
