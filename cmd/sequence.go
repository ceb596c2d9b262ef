package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/app"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/route"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/logger"
)

var (
	loadsFile string
	origin    string
)

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Sequence a multi-stop route from a loads JSON file",
	RunE:  sequenceRoute,
}

func init() {
	sequenceCmd.Flags().StringVarP(&loadsFile, "loads", "l", "", "JSON file with the loads to sequence")
	sequenceCmd.Flags().StringVarP(&origin, "origin", "o", "", "driver starting location")
	_ = sequenceCmd.MarkFlagRequired("loads")
	rootCmd.AddCommand(sequenceCmd)
}

// sequenceRoute runs the sequencer locally against the demo distance table,
// useful for inspecting stop ordering without a running service.
func sequenceRoute(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(loadsFile)
	if err != nil {
		return fmt.Errorf("read loads file: %w", err)
	}
	var loads []model.Load
	if err := json.Unmarshal(raw, &loads); err != nil {
		return fmt.Errorf("parse loads file: %w", err)
	}

	seq, err := route.NewSequencer(route.Config{}, app.DemoDistances(), logger.New("sequence-command"))
	if err != nil {
		return err
	}
	var start *string
	if origin != "" {
		start = &origin
	}
	plan, err := seq.Sequence(context.Background(), loads, start)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
