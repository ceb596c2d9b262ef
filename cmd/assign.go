package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	serviceAddr string
	loadID      string
	driverID    string
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a driver to a load through a running service",
	RunE:  assignLoad,
}

func init() {
	assignCmd.Flags().StringVarP(&serviceAddr, "addr", "a", "http://localhost:8080", "service base URL")
	assignCmd.Flags().StringVar(&loadID, "load", "", "load ID")
	assignCmd.Flags().StringVar(&driverID, "driver", "", "driver ID; omit to auto-assign the best eligible driver")
	_ = assignCmd.MarkFlagRequired("load")
	rootCmd.AddCommand(assignCmd)
}

func assignLoad(cmd *cobra.Command, args []string) error {
	base := strings.TrimRight(serviceAddr, "/")
	url := fmt.Sprintf("%s/api/loads/%s/auto-assign", base, loadID)
	body := []byte("{}")
	if driverID != "" {
		url = fmt.Sprintf("%s/api/loads/%s/assign", base, loadID)
		var err error
		body, err = json.Marshal(map[string]string{"driver_id": driverID})
		if err != nil {
			return err
		}
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("call service: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	fmt.Println(strings.TrimSpace(string(out)))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("assignment rejected: status %d", resp.StatusCode)
	}
	return nil
}
