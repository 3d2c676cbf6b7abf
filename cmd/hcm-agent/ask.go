package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/smit333/Oracle-Agent-Ex/internal/agent"
	"github.com/smit333/Oracle-Agent-Ex/internal/config"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	callColor   = color.New(color.FgHiBlack).SprintFunc()
	errColor    = color.New(color.FgRed).SprintFunc()
)

func newAskCmd() *cobra.Command {
	var contextJSON string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("question must not be empty")
			}

			var userContext map[string]any
			if contextJSON != "" {
				if err := json.Unmarshal([]byte(contextJSON), &userContext); err != nil {
					return fmt.Errorf("parse --context: %w", err)
				}
			}

			cfg := config.Load()
			pipeline, hcmClient, _, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			defer hcmClient.Close()

			state := &agent.State{UserQuery: query, UserContext: userContext}
			if err := pipeline.Run(cmd.Context(), state); err != nil {
				return err
			}

			if state.Plan != nil {
				fmt.Println(headerColor("Plan:"), state.Plan.Intent)
				for _, call := range state.Plan.APICalls {
					fmt.Println(callColor(fmt.Sprintf("  %s %s params=%v", call.Method, call.Path, call.Params)))
				}
			}
			for _, result := range state.Results {
				if result.Failed() {
					fmt.Println(errColor("  call failed: " + result.Error))
				}
			}
			fmt.Println()
			fmt.Println(state.Answer)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextJSON, "context", "", "user context as a JSON object (e.g. '{\"PersonId\": \"123\"}')")
	return cmd
}
