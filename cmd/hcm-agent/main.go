// Command hcm-agent runs the Oracle HCM conversational agent, either as an
// HTTP service (serve) or as a one-shot terminal question (ask).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smit333/Oracle-Agent-Ex/internal/agent"
	"github.com/smit333/Oracle-Agent-Ex/internal/catalog"
	"github.com/smit333/Oracle-Agent-Ex/internal/config"
	"github.com/smit333/Oracle-Agent-Ex/internal/hcm"
	"github.com/smit333/Oracle-Agent-Ex/internal/llm"
	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
	"github.com/smit333/Oracle-Agent-Ex/internal/observability"
)

func main() {
	root := &cobra.Command{
		Use:           "hcm-agent",
		Short:         "Conversational agent for Oracle HCM Cloud REST APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newAskCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildPipeline assembles the agent and its collaborators from config.
func buildPipeline(cfg config.AppConfig) (*agent.Agent, *hcm.Client, *catalog.Catalog, error) {
	logging.Configure(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	cat := catalog.Default()
	if cfg.HCM.CatalogFile != "" {
		loaded, err := catalog.Load(cfg.HCM.CatalogFile)
		if err != nil {
			return nil, nil, nil, err
		}
		cat = loaded
	}

	client, err := llm.NewFactory().GetClient(llm.Config{
		Provider:        cfg.LLMProvider,
		GeminiAPIKey:    cfg.GoogleAPIKey,
		AzureEndpoint:   cfg.Azure.Endpoint,
		AzureAPIKey:     cfg.Azure.APIKey,
		AzureAPIVersion: cfg.Azure.APIVersion,
		AzureDeployment: cfg.Azure.Deployment,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	hcmClient, err := hcm.NewClient(cfg.HCM)
	if err != nil {
		return nil, nil, nil, err
	}

	metrics := observability.Default()
	pipeline := agent.New(
		agent.NewPlanner(client, cat, metrics),
		agent.NewExecutor(hcmClient, metrics),
		agent.NewResponder(client, metrics),
	)
	return pipeline, hcmClient, cat, nil
}
