package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aescanero/dago-node-analyzer/internal/app"
	"github.com/aescanero/dago-node-analyzer/internal/config"
	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/spf13/cobra"
)

var (
	analyzeForm    string
	analyzePlanner string
	analyzeJSON    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [request]",
	Short: "Analyse one licence request",
	Long: `Runs the full workflow for one request: routing, parallel domain analysis
and, when an LLM is configured, enhancement of ambiguous requests.

The optional form file is a JSON array of fields:
  [{"id": "V1Purpose", "label": "Purpose of use", "value": ""}]`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeForm, "form", "f", "", "JSON file with the form fields")
	analyzeCmd.Flags().StringVar(&analyzePlanner, "planner", "", "planner mode: auto, llm or keyword (overrides PLANNER_MODE)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if analyzePlanner != "" {
		cfg.PlannerMode = analyzePlanner
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	fields, err := readForm(analyzeForm)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	components, err := app.Build(cfg, nil, logger)
	if err != nil {
		return err
	}

	result, err := components.Executor.Run(cmd.Context(), model.NewQuery(args[0], fields...))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return outputAnalysisJSON(cmd, result)
	}
	outputAnalysisText(cmd, result)
	return nil
}

func readForm(path string) ([]model.FormField, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form: %w", err)
	}
	var fields []model.FormField
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse form %s: %w", path, err)
	}
	return fields, nil
}

func outputAnalysisJSON(cmd *cobra.Command, result *model.WorkflowResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnalysisText(cmd *cobra.Command, result *model.WorkflowResult) {
	targets := make([]string, len(result.Routing.Targets))
	for i, d := range result.Routing.Targets {
		targets[i] = string(d)
	}
	cmd.Printf("Request %s\n", result.ID)
	cmd.Printf("Routing: %s (%s)\n", strings.Join(targets, ", "), result.Routing.Method)
	for _, c := range result.Routing.Clarifications {
		cmd.Printf("  ? %s\n", c)
	}

	for _, d := range model.KnownDomains() {
		r := result.Results[d]
		cmd.Println()
		cmd.Printf("[%s] %s", d, r.Status)
		if r.Status != model.StatusSkipped {
			cmd.Printf(", %s", r.ProcessingMethod)
		}
		cmd.Println()
		if r.Status == model.StatusSkipped {
			continue
		}
		if r.Message != "" {
			cmd.Printf("  %s\n", r.Message)
		}
		for _, m := range r.Detections {
			cmd.Printf("  detected: %s (%s)\n", m.Keyword, m.Category)
		}
		for _, e := range r.Estimates {
			cmd.Printf("  estimate: %s, %s\n", e.Usage, e.Estimate)
		}
		for _, s := range r.Suggestions {
			cmd.Printf("  suggest: %s = %s (%.2f)\n", s.FieldID, s.Value, s.Confidence)
		}
		for _, doc := range r.Documents {
			cmd.Printf("  document: %s (%.2f)\n", doc.Title, doc.Score)
		}
		for _, rec := range r.Recommendations {
			cmd.Printf("  - %s\n", rec)
		}
	}

	cmd.Println()
	cmd.Printf("Executed %d, skipped %d, enhanced %d, rule-based %d\n",
		result.Summary.Executed, result.Summary.Skipped, result.Summary.EnhancedCount, result.Summary.RuleBasedCount)
}
