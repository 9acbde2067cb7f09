package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/wellbuddy/internal/config"
	"github.com/kalambet/wellbuddy/internal/sealer"
	"github.com/kalambet/wellbuddy/internal/storage"
)

// --- mood ---

var moodCmd = &cobra.Command{
	Use:   "mood",
	Short: "Record today's mood",
	Long: `Record a mood check-in for today.

Examples:
  wellbuddy mood --score 7 --category calm
  wellbuddy mood --score 3 --category anxious`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("score") {
			return fmt.Errorf("--score is required")
		}
		score, _ := cmd.Flags().GetInt("score")
		category, _ := cmd.Flags().GetString("category")
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("--category is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		saved, err := saveMood(cmd.Context(), client, score, category)
		if err != nil {
			return err
		}
		printSuccess("Mood saved for %s: %d (%s)", saved.Date, saved.Score, saved.Category)
		return nil
	},
}

type savedMood struct {
	Message  string `json:"message"`
	Date     string `json:"date"`
	Score    int    `json:"score"`
	Category string `json:"category"`
}

func saveMood(ctx context.Context, c *apiClient, score int, category string) (savedMood, error) {
	var out savedMood
	resp, err := c.post(ctx, "/mood", map[string]any{"score": score, "category": category})
	if err != nil {
		return out, err
	}
	err = decodeJSON(resp, &out)
	return out, err
}

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "List mood history",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		moods, err := listMoods(cmd.Context(), client)
		if err != nil {
			return err
		}
		if asJSON {
			return writeIndentedJSON(os.Stdout, moods)
		}
		if len(moods) == 0 {
			printWarning("No moods recorded yet")
			return nil
		}
		renderMoods(os.Stdout, moods)
		return nil
	},
}

func listMoods(ctx context.Context, c *apiClient) ([]storage.MoodEntry, error) {
	resp, err := c.get(ctx, "/moods")
	if err != nil {
		return nil, err
	}
	var moods []storage.MoodEntry
	if err := decodeJSON(resp, &moods); err != nil {
		return nil, err
	}
	return moods, nil
}

func renderMoods(w io.Writer, moods []storage.MoodEntry) {
	for _, m := range moods {
		fmt.Fprintf(w, "%s  %s %2d  %s\n", m.Date, colorize(colorCyan, scoreBar(m.Score)), m.Score, m.Category)
	}
}

func init() {
	moodCmd.Flags().Int("score", 0, "mood score, 1 (low) to 10 (great)")
	moodCmd.Flags().String("category", "", "short mood label such as happy, calm or anxious")
	moodsCmd.Flags().Bool("json", false, "print raw JSON")
}

// --- chat / plan / quote ---

var chatCmd = &cobra.Command{
	Use:   "chat <message...>",
	Short: "Send a message to your wellness buddy",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		reply, err := sendChat(cmd.Context(), client, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}

func sendChat(ctx context.Context, c *apiClient, message string) (string, error) {
	resp, err := c.post(ctx, "/chat", map[string]string{"message": message})
	if err != nil {
		return "", err
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Get a wellness plan based on your moods and recent chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		printStep("Building your plan...")
		plan, err := fetchPlan(cmd.Context(), client)
		if err != nil {
			return err
		}
		fmt.Println(plan)
		return nil
	},
}

func fetchPlan(ctx context.Context, c *apiClient) (string, error) {
	resp, err := c.post(ctx, "/plan", nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Plan string `json:"plan"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	return out.Plan, nil
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Show today's motivational quote",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/motivation")
		if err != nil {
			return err
		}
		var out struct {
			Quote string `json:"quote"`
		}
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}
		fmt.Println(colorize(colorBold, out.Quote))
		return nil
	},
}

// --- emergency contact ---

var emergencyCmd = &cobra.Command{
	Use:   "emergency",
	Short: "Show or set the emergency contact email",
}

var emergencyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the emergency contact email",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		email, err := getEmergencyEmail(cmd.Context(), client)
		if err != nil {
			return err
		}
		if email == "" {
			printWarning("No emergency contact set; alerts go to EMAIL_RECIPIENT")
			return nil
		}
		printStatus("Emergency email", "%s", email)
		return nil
	},
}

var emergencySetCmd = &cobra.Command{
	Use:   "set <email>",
	Short: "Set the emergency contact email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := setEmergencyEmail(cmd.Context(), client, args[0]); err != nil {
			return err
		}
		printSuccess("Emergency email set to %s", args[0])
		return nil
	},
}

var emergencyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the emergency contact so alerts go to EMAIL_RECIPIENT",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := setEmergencyEmail(cmd.Context(), client, ""); err != nil {
			return err
		}
		printSuccess("Emergency email cleared")
		return nil
	},
}

type emergencyEmail struct {
	EmergencyEmail string `json:"emergencyEmail"`
}

func getEmergencyEmail(ctx context.Context, c *apiClient) (string, error) {
	resp, err := c.get(ctx, "/emergency-email")
	if err != nil {
		return "", err
	}
	var out emergencyEmail
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	return out.EmergencyEmail, nil
}

func setEmergencyEmail(ctx context.Context, c *apiClient, email string) error {
	resp, err := c.post(ctx, "/emergency-email", emergencyEmail{EmergencyEmail: email})
	if err != nil {
		return err
	}
	var out emergencyEmail
	return decodeJSON(resp, &out)
}

func init() {
	emergencyCmd.AddCommand(emergencyShowCmd)
	emergencyCmd.AddCommand(emergencySetCmd)
	emergencyCmd.AddCommand(emergencyClearCmd)
}

// --- alerts ---

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List recent crisis alert dispatches",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		alerts, err := listAlerts(cmd.Context(), client, limit)
		if err != nil {
			return err
		}
		if len(alerts) == 0 {
			printSuccess("No crisis alerts recorded")
			return nil
		}
		renderAlerts(os.Stdout, alerts)
		return nil
	},
}

func listAlerts(ctx context.Context, c *apiClient, limit int) ([]storage.AlertRecord, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	resp, err := c.get(ctx, "/alerts?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var alerts []storage.AlertRecord
	if err := decodeJSON(resp, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func renderAlerts(w io.Writer, alerts []storage.AlertRecord) {
	for _, a := range alerts {
		state := colorize(colorGreen, "delivered")
		if !a.Delivered {
			state = colorize(colorRed, "failed: "+a.Error)
		}
		recipient := a.Recipient
		if recipient == "" {
			recipient = "(none)"
		}
		fmt.Fprintf(w, "%s  %-30s  %s\n", a.CreatedAt.Local().Format("2006-01-02 15:04"), recipient, state)
	}
}

func init() {
	alertsCmd.Flags().Int("limit", 20, "max alerts to show")
}

// --- data ---

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Export stored data",
}

var dataExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export moods, chat history and alerts as JSONL",
	Long: `Export moods, chat history and alerts as JSONL.

Reads the database directly, so chat content is decrypted with the
configured ENCRYPTION_KEY. The server does not need to be running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg.Storage)
		if err != nil {
			return err
		}
		defer closeStore(store)

		var writer io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			writer = f
		}

		if err := exportData(store, writer); err != nil {
			return err
		}
		if output != "" {
			printSuccess("Data exported to %s", output)
		}
		return nil
	},
}

// exporter is the slice of storage read by exportData.
type exporter interface {
	ListMoods() ([]storage.MoodEntry, error)
	ListMessages(limit, offset int) ([]storage.ChatMessage, error)
	ListAlerts(limit int) ([]storage.AlertRecord, error)
}

const exportPageSize = 100

func exportData(src exporter, w io.Writer) error {
	enc := json.NewEncoder(w)
	emit := func(kind string, v any) error {
		return enc.Encode(map[string]any{"type": kind, "data": v})
	}

	moods, err := src.ListMoods()
	if err != nil {
		return fmt.Errorf("listing moods: %w", err)
	}
	for _, m := range moods {
		if err := emit("mood", m); err != nil {
			return err
		}
	}

	for offset := 0; ; {
		msgs, err := src.ListMessages(exportPageSize, offset)
		if err != nil {
			return fmt.Errorf("listing messages: %w", err)
		}
		if len(msgs) == 0 {
			break
		}
		for _, m := range msgs {
			if err := emit("message", m); err != nil {
				return err
			}
		}
		offset += len(msgs)
	}

	// A negative limit is unbounded in SQLite.
	alerts, err := src.ListAlerts(-1)
	if err != nil {
		return fmt.Errorf("listing alerts: %w", err)
	}
	for _, a := range alerts {
		if err := emit("alert", a); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	dataExportCmd.Flags().String("output", "", "output file path (default: stdout)")
	dataCmd.AddCommand(dataExportCmd)
}

// --- keygen ---

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new ENCRYPTION_KEY",
	Long: `Generate a new key for encrypting chat history at rest.

Put it in the environment or .env as ENCRYPTION_KEY. Losing the key makes
previously stored messages unreadable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := sealer.GenerateKey()
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Printf("  %s %s\n", colorize(colorBold, "config file:"), config.ConfigFilePath())
		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		secrets := config.SecretStatus(cfg)
		for _, env := range slices.Sorted(maps.Keys(secrets)) {
			state := "not set"
			if secrets[env] {
				state = "set"
			}
			fmt.Printf("  %s = %s\n", colorize(colorBold, env), state)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: "Set a configuration value in the config file. Secrets are read from the\nenvironment only.\n\nKeys: " +
		strings.Join(config.ValidKeys(), ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetKey(key, value); err != nil {
			return err
		}
		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value, restoring its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
