package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	tableOutput bool

	competitorID string
	hour         int
	fishCount    int
	totalWeight  int
	biggestCatch int
	role         string
	offline      bool
	scope        string
)

func init() {
	rankingsCmd.Flags().BoolVar(&tableOutput, "table", false, "Render the general ranking as a table")
	sectorCmd.Flags().BoolVar(&tableOutput, "table", false, "Render the sector ranking as a table")

	for _, cmd := range []*cobra.Command{submitHourlyCmd, submitBigCatchCmd} {
		cmd.Flags().StringVar(&competitorID, "competitor", "", "Competitor id")
		cmd.Flags().StringVar(&role, "role", "judge", "Submitting role (judge or admin)")
		cmd.Flags().BoolVar(&offline, "offline", false, "Record the entry as captured offline")
		cmd.MarkFlagRequired("competitor")
	}
	submitHourlyCmd.Flags().IntVar(&hour, "hour", 0, "Hour of the catch (1-7)")
	submitHourlyCmd.Flags().IntVar(&fishCount, "fish", 0, "Number of fish caught")
	submitHourlyCmd.Flags().IntVar(&totalWeight, "weight", 0, "Total weight in grams")
	submitHourlyCmd.MarkFlagRequired("hour")
	submitBigCatchCmd.Flags().IntVar(&biggestCatch, "weight", 0, "Weight of the biggest catch in grams")

	syncCmd.Flags().StringVar(&role, "role", "", "Only sync entries captured offline by this role")
	clearCmd.Flags().StringVar(&scope, "scope", "", "Use 'entries' to keep the roster")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(competitorsCmd)
	rootCmd.AddCommand(rankingsCmd)
	rootCmd.AddCommand(sectorCmd)
	rootCmd.AddCommand(totalsCmd)
	rootCmd.AddCommand(submitHourlyCmd)
	rootCmd.AddCommand(submitBigCatchCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var competitorsCmd = &cobra.Command{
	Use:   "competitors",
	Short: "List the registered competitors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/competitors")
	},
}

var rankingsCmd = &cobra.Command{
	Use:   "rankings",
	Short: "Show the general ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tableOutput {
			return performGetRequest("/rankings")
		}
		var board boardResponse
		if err := getJSON("/rankings", &board); err != nil {
			return err
		}
		renderGeneral(board)
		return nil
	},
}

var sectorCmd = &cobra.Command{
	Use:   "sector <letter>",
	Short: "Show the ranking of one sector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/rankings/sector?sector=" + url.QueryEscape(args[0])
		if !tableOutput {
			return performGetRequest(endpoint)
		}
		var ranking sectorResponse
		if err := getJSON(endpoint, &ranking); err != nil {
			return err
		}
		renderSector(ranking)
		return nil
	},
}

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show competition and per-sector totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/totals")
	},
}

var submitHourlyCmd = &cobra.Command{
	Use:   "submit-hourly",
	Short: "Submit the catches of one competitor for one hour",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/entries/hourly", map[string]any{
			"competitorId": competitorID,
			"hour":         hour,
			"fishCount":    fishCount,
			"totalWeight":  totalWeight,
			"role":         role,
			"offline":      offline,
		})
	},
}

var submitBigCatchCmd = &cobra.Command{
	Use:   "submit-big-catch",
	Short: "Submit the biggest catch of one competitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/entries/big-catch", map[string]any{
			"competitorId": competitorID,
			"biggestCatch": biggestCatch,
			"role":         role,
			"offline":      offline,
		})
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync [competitor-id...]",
	Short: "Promote entries captured offline to locked",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/entries/sync", map[string]any{
			"role":          role,
			"competitorIds": args,
		})
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish [sector]",
	Short: "Post the current ranking to Slack",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/rankings/publish"
		if len(args) == 1 {
			endpoint += "?sector=" + url.QueryEscape(args[0])
		}
		return performPostRequest(endpoint, nil)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/clear"
		if scope != "" {
			endpoint += "?scope=" + url.QueryEscape(scope)
		}
		return performPostRequest(endpoint, nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

// buildURL appends the dry_run query parameter when requested.
func buildURL(endpoint string) (string, error) {
	u, err := url.Parse(host + endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if dryRun {
		q := u.Query()
		q.Set("dry_run", "true")
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func performGetRequest(endpoint string) error {
	url, err := buildURL(endpoint)
	if err != nil {
		return err
	}
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return printResponse(resp)
}

func performPostRequest(endpoint string, payload any) error {
	url, err := buildURL(endpoint)
	if err != nil {
		return err
	}
	fmt.Printf("Making request to %s\n", url)

	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := http.Post(url, "application/json", body)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

func getJSON(endpoint string, v any) error {
	url, err := buildURL(endpoint)
	if err != nil {
		return err
	}
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
