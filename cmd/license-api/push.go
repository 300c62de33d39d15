package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/coder4567/nwf-provider-license-api-1/internal/config"
)

var (
	pushURL     string
	pushToken   string
	pushTimeout time.Duration
)

func defaultPushURL() string {
	if s := os.Getenv("LICENSE_API_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var pushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Push a minted license to a running instance",
	Long: `Push reads a license JSON document (use "-" for stdin) and posts it to
the admin ingest endpoint so readers are served the stored copy.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if pushToken == "" {
			return fmt.Errorf("admin token required (--token or PROVIDER_ADMIN_TOKEN)")
		}

		doc, err := readLicenseFile(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), pushTimeout)
		defer cancel()

		saved, err := pushLicense(ctx, http.DefaultClient, pushURL, pushToken, doc)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", saved)
		return nil
	},
}

func init() {
	pushCmd.Flags().StringVar(&pushURL, "url", defaultPushURL(), "base URL of the license API")
	pushCmd.Flags().StringVar(&pushToken, "token", os.Getenv("PROVIDER_ADMIN_TOKEN"), "admin bearer token")
	pushCmd.Flags().DurationVar(&pushTimeout, "timeout", 30*time.Second, "request timeout")
}

func readLicenseFile(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading license file: %w", err)
	}
	return data, nil
}

// pushLicense posts doc to the ingest endpoint and returns the saved id
func pushLicense(ctx context.Context, client *http.Client, baseURL, token string, doc []byte) (string, error) {
	endpoint := strings.TrimRight(baseURL, "/") + config.APIBasePath + config.AdminLicensesEndpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting license: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("ingest rejected (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("ingest rejected (%d)", resp.StatusCode)
	}

	var result struct {
		Saved string `json:"saved"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return result.Saved, nil
}
