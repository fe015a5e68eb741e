// Package main is the entry point of the CLI tool.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	apiURL  string
	output  string
	timeout time.Duration
)

// shared HTTP client
var httpClient *http.Client

func main() {
	rootCmd := &cobra.Command{
		Use:   "docctl",
		Short: "Dossiers Medicaux document service CLI",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if apiURL == "" {
				apiURL = os.Getenv("DOCCTL_API_URL")
			}
			httpClient = &http.Client{Timeout: timeout}
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API endpoint URL (or set DOCCTL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&output, "output", "text", "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func createCmd() *cobra.Command {
	var patientID, categoryID, doctorID, content, file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Seal and store a new document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if content == "" && file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading content file: %w", err)
				}
				content = string(data)
			}

			body := map[string]interface{}{
				"patient_id":  patientID,
				"category_id": categoryID,
				"doctor_id":   doctorID,
				"content":     content,
			}
			resp, err := doPost("/v1/documents", body)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}

	cmd.Flags().StringVar(&patientID, "patient", "", "Patient ID (required)")
	cmd.Flags().StringVar(&categoryID, "category", "", "Category ID (required)")
	cmd.Flags().StringVar(&doctorID, "doctor", "", "Doctor ID (required)")
	cmd.Flags().StringVar(&content, "content", "", "Plaintext result content")
	cmd.Flags().StringVar(&file, "file", "", "Read content from a file instead of --content")
	_ = cmd.MarkFlagRequired("patient")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("doctor")

	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <document-id>",
		Short: "Fetch a document and reveal its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := doGet("/v1/documents/" + args[0])
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <document-id>",
		Short: "Run the full integrity check on a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := doGet("/v1/documents/" + args[0] + "/integrity")
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <patient-id>",
		Short: "List a patient's documents with integrity verdicts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := doGet("/v1/patients/" + args[0] + "/documents")
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("docctl version " + version)
		},
	}
}

func doGet(path string) ([]byte, error) {
	resp, err := httpClient.Get(apiURL + path)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return readResponse(resp)
}

func doPost(path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	resp, err := httpClient.Post(apiURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return readResponse(resp)
}

func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func printResponse(body []byte) error {
	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		fmt.Println(string(body))
		return nil
	}
	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(string(pretty))
	return nil
}
