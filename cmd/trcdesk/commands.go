package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/therewardcollection/trcdesk/internal/config"
	"github.com/therewardcollection/trcdesk/internal/lexicon"
	"github.com/therewardcollection/trcdesk/internal/storage"
)

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question against the running server",
	Long: `Ask a question against the running server.

Examples:
  trcdesk ask "how many live merchants are in the UK?"
  trcdesk ask --tone legal "what does clause 4.2 say?"
  trcdesk ask --email --tone sales "draft a reply about commission rates"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		email, _ := cmd.Flags().GetBool("email")
		short, _ := cmd.Flags().GetBool("short")
		tone, _ := cmd.Flags().GetString("tone")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := map[string]any{"query": query}
		if email {
			req["email"] = true
		}
		if short {
			req["short"] = true
		}
		if tone != "" {
			req["tone"] = tone
		}

		resp, err := client.post(cmd.Context(), "/api/query", req)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result["result"])
		return nil
	},
}

func init() {
	askCmd.Flags().Bool("email", false, "reply as a professional email")
	askCmd.Flags().Bool("short", false, "reply with a bare converted time (timezone mode)")
	askCmd.Flags().String("tone", "", "reply tone: sales, account manager, credit control, legal, exec team")
}

// --- upload ---

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload files into the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body, contentType, err := buildMultipart(args)
		if err != nil {
			return err
		}

		resp, err := client.postMultipart(cmd.Context(), "/api/upload", contentType, body)
		if err != nil {
			return err
		}

		var result struct {
			Uploaded []struct {
				Name string `json:"name"`
			} `json:"uploaded"`
			Queued int `json:"queued"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		for _, f := range result.Uploaded {
			printStep("uploaded %s", f.Name)
		}
		printSuccess("%d file(s) queued for extraction", result.Queued)
		return nil
	},
}

func buildMultipart(paths []string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, "", fmt.Errorf("opening %s: %w", p, err)
		}
		fw, err := mw.CreateFormFile("files", filepath.Base(p))
		if err != nil {
			f.Close()
			return nil, "", err
		}
		if _, err := io.Copy(fw, f); err != nil {
			f.Close()
			return nil, "", fmt.Errorf("reading %s: %w", p, err)
		}
		f.Close()
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// --- sync ---

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Index knowledge base files that have no extracted text yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/sync", nil)
		if err != nil {
			return err
		}

		var result map[string]int
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("%d queued, %d already indexed", result["processed"], result["skipped"])
		return nil
	},
}

// --- files ---

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage knowledge base files",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge base files",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/files")
		if err != nil {
			return err
		}

		var result struct {
			Files []struct {
				FileName string `json:"file_name"`
				FileURL  string `json:"file_url"`
				Size     int64  `json:"size"`
			} `json:"files"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Files) == 0 {
			fmt.Println("No files in the knowledge base.")
			return nil
		}
		for _, f := range result.Files {
			fmt.Printf("%s  %8d  %s\n", colorize(colorCyan, f.FileURL), f.Size, f.FileName)
		}
		return nil
	},
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <path>",
	Short: "Delete a knowledge base file and its extracted text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/api/files?path="+url.QueryEscape(args[0]))
		if err != nil {
			return err
		}

		var result map[string]bool
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted %s", args[0])
		return nil
	},
}

func init() {
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesDeleteCmd)
}

// --- import ---

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace an entity table from a CRM export",
	Long: `Replace an entity table from a CRM export.

The file must contain a JSON array of records. The named table is
replaced wholesale: existing rows are deleted first.

Examples:
  trcdesk import --table merchants --file merchants.json
  trcdesk import --table publishers --file publishers.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tableArg, _ := cmd.Flags().GetString("table")
		file, _ := cmd.Flags().GetString("file")
		if tableArg == "" || file == "" {
			return fmt.Errorf("--table and --file are required")
		}

		table := lexicon.MatchTable(tableArg)
		if table == "" {
			return fmt.Errorf("unknown table %q: use merchants or publishers", tableArg)
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		var records []storage.EntityRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parsing %s: %w", file, err)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		if err := importRecords(store, string(table), records); err != nil {
			return err
		}

		printSuccess("Imported %d records into %s", len(records), table)
		return nil
	},
}

func importRecords(store *storage.Store, collection string, records []storage.EntityRecord) error {
	if err := store.DeleteEntityRecords(collection); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}
	if err := store.InsertEntityRecords(collection, records); err != nil {
		return fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return nil
}

func init() {
	importCmd.Flags().String("table", "", "target table: merchants or publishers")
	importCmd.Flags().String("file", "", "JSON file containing an array of records")
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

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
