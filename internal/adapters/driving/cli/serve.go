package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP batch endpoint",
	Long: `Start an HTTP server exposing:

  POST /hackrx/run   {"documents": "<url>", "questions": [...]} -> {"answers": [...]}
  GET  /documents    ingested documents
  GET  /health       liveness

Requests must carry "Authorization: Bearer <token>" when server.auth_token
(or AUTHORIZATION_TOKEN) is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requirePipeline(true); err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr") //nolint:errcheck // flag is registered above
	if addr == "" {
		addr = serverAddr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Ingest:   ingestService,
		Answer:   answerService,
		Document: documentService,
	}, httpapi.Config{AuthToken: serverToken})
	if err != nil {
		return err
	}

	if serverToken == "" {
		cmd.Println(muted(cmd, "Warning: no auth token set, the endpoint is open"))
	}
	cmd.Printf("Listening on %s\n", addr)
	return server.Run(commandContext(cmd), addr)
}
