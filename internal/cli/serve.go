package cli

import (
	"github.com/spf13/cobra"

	"github.com/Arthur1/request-cache/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the job search over HTTP",
		Long: `Start an HTTP server with the following endpoints:
- GET /api/jobs?query=&location=&limit=&category=&job_type=
- GET /healthz
- GET /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.jobsClient()
			if err != nil {
				return err
			}
			srv := server.New(client,
				server.WithGatherer(a.registry),
				server.WithLogger(a.logger),
				server.WithVersion(Version),
			)
			return srv.Run(cmd.Context(), a.cfg.Server)
		},
	}
	cmd.Flags().StringP("port", "p", "", "port to listen on (default from config)")
	cmd.Flags().String("host", "", "host to bind to (default from config)")
	bindFlags(a.v, cmd.Flags(), map[string]string{
		"server.port": "port",
		"server.host": "host",
	})
	return cmd
}
