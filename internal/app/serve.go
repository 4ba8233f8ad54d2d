package app

import (
	"fmt"

	"github.com/blackwell-systems/booklog/internal/httpapi"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collection over a local REST API",
		Long: `Start an HTTP server exposing the collection:

  GET    /api/books            list (?q= filter, ?sort=dateRead|rating|title)
  GET    /api/books/:id        one book
  POST   /api/books            create
  PUT    /api/books/:id        replace
  DELETE /api/books/:id        delete
  GET    /api/covers/:isbn     cover lookup (?size=S|M|L)
  GET    /healthz              health check
  GET    /metrics              Prometheus metrics

Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				cfg.Serve.Host = host
			}
			if cmd.Flags().Changed("port") {
				if port < 1 || port > 65535 {
					return fmt.Errorf("invalid port %d", port)
				}
				cfg.Serve.Port = port
			}

			key, err := sortKey("")
			if err != nil {
				return err
			}

			repo, closeRepo, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			srv := httpapi.New(repo, newOpenLibrary(), httpapi.Options{
				DefaultSort: key,
				Locale:      viewLocale(),
				Logger:      logger,
			})
			addr := cfg.Serve.Addr()
			ok("Serving on http://%s", addr)
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen address (default: serve.host)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default: serve.port)")
	return cmd
}
