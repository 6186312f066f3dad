package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula/internal/server"
)

var (
	serveAddr string
	serveRows int
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve dataset views over a JSON HTTP API",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, cols, err := startLoad(ctx, sourceArg(args))
		if err != nil {
			return err
		}
		srv, err := server.New(server.Options{
			Pending:  p,
			Columns:  cols,
			PageSize: pageSize(serveRows),
			Logger:   loggerFromContext(ctx),
		})
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = settings().ListenAddr
		}
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
	serveCmd.Flags().IntVar(&serveRows, "rows", 0, "default rows per page for new sessions")
}
