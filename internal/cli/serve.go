package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/googlegenomics/labelgen/internal/server"
	"github.com/googlegenomics/labelgen/internal/tilestore"
)

type serveFlags struct {
	store string
	port  int

	secure    bool
	httpsCert string
	httpsKey  string
}

// NewServeCommand creates the "serve" command, which serves labels from
// a tile store over HTTP.
func NewServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve labels from a tile store over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags)
		},
	}

	cmd.Flags().StringVar(&flags.store, "store", "", "tile store directory produced by ingest (required)")
	cmd.Flags().IntVar(&flags.port, "port", 80, "HTTP service port")
	cmd.Flags().BoolVar(&flags.secure, "secure", false, "serve in HTTPS-only mode")
	cmd.Flags().StringVar(&flags.httpsCert, "https-cert", "", "HTTPS certificate file")
	cmd.Flags().StringVar(&flags.httpsKey, "https-key", "", "HTTPS key file")
	cmd.MarkFlagRequired("store")
	return cmd
}

func runServe(flags *serveFlags) error {
	if flags.secure && (flags.httpsCert == "" || flags.httpsKey == "") {
		return fmt.Errorf("you must specify both --https-cert and --https-key in secure mode")
	}

	store, err := tilestore.Open(flags.store)
	if err != nil {
		return err
	}

	router := server.New(store).Router()
	address := fmt.Sprintf(":%d", flags.port)
	progress("Serving %s on %s", flags.store, address)
	if flags.secure {
		return http.ListenAndServeTLS(address, flags.httpsCert, flags.httpsKey, router)
	}
	return http.ListenAndServe(address, router)
}
