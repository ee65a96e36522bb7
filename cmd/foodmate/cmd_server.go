package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/config"
	"github.com/shashiranjanraj/foodmate/internal/kernel"
	"github.com/shashiranjanraj/foodmate/internal/server"
	"github.com/shashiranjanraj/foodmate/pkg/bind"
	"github.com/shashiranjanraj/foodmate/pkg/payment"
)

// foodmate serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := boot(ctx, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		gateway, err := newGateway()
		if err != nil {
			return err
		}
		signer := newSigner()
		bind.SetMaxBodyBytes(config.MaxBodyBytes())

		handler := kernel.NewHandler(kernel.Deps{
			Services:    services.New(rt.store, signer, gateway, config.PaymentCurrency()),
			Verifier:    signer,
			CORSOrigins: config.CORSOrigins(),
			Timeout:     config.RequestTimeout(),
		})
		return server.Start(ctx, ":"+config.AppPort(), handler)
	},
}

// foodmate routes
var routeListCmd = &cobra.Command{
	Use:     "routes",
	Aliases: []string{"route:list"},
	Short:   "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		signer := newSigner()
		r := kernel.NewRouter(kernel.Deps{
			Services: services.New(repositories.NewMemoryStore(), signer, payment.Disabled{}, ""),
			Verifier: signer,
		})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range r.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
