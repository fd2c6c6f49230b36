package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmaia/dispatchboard/config"
	"github.com/rmaia/dispatchboard/core/route"
	"github.com/rmaia/dispatchboard/core/topology"
	infrabackend "github.com/rmaia/dispatchboard/infra/backend"
)

var (
	routeOrigin      string
	routeDestination string
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Compute a route between two locations",
	RunE:  computeRoute,
}

func init() {
	routeCmd.Flags().StringVar(&routeOrigin, "origem", "", "route origin")
	routeCmd.Flags().StringVar(&routeDestination, "destino", "", "route destination")
	if err := routeCmd.MarkFlagRequired("origem"); err != nil {
		panic(err)
	}
	if err := routeCmd.MarkFlagRequired("destino"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(routeCmd)
}

func computeRoute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client := infrabackend.New(cfg.Backend)
	rt, err := client.ComputeRoute(ctx, routeOrigin, routeDestination)
	if err != nil {
		return fmt.Errorf("compute route: %w", err)
	}

	cls := route.Correlate(rt, topology.Default())
	fmt.Printf("%s -> %s\n", rt.Origin, rt.Destination)
	fmt.Printf("  percurso: %s\n", strings.Join(rt.Path, " -> "))
	fmt.Printf("  distancia: %g km, tempo estimado: %g min\n", rt.Distance, rt.EstimatedTime)
	if unknown := cls.UnknownWaypoints(); len(unknown) > 0 {
		fmt.Printf("  fora da topologia: %s\n", strings.Join(unknown, ", "))
	}
	return nil
}
