package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/angelmondragon/finpilot-backend/internal/access"
	"github.com/angelmondragon/finpilot-backend/internal/points"
	"github.com/angelmondragon/finpilot-backend/internal/viewer"
	"github.com/angelmondragon/finpilot-backend/pkg/apiclient"
	"github.com/angelmondragon/finpilot-backend/pkg/config"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/joho/godotenv"
)

type options struct {
	route    string
	event    string
	refTable string
	refID    string
	logout   bool
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.route, "route", string(enums.RouteGroupEmployee), "route group to open: "+joinGroups())
	flag.StringVar(&opts.event, "award", "", "event key to award after the route opens")
	flag.StringVar(&opts.refTable, "ref-table", "", "source table of the awarded event")
	flag.StringVar(&opts.refID, "ref-id", "", "source row of the awarded event")
	flag.BoolVar(&opts.logout, "logout", false, "sign out after the run")
	level := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "pilot", Level: logger.ParseLevel(*level), Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, opts, logg)
	stop()
	if err != nil {
		logg.Error(context.Background(), "pilot failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logg *logger.Logger) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("load client config: %w", err)
	}

	client, err := apiclient.New(*cfg, nil)
	if err != nil {
		return fmt.Errorf("build api client: %w", err)
	}

	group, err := enums.ParseRouteGroup(opts.route)
	if err != nil {
		// Unknown routes are still gated; the gate sends them home.
		group = enums.RouteGroup(opts.route)
	}

	location := string(group)
	guard, err := access.NewGuard(access.NavigatorFunc(func(ctx context.Context, target string) error {
		location = target
		fmt.Printf("-> replace %s\n", target)
		return nil
	}), nil, logg)
	if err != nil {
		return fmt.Errorf("build guard: %w", err)
	}

	if v, _ := guard.Update(ctx, viewer.Loading().GateInputs(group)); v.Kind == access.KindSuspend {
		fmt.Println("loading…")
	}

	state, err := client.State(ctx)
	if err != nil {
		return fmt.Errorf("resolve auth state: %w", err)
	}

	verdict, err := guard.Update(ctx, state.GateInputs(group))
	if err != nil {
		return fmt.Errorf("gate redirect: %w", err)
	}
	compareWithServer(ctx, client, group, verdict, logg)

	if verdict.Kind != access.KindAllow {
		fmt.Printf("%s is not available; now at %s\n", group, location)
		return finish(ctx, client, opts.logout)
	}
	fmt.Printf("opened %s\n", group)

	agg, err := points.NewAggregator(client, points.WithTimeout(cfg.Timeout), points.WithLogger(logg))
	if err != nil {
		return fmt.Errorf("build points aggregator: %w", err)
	}
	cancel := agg.Subscribe(func(s points.State) {
		if !s.Loading {
			fmt.Printf("points: %d\n", s.TotalPoints)
		}
	})
	defer cancel()
	agg.SetIdentity(ctx, state.PointsIdentity())

	if opts.event != "" {
		id := state.PointsIdentity()
		awarder, err := points.NewAwarder(client, cfg.Timeout, logg, nil)
		if err != nil {
			return fmt.Errorf("build awarder: %w", err)
		}
		delta := awarder.Award(ctx, points.AwardInput{
			OrgID:    id.OrgID,
			UserID:   id.UserID,
			EventKey: enums.PointsEvent(opts.event),
			RefTable: optional(opts.refTable),
			RefID:    optional(opts.refID),
		})
		fmt.Printf("awarded %d for %s\n", delta, opts.event)
		if delta > 0 {
			agg.Refresh(ctx)
		}
	}

	return finish(ctx, client, opts.logout)
}

// compareWithServer logs when the API's verdict for group disagrees with the
// local one. The local verdict always wins; the API enforces roles on its own.
func compareWithServer(ctx context.Context, client *apiclient.Client, group enums.RouteGroup, local access.Verdict, logg *logger.Logger) {
	if !client.SignedIn() {
		return
	}
	remote, err := client.Access(ctx, group)
	ctx = logg.WithField(ctx, "route_group", string(group))
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "server verdict unavailable")
		return
	}
	if remote != local {
		ctx = logg.WithFields(ctx, map[string]any{
			"local":  fmt.Sprintf("%s %s", local.Kind, local.Target),
			"server": fmt.Sprintf("%s %s", remote.Kind, remote.Target),
		})
		logg.Warn(ctx, "gate verdict differs from server")
	}
}

func finish(ctx context.Context, client *apiclient.Client, logout bool) error {
	if !logout {
		return nil
	}
	if err := client.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Println("signed out")
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func joinGroups() string {
	groups := enums.RouteGroups()
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = string(g)
	}
	return strings.Join(names, "|")
}
