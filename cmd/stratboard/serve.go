package main

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stratboard/stratboard/pkg/db"
	"github.com/stratboard/stratboard/pkg/db/models"
	"github.com/stratboard/stratboard/pkg/flags"
	"github.com/stratboard/stratboard/pkg/flags/configflags"
	"github.com/stratboard/stratboard/pkg/stratserver"
)

type ServerFlags struct {
	AIFlags     *flags.AIFlags
	CacheFlags  *flags.CacheFlags
	ConfigFlags *configflags.ConfigFlags
	DBFlags     *flags.PostgresFlags

	ListenAddr        string
	MetricsAddr       string
	GateMediumActions bool
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{
		AIFlags:     flags.NewAIFlags(),
		CacheFlags:  flags.NewCacheFlags(),
		ConfigFlags: configflags.NewConfigFlags(),
		DBFlags:     flags.NewPostgresDatabaseFlags(),
		ListenAddr:  ":8080",
		MetricsAddr: ":2112",
	}
}

func (f *ServerFlags) BindFlags(flagSet *pflag.FlagSet) {
	f.AIFlags.BindFlags(flagSet)
	f.CacheFlags.BindFlags(flagSet)
	f.ConfigFlags.BindFlags(flagSet)
	f.DBFlags.BindFlags(flagSet)

	flagSet.StringVar(&f.ListenAddr, "listen", f.ListenAddr, "The address to serve the API on (default :8080)")
	flagSet.StringVar(&f.MetricsAddr, "listen-metrics", f.MetricsAddr, "The address to serve prometheus metrics on (default :2112)")
	flagSet.BoolVar(&f.GateMediumActions, "gate-medium-actions", false, "Also hold medium-tier AI actions for confirmation before executing")
}

func NewServeCommand() *cobra.Command {
	f := NewServerFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stratboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := f.DBFlags.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "couldn't get DB client")
			}

			cacheClient, err := f.CacheFlags.GetCacheClient()
			if err != nil {
				return errors.WithMessage(err, "couldn't get cache client")
			}

			config, err := f.ConfigFlags.GetConfig()
			if err != nil {
				return errors.WithMessage(err, "couldn't load config")
			}

			// Make sure the db is initialized, otherwise let the user know:
			var conversations []models.ChatConversation
			if res := dbc.DB.Limit(1).Find(&conversations); res.Error != nil {
				log.WithError(res.Error).Warn("database may not be initialized, run the migrate command")
			}

			if f.MetricsAddr != "" {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.Handler())
					log.Infof("Serving metrics on %s", f.MetricsAddr)
					if err := http.ListenAndServe(f.MetricsAddr, mux); err != nil {
						log.WithError(err).Error("metrics listener exited")
					}
				}()
			}

			server := stratserver.NewServer(
				stratserver.Config{
					ListenAddr:        f.ListenAddr,
					Company:           config.Company,
					CompletionTimeout: f.AIFlags.CompletionTimeout,
					GateMediumActions: f.GateMediumActions,
				},
				db.NewPlanningStore(dbc),
				f.AIFlags.GetLLMClient(),
				cacheClient,
			)
			server.Serve()
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
