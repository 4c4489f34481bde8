package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	apihistory "github.com/kilianp07/adsp/api/history"
	"github.com/kilianp07/adsp/core/history"
	"github.com/kilianp07/adsp/infra/logger"
)

var (
	histQuery history.Query
	histSince time.Duration
	histServe string
	histToken string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := history.Open(cfg.History)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if histServe != "" {
			return serveHistory(store)
		}
		q := histQuery
		if histSince > 0 {
			q.Start = time.Now().Add(-histSince)
		}
		recs, err := store.Query(context.Background(), q)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tINSTANCE\tSTRATEGY\tSTATUS\tMAKESPAN\tCOST\tSOLUTIONS\tDURATION")
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				r.Timestamp.Format(time.RFC3339), r.Instance, r.Strategy, r.Status,
				value(r.Makespan, r.MakespanBound), value(r.Cost, r.CostBound), r.Solutions,
				time.Duration(r.DurationMS)*time.Millisecond)
		}
		return tw.Flush()
	},
}

func serveHistory(store history.Store) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.New("history_api")
	mux := http.NewServeMux()
	mux.Handle("/api/runs", apihistory.NewRunsHandler(store, histToken))
	srv := &http.Server{Addr: histServe, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("history server shutdown: %v", err)
		}
	}()
	log.Infof("serving run history on %s/api/runs", histServe)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func value(v *int, bound int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d", *v, bound)
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&histQuery.Instance, "instance", "", "filter by instance name")
	f.StringVar(&histQuery.Strategy, "strategy", "", "filter by strategy")
	f.StringVar(&histQuery.Status, "status", "", "filter by status (solved, no_solution, failed)")
	f.IntVar(&histQuery.Limit, "limit", 0, "only show the last n runs")
	f.DurationVar(&histSince, "since", 0, "only show runs newer than this duration")
	f.StringVar(&histServe, "serve", "", "serve the history as JSON on this address instead of printing it")
	f.StringVar(&histToken, "token", "", "bearer token required by the served API")
	rootCmd.AddCommand(historyCmd)
}
