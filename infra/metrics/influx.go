package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/adsp/core/metrics"
	"github.com/kilianp07/adsp/infra/logger"
)

// InfluxSink writes search progress to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordSolution writes one search_progress point.
func (s *InfluxSink) RecordSolution(rec coremetrics.SolutionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("search_progress").
		AddTag("run_id", rec.RunID).
		AddTag("instance", rec.Instance).
		AddTag("phase", strconv.Itoa(rec.Phase)).
		AddTag("objective", rec.Objective).
		AddField("makespan", rec.Makespan).
		AddField("cost", rec.Cost).
		AddField("elapsed_s", rec.Elapsed.Seconds()).
		AddField("optimal", rec.Optimal).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPhase writes a search_phase summary point.
func (s *InfluxSink) RecordPhase(rec coremetrics.PhaseRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("search_phase").
		AddTag("run_id", rec.RunID).
		AddTag("instance", rec.Instance).
		AddTag("phase", strconv.Itoa(rec.Phase)).
		AddTag("objective", rec.Objective).
		AddField("solutions", rec.Solutions).
		AddField("bound", rec.Bound).
		AddField("duration_s", rec.Duration.Seconds())
	if rec.Solutions > 0 {
		p = p.AddField("best", rec.Best)
	}
	p = p.SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes a search_run point.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("search_run").
		AddTag("run_id", rec.RunID).
		AddTag("instance", rec.Instance).
		AddTag("strategy", rec.Strategy).
		AddTag("status", rec.Status).
		AddField("duration_s", rec.Duration.Seconds())
	if rec.Status == coremetrics.StatusSolved {
		p = p.AddField("makespan", rec.Makespan).AddField("cost", rec.Cost)
	}
	p = p.SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}
