// Command dwh runs the warehouse ETL batch job end to end: bulk load from S3
// into staging, set-based materialization of the star schema, then the
// latest-state passes over users and time. One invocation is one run; the
// process exits non-zero on the first unhandled failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"github.com/mohanhh/CloudDatawarehouses/internal/config"
	"github.com/mohanhh/CloudDatawarehouses/internal/etl"
	"github.com/mohanhh/CloudDatawarehouses/internal/metrics"
	"github.com/mohanhh/CloudDatawarehouses/internal/metrics/prompush"
	"github.com/mohanhh/CloudDatawarehouses/internal/preflight"
	"github.com/mohanhh/CloudDatawarehouses/internal/warehouse"
)

func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
		skipPreflight     bool
	)

	flag.StringVar(&cfgPath, "config", "configs/dwh.json", "run config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, none); defaults to pushgateway")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&skipPreflight, "skip-preflight", false, "skip the S3 source check even when the config enables it")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	// .env is optional; it typically carries DWH_PASSWORD and DWH_IAM_ROLE_ARN.
	if err := godotenv.Load(); err == nil && *verbose {
		log.Printf("loaded .env overrides")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	backendName := resolveMetricsBackend(metricsBackendFlg, os.Getenv("METRICS_BACKEND"))
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(cfg.Job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			if *verbose {
				log.Printf("metrics: url=%v backend=%v job=%v", gwURL, backendName, cfg.Job)
			}
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if cfg.Runtime.Preflight && !skipPreflight {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
		if err != nil {
			fatalf("aws config: %v", err)
		}
		client := s3.NewFromConfig(awsCfg)
		if err := preflight.Check(ctx, client, cfg.S3.LogData, cfg.S3.LogJSONPath, cfg.S3.SongData); err != nil {
			fatalf("%v", err)
		}
		if *verbose {
			log.Printf("preflight: all sources reachable")
		}
	}

	db, closeDB, err := warehouse.Open(ctx, cfg.Cluster.DSN())
	if err != nil {
		fatalf("%v", err)
	}
	defer closeDB()

	sum, err := etl.Run(ctx, db, etl.BuildPlan(cfg))
	if err != nil {
		// The kind tells the operator where the run stopped and what is safe
		// to assume about table state.
		log.Fatalf("run failed (%s): %v", warehouse.KindOf(err), err)
	}

	log.Printf("completed in %s: events=%d users=%d time_rows=%d unmatched=%d",
		time.Since(start).Truncate(time.Millisecond),
		sum.Events, sum.Users, sum.TimeRows, sum.Unmatched)
}

// resolveMetricsBackend decides the metrics backend: flag, then the
// METRICS_BACKEND environment variable, then pushgateway. The flag default
// stays empty so the env variable is actually reachable.
func resolveMetricsBackend(flagVal, envVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if envVal != "" {
		return envVal
	}
	return "pushgateway"
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
