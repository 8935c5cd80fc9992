// Command tables manages the warehouse schema out of band: it drops and/or
// creates the two staging tables and the five star-schema tables. The ETL run
// itself never issues DDL; a fresh environment is prepared with this tool
// before the first run.
//
//	tables -config configs/dwh.json            # drop everything, then create
//	tables -config configs/dwh.json -create-only
//	tables -config configs/dwh.json -drop-only
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/mohanhh/CloudDatawarehouses/internal/config"
	"github.com/mohanhh/CloudDatawarehouses/internal/schema"
	"github.com/mohanhh/CloudDatawarehouses/internal/warehouse"
)

func main() {
	var (
		cfgPath    string
		dropOnly   bool
		createOnly bool
	)

	flag.StringVar(&cfgPath, "config", "configs/dwh.json", "run config JSON path")
	flag.BoolVar(&dropOnly, "drop-only", false, "drop tables and exit")
	flag.BoolVar(&createOnly, "create-only", false, "create tables without dropping first")
	flag.Parse()

	if dropOnly && createOnly {
		fatalf("-drop-only and -create-only are mutually exclusive")
	}

	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	for _, iss := range config.Validate(cfg) {
		if iss.Severity == config.SeverityError {
			fatalf("%v", iss)
		}
	}

	ctx := context.Background()
	db, closeDB, err := warehouse.Open(ctx, cfg.Cluster.DSN())
	if err != nil {
		fatalf("%v", err)
	}
	defer closeDB()

	if !createOnly {
		for _, stmt := range schema.DropStatements() {
			if err := db.Exec(ctx, stmt); err != nil {
				fatalf("drop: %v", err)
			}
		}
		log.Printf("dropped %d tables", len(schema.DropStatements()))
	}
	if !dropOnly {
		for _, stmt := range schema.CreateStatements() {
			if err := db.Exec(ctx, stmt); err != nil {
				fatalf("create: %v", err)
			}
		}
		log.Printf("created %d tables", len(schema.CreateStatements()))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
