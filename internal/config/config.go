// Package config defines the canonical, JSON-serializable configuration model
// for the warehouse ETL job. It is intentionally small, explicit, and
// dependency-free so that a run configuration can be loaded from disk in main
// and passed by value into each stage without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in run files
//     under configs/*.json.
//  3. No implicit state: nothing in this package is global; the decoded Config
//     is constructed once and handed to stages by parameter.
//
// Example (trimmed):
//
//	{
//	  "job": "sparkify_dwh",
//	  "cluster": { "host": "dwh.xyz.us-west-2.redshift.amazonaws.com",
//	               "dbname": "dwh", "user": "dwhuser", "port": 5439 },
//	  "s3":      { "log_data": "s3://udacity-dend/log_data",
//	               "log_jsonpath": "s3://udacity-dend/log_json_path.json",
//	               "song_data": "s3://udacity-dend/song_data",
//	               "region": "us-west-2" },
//	  "iam_role": { "arn": "arn:aws:iam::123456789012:role/dwhRole" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
)

// Config is the top-level object decoded from a run file (e.g. configs/dwh.json).
type Config struct {
	// Job names the run for logs and metrics labels.
	Job string `json:"job"`

	// Cluster holds warehouse connection parameters.
	Cluster Cluster `json:"cluster"`

	// S3 locates the raw event and catalog sources.
	S3 S3 `json:"s3"`

	// IAMRole carries the role the warehouse assumes when reading from S3.
	IAMRole IAMRole `json:"iam_role"`

	// Runtime controls run behavior that is not data-defining.
	Runtime Runtime `json:"runtime"`
}

// Cluster holds warehouse connection parameters. Password may be left empty in
// the file and supplied via the DWH_PASSWORD environment variable instead.
type Cluster struct {
	Host     string `json:"host"`
	DBName   string `json:"dbname"`
	User     string `json:"user"`
	Password string `json:"password"`
	Port     int    `json:"port"`
}

// S3 locates the newline-delimited JSON sources and the column mapping used by
// the event COPY. All values are s3:// URIs except Region.
type S3 struct {
	// LogData is the prefix holding raw activity-log records.
	LogData string `json:"log_data"`

	// LogJSONPath is the jsonpaths file mapping log fields to staging columns.
	LogJSONPath string `json:"log_jsonpath"`

	// SongData is the prefix holding raw song-catalog records.
	SongData string `json:"song_data"`

	// Region is the bucket region passed to the COPY command.
	Region string `json:"region"`
}

// IAMRole carries the role ARN interpolated into COPY credentials.
type IAMRole struct {
	ARN string `json:"arn"`
}

// Runtime controls run behavior that does not affect the produced tables.
type Runtime struct {
	// Preflight verifies both S3 source prefixes are listable before any COPY
	// is issued. Defaults to true; see Load and UnmarshalJSON.
	Preflight bool `json:"preflight"`
}

// UnmarshalJSON defaults Preflight to true when the runtime block is null or
// does not mention it. A plain struct decode would silently default to false,
// which is the unsafe direction. The decoder never calls this for an absent
// runtime key, so Load seeds the same default before decoding.
func (r *Runtime) UnmarshalJSON(b []byte) error {
	type alias Runtime
	tmp := alias{Preflight: true}
	if len(b) == 0 || string(b) == "null" {
		*r = Runtime(tmp)
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if _, ok := raw["preflight"]; ok {
		if err := json.Unmarshal(b, &tmp); err != nil {
			return err
		}
	}
	*r = Runtime(tmp)
	return nil
}

// Load reads and decodes a run configuration from path, then applies
// environment overrides. It does not validate; callers run Validate and decide
// how to surface issues.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	// Seed defaults that must survive an absent block; see Runtime.UnmarshalJSON.
	cfg := Config{Runtime: Runtime{Preflight: true}}
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays secrets from the environment so they can stay out of the
// run file. godotenv in main may have populated these from a .env file.
func (c *Config) applyEnv() {
	if v := os.Getenv("DWH_PASSWORD"); v != "" {
		c.Cluster.Password = v
	}
	if v := os.Getenv("DWH_IAM_ROLE_ARN"); v != "" {
		c.IAMRole.ARN = v
	}
}

// DSN renders the Cluster block as a pgx connection string.
func (c Cluster) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.DBName,
	)
}
