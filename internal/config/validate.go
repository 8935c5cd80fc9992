// Package config provides configuration models and helpers for the ETL job.
//
// This file adds a lightweight linter/validator for Config values. It performs
// static checks over a decoded Config and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Config.
//
// Path is a dotted path into the config (e.g. "cluster.host", "s3.log_data").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation / linting of a Config.
//
// It does not mutate the config. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateCluster(c.Cluster)...)
	issues = append(issues, validateS3(c.S3)...)
	issues = append(issues, validateIAMRole(c.IAMRole)...)

	return issues
}

// validateCluster validates warehouse connection parameters.
func validateCluster(cl Cluster) []Issue {
	var issues []Issue

	required := []struct {
		path  string
		value string
	}{
		{"cluster.host", cl.Host},
		{"cluster.dbname", cl.DBName},
		{"cluster.user", cl.User},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     r.path,
				Message:  "must not be empty",
			})
		}
	}

	if cl.Port <= 0 || cl.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "cluster.port",
			Message:  fmt.Sprintf("port %d is out of range (1-65535); Redshift default is 5439", cl.Port),
		})
	}

	if cl.Password == "" {
		// Not fatal: the password may arrive via DWH_PASSWORD after Load.
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "cluster.password",
			Message:  "empty password; set it in the run file or via DWH_PASSWORD",
		})
	}

	return issues
}

// validateS3 validates the source locations consumed by the COPY statements.
func validateS3(s S3) []Issue {
	var issues []Issue

	uris := []struct {
		path  string
		value string
	}{
		{"s3.log_data", s.LogData},
		{"s3.log_jsonpath", s.LogJSONPath},
		{"s3.song_data", s.SongData},
	}
	for _, u := range uris {
		switch {
		case strings.TrimSpace(u.value) == "":
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     u.path,
				Message:  "must not be empty",
			})
		case !strings.HasPrefix(u.value, "s3://"):
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     u.path,
				Message:  fmt.Sprintf("%q is not an s3:// URI", u.value),
			})
		case strings.ContainsAny(u.value, "'"):
			// The value is interpolated into COPY statement text.
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     u.path,
				Message:  "must not contain a single quote",
			})
		}
	}

	if strings.TrimSpace(s.Region) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "s3.region",
			Message:  "must not be empty; the COPY command requires the bucket region",
		})
	}
	if strings.Contains(s.Region, "'") {
		// The region is interpolated into COPY statement text like the URIs.
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "s3.region",
			Message:  "must not contain a single quote",
		})
	}

	return issues
}

// validateIAMRole validates the role the warehouse assumes when reading S3.
func validateIAMRole(r IAMRole) []Issue {
	var issues []Issue

	switch {
	case strings.TrimSpace(r.ARN) == "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "iam_role.arn",
			Message:  "must not be empty; set it in the run file or via DWH_IAM_ROLE_ARN",
		})
	case !strings.HasPrefix(r.ARN, "arn:aws:iam::"):
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "iam_role.arn",
			Message:  fmt.Sprintf("%q does not look like an IAM role ARN", r.ARN),
		})
	}

	// The ARN is interpolated into COPY statement text, so the quote check must
	// fire regardless of what the shape checks above concluded.
	if strings.Contains(r.ARN, "'") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "iam_role.arn",
			Message:  "must not contain a single quote",
		})
	}

	return issues
}
