package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Job: "sparkify_dwh",
		Cluster: Cluster{
			Host:     "dwh.abc.us-west-2.redshift.amazonaws.com",
			DBName:   "dwh",
			User:     "dwhuser",
			Password: "secret",
			Port:     5439,
		},
		S3: S3{
			LogData:     "s3://udacity-dend/log_data",
			LogJSONPath: "s3://udacity-dend/log_json_path.json",
			SongData:    "s3://udacity-dend/song_data",
			Region:      "us-west-2",
		},
		IAMRole: IAMRole{ARN: "arn:aws:iam::123456789012:role/dwhRole"},
	}
}

// hasIssue reports whether issues contains a finding at path with the given
// severity.
func hasIssue(issues []Issue, sev IssueSeverity, path string) bool {
	for _, i := range issues {
		if i.Severity == sev && i.Path == path {
			return true
		}
	}
	return false
}

func TestValidate_CleanConfig(t *testing.T) {
	t.Parallel()

	issues := Validate(validConfig())
	for _, i := range issues {
		if i.Severity == SeverityError {
			t.Errorf("unexpected error issue: %v", i)
		}
	}
}

func TestValidate_MissingFields(t *testing.T) {
	t.Parallel()

	c := validConfig()
	c.Job = ""
	c.Cluster.Host = ""
	c.Cluster.Port = 0
	c.S3.LogData = ""
	c.IAMRole.ARN = ""

	issues := Validate(c)

	for _, path := range []string{"job", "cluster.host", "cluster.port", "s3.log_data", "iam_role.arn"} {
		if !hasIssue(issues, SeverityError, path) {
			t.Errorf("expected error at %s, got %v", path, issues)
		}
	}
}

func TestValidate_NonS3URI(t *testing.T) {
	t.Parallel()

	c := validConfig()
	c.S3.SongData = "http://udacity-dend/song_data"

	if !hasIssue(Validate(c), SeverityError, "s3.song_data") {
		t.Error("expected error for non-s3 URI")
	}
}

// Single quotes would break out of the COPY statement text, so they must be
// rejected in every interpolated value even when they are otherwise legal.
func TestValidate_QuoteInjection(t *testing.T) {
	t.Parallel()

	c := validConfig()
	c.S3.LogData = "s3://bucket/log'; drop table users; --"

	if !hasIssue(Validate(c), SeverityError, "s3.log_data") {
		t.Error("expected error for quoted URI")
	}
}

// A quoted ARN must be a blocking error even when the value also fails the
// arn:aws:iam:: shape check; the shape finding is only a warning and must not
// mask the injection one.
func TestValidate_QuoteInjectionARN(t *testing.T) {
	t.Parallel()

	c := validConfig()
	c.IAMRole.ARN = "bogus'; drop table songplays; --"

	issues := Validate(c)
	if !hasIssue(issues, SeverityError, "iam_role.arn") {
		t.Errorf("expected error for quoted ARN, got %v", issues)
	}
	if !hasIssue(issues, SeverityWarning, "iam_role.arn") {
		t.Errorf("expected shape warning alongside the error, got %v", issues)
	}
}

// The region is interpolated into both COPY statements too.
func TestValidate_QuoteInjectionRegion(t *testing.T) {
	t.Parallel()

	c := validConfig()
	c.S3.Region = "us-west-2'"

	if !hasIssue(Validate(c), SeverityError, "s3.region") {
		t.Error("expected error for quoted region")
	}
}

func TestValidate_Warnings(t *testing.T) {
	t.Parallel()

	c := validConfig()
	c.Cluster.Password = ""
	c.IAMRole.ARN = "not-an-arn"

	issues := Validate(c)
	if !hasIssue(issues, SeverityWarning, "cluster.password") {
		t.Error("expected warning for empty password")
	}
	if !hasIssue(issues, SeverityWarning, "iam_role.arn") {
		t.Error("expected warning for malformed ARN")
	}
	for _, i := range issues {
		if i.Severity == SeverityError {
			t.Errorf("unexpected error issue: %v", i)
		}
	}
}

func TestIssue_Error(t *testing.T) {
	t.Parallel()

	i := Issue{Severity: SeverityError, Path: "cluster.host", Message: "must not be empty"}
	s := i.Error()
	if !strings.Contains(s, "cluster.host") || !strings.Contains(s, "error") {
		t.Errorf("Issue.Error() = %q", s)
	}
}
