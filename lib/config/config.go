package config

import (
	"strings"
	"time"

	"appcast-scraper/lib/configutil"
)

const (
	EnvBaseUrl    = "APPCAST_BASE_URL"
	EnvEmployerId = "APPCAST_EMPLOYER_ID"
	EnvEmail      = "APPCAST_EMAIL"
	EnvPassword   = "APPCAST_PASSWORD"
	EnvStartDate  = "APPCAST_START_DATE"
	EnvEndDate    = "APPCAST_END_DATE"
	EnvOutputDir  = "APPCAST_OUTPUT_DIR"
	EnvJobBoardId = "APPCAST_JOB_BOARD_ID"
	EnvWebhookUrl = "APPCAST_HOOK"
	EnvHistoryDb  = "APPCAST_HISTORY_DB"
)

// the lowercase spelling is checked first, older deployments use it
const envWebhookLower = "appcast_hook"

const (
	DefaultBaseUrl    = "https://appcast-de.appcast.io"
	DefaultOutputDir  = "data"
	DefaultJobBoardId = "ac-571"
	DefaultTimeout    = 30 * time.Second
	DefaultWindowDays = 30

	// DateLayout is the calendar date format used by the report API and in file names.
	DateLayout = "2006-01-02"
)

// Lookup returns the value of an environment variable, or "" when unset.
type Lookup func(key string) string

// FileConfig is the optional settings file (appcast.json5), environment
// variables take precedence over every field in it.
type FileConfig struct {
	BaseUrl          string `json:"base_url"`
	OutputDir        string `json:"output_dir"`
	JobBoardId       string `json:"job_board_id"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	WebhookUrl       string `json:"webhook_url"`
	HistoryDb        string `json:"history_db"`
	UserAgent        string `json:"user_agent"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
}

// ReadFile reads the settings file at path and its .local override,
// missing files are not an error.
func ReadFile(path string) (FileConfig, error) {
	return configutil.ReadOptional[FileConfig](path)
}

// Window is an inclusive range of calendar dates formatted with DateLayout.
type Window struct {
	Start string
	End   string
}

type Config struct {
	BaseUrl    string
	EmployerId string
	Email      string
	Password   string
	Window     Window

	OutputDir        string
	JobBoardId       string
	Timeout          time.Duration
	WebhookUrl       string
	HistoryDb        string
	UserAgent        string
	CloudflareBypass bool
}

// DefaultWindow is [now - 30 days, now] in now's calendar.
func DefaultWindow(now time.Time) Window {
	return Window{
		Start: now.AddDate(0, 0, -DefaultWindowDays).Format(DateLayout),
		End:   now.Format(DateLayout),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Resolve builds the run configuration out of the environment and the
// settings file. The required identity variables are checked in order
// and the first one missing is reported.
func Resolve(lookup Lookup, file FileConfig, now time.Time) (Config, error) {
	required := []string{EnvEmployerId, EnvEmail, EnvPassword}
	for _, name := range required {
		if lookup(name) == "" {
			return Config{}, &MissingVariableError{Name: name}
		}
	}

	// explicit dates are passed to the api as given, the portal decides
	// what an odd range means
	window := DefaultWindow(now)
	if start := lookup(EnvStartDate); start != "" {
		window.Start = start
	}
	if end := lookup(EnvEndDate); end != "" {
		window.End = end
	}

	timeout := DefaultTimeout
	if file.TimeoutSeconds > 0 {
		timeout = time.Duration(file.TimeoutSeconds) * time.Second
	}

	return Config{
		BaseUrl:    firstNonEmpty(lookup(EnvBaseUrl), file.BaseUrl, DefaultBaseUrl),
		EmployerId: lookup(EnvEmployerId),
		Email:      lookup(EnvEmail),
		Password:   lookup(EnvPassword),
		Window:     window,

		OutputDir:        firstNonEmpty(lookup(EnvOutputDir), file.OutputDir, DefaultOutputDir),
		JobBoardId:       firstNonEmpty(lookup(EnvJobBoardId), file.JobBoardId, DefaultJobBoardId),
		Timeout:          timeout,
		WebhookUrl:       strings.TrimSpace(firstNonEmpty(lookup(envWebhookLower), lookup(EnvWebhookUrl), file.WebhookUrl)),
		HistoryDb:        HistoryPath(lookup, file),
		UserAgent:        file.UserAgent,
		CloudflareBypass: file.CloudflareBypass,
	}, nil
}

// HistoryPath is the run history database, empty when history is off.
func HistoryPath(lookup Lookup, file FileConfig) string {
	return firstNonEmpty(lookup(EnvHistoryDb), file.HistoryDb)
}
