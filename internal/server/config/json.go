package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/campuskit/authcore/internal/flagx"
	"github.com/campuskit/authcore/internal/timex"
)

// JsonConfig is the DTO for the optional JSON configuration file. Duration
// fields accept either strings ("10s", "168h") or integer nanoseconds; empty
// fields keep the value already present in Config.
type JsonConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	DirectoryBaseURL     string         `json:"directory_base_url"`
	DirectoryToken       string         `json:"directory_token"`
	DirectoryTimeout     timex.Duration `json:"directory_timeout"`
	ManagerialDepartment string         `json:"managerial_department"`
	HeadOfficeBranch     string         `json:"head_office_branch"`
	AdminAllowList       []string       `json:"admin_allow_list"`
	S3RootUser           string         `json:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c/-config onto cfg.
// Missing file flag means nothing to load; an unreadable or invalid file
// panics, since a half-applied config is worse than a crash at startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.SecretKey, c.SecretKey)
	overlayDuration(&config.SessionTTL, c.SessionTTL)
	overlayString(&config.DirectoryBaseURL, c.DirectoryBaseURL)
	overlayString(&config.DirectoryToken, c.DirectoryToken)
	overlayDuration(&config.DirectoryTimeout, c.DirectoryTimeout)
	overlayString(&config.ManagerialDepartment, c.ManagerialDepartment)
	overlayString(&config.HeadOfficeBranch, c.HeadOfficeBranch)
	if len(c.AdminAllowList) > 0 {
		config.AdminAllowList = c.AdminAllowList
	}
	overlayString(&config.S3RootUser, c.S3RootUser)
	overlayString(&config.S3RootPassword, c.S3RootPassword)
	overlayString(&config.S3Bucket, c.S3Bucket)
	overlayString(&config.S3Region, c.S3Region)
	overlayString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
