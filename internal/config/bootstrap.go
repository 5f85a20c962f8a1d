package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// defaultYAML seeds the user config on first run when no packaged
// config/config.yml is around, e.g. for an installed binary.
const defaultYAML = `app:
  http_addr: "127.0.0.1:8790"

logging:
  level: "info"
  console: false

polling:
  interval_minutes: 30
  source_timeout_seconds: 120
  request_delay_seconds: 3
  request_timeout_seconds: 30
  max_retries: 3

search:
  make: "Dodge"
  models: ["Ram", "Dakota", "Durango"]
  year_min: 1994
  year_max: 2026
  locations: ["Calgary", "Edmonton"]

discord:
  channel_id: ""          # required unless notify.test_mode is true

notify:
  test_mode: true         # log matches instead of sending them

metrics:
  enabled: false

sources:
  picknpull:
    enabled: true
    stores:
      - id: "1205"
        location: "Calgary"
      - id: "1206"
        location: "Edmonton"
  bucksauto:
    enabled: false
    pages:
      - path: "/inventory"
        location: "Calgary"
  ipullupull:
    enabled: false
    feeds: []
  mailalert:
    enabled: false
    imap_host: ""
    username: ""
    mailbox: "INBOX"
    search_subject_any: ["new arrival", "inventory alert"]
    location: ""
`

// EnsureUserConfig makes sure dataDir holds a config.yml and returns its
// path. A packaged default at defaultPath is copied when present so a
// checkout's commented starter file wins over the built-in one.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if errors.Is(err, os.ErrNotExist) {
		if werr := os.WriteFile(userPath, []byte(defaultYAML), 0o644); werr != nil {
			return "", werr
		}
		return userPath, nil
	}
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}
