package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "yardwatch"

const discordAccount = "discord:bot-token"

// GetDiscordToken prefers the keychain and falls back to
// YARDWATCH_DISCORD_TOKEN for headless machines without one.
func GetDiscordToken() (string, error) {
	if tok, err := keyring.Get(KeyringService, discordAccount); err == nil && strings.TrimSpace(tok) != "" {
		return strings.TrimSpace(tok), nil
	}
	if tok := strings.TrimSpace(os.Getenv("YARDWATCH_DISCORD_TOKEN")); tok != "" {
		return tok, nil
	}
	return "", errors.New("discord token not found (run -set-token or set YARDWATCH_DISCORD_TOKEN)")
}

func SetDiscordToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, discordAccount, token)
}

func DeleteDiscordToken() error {
	return keyring.Delete(KeyringService, discordAccount)
}

// IMAPAccount names the keychain entry for a mailalert login.
func IMAPAccount(username, host string) string {
	return fmt.Sprintf("imap:%s@%s", username, host)
}

func GetIMAPPassword(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		if pw, err := keyring.Get(KeyringService, account); err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if pw := os.Getenv("YARDWATCH_IMAP_PASSWORD"); pw != "" {
		return pw, nil
	}
	return "", errors.New("imap password not found (set it in the keychain or YARDWATCH_IMAP_PASSWORD)")
}

func SetIMAPPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}
