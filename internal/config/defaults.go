package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"storage": map[string]interface{}{
			"path": "~/.reminders/reminders.db",
			"key":  "reminders",
		},
		"notifications": map[string]interface{}{
			"enabled":  true,
			"timezone": "Local",
		},
		"telegram": map[string]interface{}{
			"token":   "",
			"chat_id": 0,
		},
		"digest": map[string]interface{}{
			"interval": "0s",
			"at":       "",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.reminders/config.yaml"
}
