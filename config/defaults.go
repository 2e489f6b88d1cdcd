package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/coachtui",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		API: APIConfig{
			BaseURL: "",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# coachtui System Configuration
# Location: ~/.config/coachtui/settings.toml
# This file uses TOML format: https://toml.io

# Directory where user config, keybindings and logs are stored
data_directory = "~/.local/share/coachtui"
`
}

func GenerateUserConfigTemplate() string {
	return `# coachtui User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[api]
# Coaching chat endpoint (all actions are sent to this single URL)
base_url = ""

# User id sent with chat_history requests (optional)
# Leave empty to let the server use its own session
user_id = ""

# Client side limit on outbound requests, 0 = unlimited
requests_per_second = 0

# Per request timeout in seconds, 0 = wait for the server indefinitely
request_timeout_seconds = 0

[ui]
# Coach id to open on startup (optional)
default_coach = ""

# Game key used to filter the coach list: tft, lol, valorant, fifa24,
# dota2, cs2, apex, fifa23 (optional)
default_game = ""
`
}
