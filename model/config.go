package model

// Config corresponds to the top-level structure of config.yaml.
type Config struct {
	Token    string   `mapstructure:"TOKEN"`
	BotName  string   `mapstructure:"bot_name"`
	Channels Channels `mapstructure:"channels"`
	Review   Review   `mapstructure:"review"`
	Schedule Schedule `mapstructure:"schedule"`
	Commands Commands `mapstructure:"commands"`
}

// Commands corresponds to the "commands" section. An empty guild list
// registers the slash commands globally.
type Commands struct {
	AllowGuilds []string `mapstructure:"allow_guilds"`
}

// Channels corresponds to the "channels" section.
type Channels struct {
	ReviewChannelID  string `mapstructure:"review_channel_id"`
	PublishChannelID string `mapstructure:"publish_channel_id"`
}

// Review holds the decision-policy settings. Quorum false means the first
// vote is terminal (single-reviewer mode).
type Review struct {
	Quorum         bool     `mapstructure:"quorum"`
	VotesToApprove int      `mapstructure:"votes_to_approve"`
	VotesToReject  int      `mapstructure:"votes_to_reject"`
	Reviewers      []string `mapstructure:"reviewers"`
	ReviewerRoles  []string `mapstructure:"reviewer_roles"`
}

// Schedule holds the publication-cadence settings.
type Schedule struct {
	PostFrequencyMinutes int `mapstructure:"post_frequency_minutes"`
	DayStartHour         int `mapstructure:"day_start_hour"`
	PendingTTLHours      int `mapstructure:"pending_ttl_hours"`
	PollIntervalSeconds  int `mapstructure:"poll_interval_seconds"`
}
