package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"

	"github.com/kryuchenko/kartoshka-bot/model"
)

var Cfg model.Config

// LoadConfig reads config.yaml from the working directory, with environment
// variables taking precedence over file values.
func LoadConfig() (err error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	viper.SetDefault("review.votes_to_approve", 3)
	viper.SetDefault("review.votes_to_reject", 3)
	viper.SetDefault("schedule.post_frequency_minutes", 60)
	viper.SetDefault("schedule.day_start_hour", 7)
	viper.SetDefault("schedule.pending_ttl_hours", 72)
	viper.SetDefault("schedule.poll_interval_seconds", 10)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&Cfg)
	if err != nil {
		return
	}

	if err = validate(&Cfg); err != nil {
		return
	}

	if Cfg.Review.Quorum {
		log.Println("Криптоселектархическая олигархия включена! (многоголосие)")
	} else {
		log.Println("Единоличный Узурпатор у власти! (решение принимает один голос)")
	}
	return nil
}

func validate(cfg *model.Config) error {
	if cfg.Token == "" {
		return fmt.Errorf("config: TOKEN is required")
	}
	if cfg.Channels.ReviewChannelID == "" || cfg.Channels.PublishChannelID == "" {
		return fmt.Errorf("config: review and publish channel ids are required")
	}
	if cfg.Review.VotesToApprove < 1 || cfg.Review.VotesToReject < 1 {
		return fmt.Errorf("config: vote thresholds must be at least 1")
	}
	if cfg.Schedule.PostFrequencyMinutes < 1 {
		return fmt.Errorf("config: post_frequency_minutes must be at least 1")
	}
	if cfg.Schedule.DayStartHour < 0 || cfg.Schedule.DayStartHour > 23 {
		return fmt.Errorf("config: day_start_hour must be an hour of day")
	}
	return nil
}
