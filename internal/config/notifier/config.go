package notifier_config

import (
	"time"

	"github.com/kseslo/deadliner/internal/obs"
	kafkarepo "github.com/kseslo/deadliner/internal/repository/kafka"
	pginfra "github.com/kseslo/deadliner/internal/repository/postgres"
	redisrepo "github.com/kseslo/deadliner/internal/repository/redis"
)

type KafkaIn struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

func (k *KafkaIn) AsConsumerConfig() *kafkarepo.ConsumerConfig {
	return &kafkarepo.ConsumerConfig{
		Brokers: k.Brokers,
		Topic:   k.Topic,
		GroupID: k.GroupID,
	}
}

type SMTP struct {
	Addr       string        `mapstructure:"addr"`
	From       string        `mapstructure:"from"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	UseTLS     bool          `mapstructure:"use_tls"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SubjPrefix string        `mapstructure:"subj_prefix"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Config struct {
	DB       pginfra.Config   `mapstructure:"db"`
	In       KafkaIn          `mapstructure:"kafka_in"`
	SMTP     SMTP             `mapstructure:"smtp"`
	Redis    redisrepo.Config `mapstructure:"redis"`
	Server   Server           `mapstructure:"server"`
	OTEL     OTEL             `mapstructure:"otel"`
	LogLevel string           `mapstructure:"log_level"`
}
