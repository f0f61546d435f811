package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"outreach/pkg/mq"

	"github.com/rs/zerolog/log"
)

type Config struct {
	MetadataDB     MySQL     `json:"metadata_db"`
	Brevo          Brevo     `json:"brevo"`
	TaskQueue      TaskQueue `json:"task_queue"`
	InternalSender string    `json:"internal_sender"`
	SenderName     string    `json:"sender_name"`
}

type MySQL struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
}

func (mysql *MySQL) ToDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", mysql.Username, mysql.Password, mysql.Host, mysql.Port, mysql.Database)
}

type Brevo struct {
	APIKey string `json:"api_key"`
}

type TaskQueue struct {
	Brokers       []string          `json:"brokers"`
	Topics        map[uint32]string `json:"topics"`
	ConsumerGroup string            `json:"consumer_group"`
	InitialOffset string            `json:"initial_offset"`
}

func (q *TaskQueue) ToProducerConfig() mq.ProducerConfig {
	return mq.ProducerConfig{
		Brokers: q.Brokers,
		Topics:  q.Topics,
	}
}

func (q *TaskQueue) ToConsumerConfig(topic string) mq.ConsumerConfig {
	return mq.ConsumerConfig{
		Brokers:       q.Brokers,
		Topic:         topic,
		ConsumerGroup: q.ConsumerGroup,
		InitialOffset: q.InitialOffset,
	}
}

func NewConfig() *Config {
	return &Config{
		MetadataDB: MySQL{
			Username: "",
			Password: "",
			Host:     "127.0.0.1",
			Port:     3306,
			Database: "outreach_db",
		},
		Brevo: Brevo{
			APIKey: "",
		},
		TaskQueue: TaskQueue{
			Brokers: []string{"127.0.0.1:9092"},
			Topics: map[uint32]string{
				uint32(mq.PayloadHydrateCampaign): "hydrate_campaign",
				uint32(mq.PayloadSendCampaign):    "send_campaign",
				uint32(mq.PayloadRunAutomation):   "run_automation",
			},
			ConsumerGroup: "outreach_workers",
			InitialOffset: "oldest",
		},
		InternalSender: "",
		SenderName:     "",
	}
}

func (c *Config) Load(ctx context.Context, path string) error {
	if path == "" {
		log.Ctx(ctx).Warn().Msgf("empty config file")
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Ctx(ctx).Warn().Msgf("config file does not exist, file path: %s", path)
			return nil
		}
		return err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			log.Ctx(ctx).Error().Msgf("config file close failed, file path: %s", path)
		}
	}(f)

	p := json.NewDecoder(f)
	if err := p.Decode(&c); err != nil {
		return err
	}

	return nil
}
