package config

import (
	"github.com/IBM/sarama"
)

// ConnectToKafka creates the sync producer used by the event emitter.
func ConnectToKafka(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	return sarama.NewSyncProducer(brokers, cfg)
}
