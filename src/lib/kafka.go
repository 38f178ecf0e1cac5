package lib

import (
	"encoding/json"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

func GetKafkaProducerConfig(clientId string) kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	}
}

func GetKafkaConsumerConfig(groupId string) kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"group.id":          groupId,
		"auto.offset.reset": "smallest",
		"retry.backoff.ms":  100,
	}
}

func KafkaProduceMessage(clientId string, topic string, payload map[string]any) error {
	cfg := GetKafkaProducerConfig(clientId)
	p, err := kafka.NewProducer(&cfg)
	if err != nil {
		log.Printf("Error creating producer %s: %s\n", clientId, err.Error())
		return err
	}
	defer p.Close()

	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error serializing payload for topic %s: %s\n", topic, err.Error())
		return err
	}

	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}, nil)
	if err != nil {
		log.Printf("Error producing to topic %s: %s\n", topic, err.Error())
		return err
	}
	return nil
}

// KafkaTopicConsumer polls the given topics and invokes handler with each
// message body. Blocks until the consumer errors out; callers run it in a
// goroutine.
func KafkaTopicConsumer(groupId string, topics []string, handler Handler) {
	cfg := GetKafkaConsumerConfig(groupId)
	consumer, err := kafka.NewConsumer(&cfg)
	if err != nil {
		log.Printf("Error creating consumer %s: %s\n", groupId, err.Error())
		return
	}
	if err := consumer.SubscribeTopics(topics, nil); err != nil {
		log.Printf("Error subscribing to topics %v: %s\n", topics, err.Error())
		return
	}
	log.Printf("[%s]: waiting for messages...\n", groupId)
	run := true
	for run {
		ev := consumer.Poll(100)
		switch e := ev.(type) {
		case *kafka.Message:
			handler(string(e.Value))
		case kafka.Error:
			log.Printf("[%s] consumer error: %v\n", groupId, e)
			run = false
		default:
		}
	}
	consumer.Close()
}

type Handler func(payload string)
