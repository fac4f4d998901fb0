package event

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

// DefaultReviewTopic receives transactions an analyst has to look at.
const DefaultReviewTopic = "flagged_transactions"

// Producer is the part of *kafka.Producer the forwarder uses.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// ReviewForwarder publishes FLAGGED and UNKNOWN transactions to a review topic,
// keyed by transaction id.
type ReviewForwarder struct {
	producer Producer
	topic    string
}

func NewReviewForwarder(producer Producer, topic string) *ReviewForwarder {
	if topic == "" {
		topic = DefaultReviewTopic
	}

	return &ReviewForwarder{producer: producer, topic: topic}
}

func (f *ReviewForwarder) Handle(ctx context.Context, event entity.TransactionEvent) error {
	tx := event.Transaction
	if !tx.Verdict.NeedsReview() {
		return nil
	}

	payload, err := reviewPayload(tx)
	if err != nil {
		return err
	}

	headers := []kafka.Header{{Key: "event_id", Value: []byte(event.EventID)}}
	if event.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation_id", Value: []byte(event.CorrelationID)})
	}

	delivery := make(chan kafka.Event, 1)
	err = f.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &f.topic, Partition: kafka.PartitionAny},
		Key:            []byte(tx.ID),
		Value:          payload,
		Headers:        headers,
	}, delivery)
	if err != nil {
		return fmt.Errorf("kafka produce: %w", err)
	}

	select {
	case ev := <-delivery:
		msg, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event: %v", ev)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("kafka delivery: %w", msg.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func reviewPayload(tx entity.Transaction) ([]byte, error) {
	var riskScore any
	if tx.RiskScore != nil {
		riskScore = *tx.RiskScore
	}

	st, err := structpb.NewStruct(map[string]any{
		"id":             tx.ID,
		"sourceAccount":  tx.SourceAccount,
		"targetAccount":  tx.TargetAccount,
		"amount":         tx.Amount.String(),
		"suspectedFraud": tx.SuspectedFraud,
		"riskScore":      riskScore,
		"verdict":        string(tx.Verdict),
		"createdAt":      tx.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("building review payload: %w", err)
	}

	raw, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("serializing review payload: %w", err)
	}

	return raw, nil
}
