package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/rs/zerolog"
)

// DefaultQueueName is the queue used when none is configured.
const DefaultQueueName = "ledger-updates"

const (
	batchSize         = 16
	visibilityTimeout = 60 * time.Second
)

// message is a dequeued queue message.
type message struct {
	ID         string
	PopReceipt string
	Text       string
}

// queue is the subset of queue operations the publisher and watcher use.
type queue interface {
	enqueue(ctx context.Context, text string) error
	dequeue(ctx context.Context) ([]message, error)
	remove(ctx context.Context, m message) error
}

// azureQueue adapts an Azure Storage queue.
type azureQueue struct {
	client *azqueue.QueueClient
}

func (q *azureQueue) enqueue(ctx context.Context, text string) error {
	_, err := q.client.EnqueueMessage(ctx, text, nil)
	return err
}

func (q *azureQueue) dequeue(ctx context.Context) ([]message, error) {
	n := int32(batchSize)
	vis := int32(visibilityTimeout / time.Second)
	resp, err := q.client.DequeueMessages(ctx, &azqueue.DequeueMessagesOptions{
		NumberOfMessages:  &n,
		VisibilityTimeout: &vis,
	})
	if err != nil {
		return nil, err
	}

	msgs := make([]message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if m == nil || m.MessageID == nil || m.PopReceipt == nil {
			continue
		}
		msg := message{ID: *m.MessageID, PopReceipt: *m.PopReceipt}
		if m.MessageText != nil {
			msg.Text = *m.MessageText
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (q *azureQueue) remove(ctx context.Context, m message) error {
	_, err := q.client.DeleteMessage(ctx, m.ID, m.PopReceipt, nil)
	return err
}

// AzureQueue publishes and consumes LedgerUpdated events on an Azure
// Storage queue.
type AzureQueue struct {
	q        queue
	name     string
	interval time.Duration
	log      zerolog.Logger
}

// NewAzureQueue connects to queueName under serviceURL with the default Azure
// credential chain, creating the queue if it does not exist.
func NewAzureQueue(ctx context.Context, serviceURL, queueName string, interval time.Duration, log zerolog.Logger) (*AzureQueue, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("NewAzureQueue: default credential: %w", err)
	}
	svc, err := azqueue.NewServiceClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("NewAzureQueue: creating service client: %w", err)
	}

	client := svc.NewQueueClient(queueName)
	if _, err := client.Create(ctx, nil); err != nil && !isQueueExists(err) {
		return nil, fmt.Errorf("NewAzureQueue: creating queue %s: %w", queueName, err)
	}

	return newQueue(&azureQueue{client: client}, queueName, interval, log), nil
}

func newQueue(q queue, name string, interval time.Duration, log zerolog.Logger) *AzureQueue {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AzureQueue{
		q:        q,
		name:     name,
		interval: interval,
		log:      log.With().Str("queue", name).Logger(),
	}
}

func isQueueExists(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.ErrorCode == "QueueAlreadyExists"
}

// Publish enqueues ev.
func (a *AzureQueue) Publish(ctx context.Context, ev LedgerUpdated) error {
	text, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if err := a.q.enqueue(ctx, text); err != nil {
		return fmt.Errorf("AzureQueue.Publish: %w", err)
	}
	a.log.Info().Str("event_id", ev.EventID).Str("uri", ev.URI).Msg("Published ledger update")
	return nil
}

// Watch polls the queue until ctx is cancelled, passing each event to handle.
func (a *AzureQueue) Watch(ctx context.Context, handle Handler) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		a.poll(ctx, handle)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll drains one batch. Undecodable messages are dropped; messages whose
// handler fails stay queued and reappear after the visibility timeout.
func (a *AzureQueue) poll(ctx context.Context, handle Handler) int {
	msgs, err := a.q.dequeue(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.log.Warn().Err(err).Msg("Failed to dequeue ledger updates")
		}
		return 0
	}

	handled := 0
	for _, m := range msgs {
		ev, err := decodeEvent(m.Text)
		if err != nil {
			a.log.Warn().Err(err).Str("message_id", m.ID).Msg("Dropping malformed message")
			a.remove(ctx, m)
			continue
		}

		if err := handle(ctx, ev); err != nil {
			a.log.Error().Err(err).Str("event_id", ev.EventID).Msg("Ledger update handler failed")
			continue
		}

		a.remove(ctx, m)
		handled++
	}
	return handled
}

func (a *AzureQueue) remove(ctx context.Context, m message) {
	if err := a.q.remove(ctx, m); err != nil {
		a.log.Warn().Err(err).Str("message_id", m.ID).Msg("Failed to delete message")
	}
}
