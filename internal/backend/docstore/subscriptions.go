package docstore

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/carebright/carelog/internal/backend"
	"github.com/google/uuid"
)

const (
	changeAdded    = "added"
	changeModified = "modified"
	changeRemoved  = "removed"
)

// changeEvent is the payload published on a collection's feed topic after
// every mutation. Subscribers re-read the store before notifying, so the
// event only needs to say which document moved.
type changeEvent struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func feedTopic(collection string) string {
	return "docstore." + collection
}

func (store *Store) publishChange(collection string, changeType string, id string) {
	payload, err := json.Marshal(changeEvent{Type: changeType, ID: id})
	if err != nil {
		log.Printf("docstore: encode change event for %s/%s: %v", collection, id, err)
		return
	}
	if err := store.feed.Publish(feedTopic(collection), message.NewMessage(uuid.NewString(), payload)); err != nil {
		log.Printf("docstore: publish change for %s/%s: %v", collection, id, err)
	}
}

// SubscribeQuery delivers the full filtered result set: once synchronously
// before returning, then again after every change in the collection. The
// callback runs on the feed goroutine. Delivery errors are logged and the
// subscriber keeps its last snapshot; there is no retry.
func (store *Store) SubscribeQuery(ctx context.Context, collection string, filter backend.Filter, fn backend.QuerySnapshotFunc) (backend.Unsubscribe, error) {
	subCtx, cancel := context.WithCancel(ctx)
	messages, err := store.feed.Subscribe(subCtx, feedTopic(collection))
	if err != nil {
		cancel()
		return nil, err
	}

	initial, err := store.GetDocuments(ctx, collection, filter)
	if err != nil {
		cancel()
		return nil, err
	}
	fn(initial)

	go func() {
		for msg := range messages {
			msg.Ack()

			documents, queryErr := store.GetDocuments(subCtx, collection, filter)
			if queryErr != nil {
				log.Printf("docstore: refresh query snapshot for %s: %v", collection, queryErr)
				continue
			}
			fn(documents)
		}
	}()

	return func() { cancel() }, nil
}

// SubscribeDocument delivers snapshots of a single document: once
// synchronously before returning, then after every change to that id.
// exists reports whether the document is present.
func (store *Store) SubscribeDocument(ctx context.Context, collection string, id string, fn backend.DocumentSnapshotFunc) (backend.Unsubscribe, error) {
	subCtx, cancel := context.WithCancel(ctx)
	messages, err := store.feed.Subscribe(subCtx, feedTopic(collection))
	if err != nil {
		cancel()
		return nil, err
	}

	document, exists, err := store.getDocument(ctx, collection, id)
	if err != nil {
		cancel()
		return nil, err
	}
	fn(document, exists)

	go func() {
		for msg := range messages {
			msg.Ack()

			var event changeEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				log.Printf("docstore: decode change event on %s: %v", collection, err)
				continue
			}
			if event.ID != id {
				continue
			}

			document, exists, lookupErr := store.getDocument(subCtx, collection, id)
			if lookupErr != nil {
				log.Printf("docstore: refresh document snapshot for %s/%s: %v", collection, id, lookupErr)
				continue
			}
			fn(document, exists)
		}
	}()

	return func() { cancel() }, nil
}
