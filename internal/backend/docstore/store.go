// Package docstore is the SQLite-backed implementation of the
// backend.DocumentStore contract. Documents are schemaless JSON payloads in
// a single table; equality filters compile to json_extract lookups, and
// every mutation feeds an in-memory change stream that powers the real-time
// document and query subscriptions.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/carebright/carelog/internal/backend"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type record struct {
	ID         string    `gorm:"primaryKey"`
	Collection string    `gorm:"index;not null"`
	Fields     string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (record) TableName() string { return "documents" }

type Store struct {
	database *gorm.DB
	feed     *gochannel.GoChannel
}

func NewStore(database *gorm.DB) *Store {
	return &Store{
		database: database,
		feed: gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NewStdLogger(false, false),
		),
	}
}

// Close shuts down the change feed; pending subscriptions stop receiving
// snapshots.
func (store *Store) Close() error {
	return store.feed.Close()
}

func (store *Store) AddDocument(ctx context.Context, collection string, fields backend.Fields) (string, error) {
	encoded, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	now := time.Now()
	row := record{
		ID:         uuid.NewString(),
		Collection: collection,
		Fields:     encoded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := store.database.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("add document to %s: %w", collection, err)
	}

	store.publishChange(collection, changeAdded, row.ID)
	return row.ID, nil
}

// SetDocument writes the full document under a caller-chosen id, creating or
// replacing it. The signup flow uses this to key profile documents by
// account id.
func (store *Store) SetDocument(ctx context.Context, collection string, id string, fields backend.Fields) error {
	encoded, err := encodeFields(fields)
	if err != nil {
		return err
	}

	now := time.Now()
	change := changeModified

	err = store.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing record
		lookupErr := tx.Where("collection = ? AND id = ?", collection, id).First(&existing).Error
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			change = changeAdded
			return tx.Create(&record{
				ID:         id,
				Collection: collection,
				Fields:     encoded,
				CreatedAt:  now,
				UpdatedAt:  now,
			}).Error
		}
		if lookupErr != nil {
			return lookupErr
		}
		return tx.Model(&record{}).Where("collection = ? AND id = ?", collection, id).Updates(map[string]any{
			"fields":     encoded,
			"updated_at": now,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}

	store.publishChange(collection, change, id)
	return nil
}

func (store *Store) GetDocuments(ctx context.Context, collection string, filter backend.Filter) ([]backend.Document, error) {
	query := applyFilter(store.database.WithContext(ctx).Where("collection = ?", collection), filter)

	rows := make([]record, 0)
	if err := query.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}

	documents := make([]backend.Document, 0, len(rows))
	for _, row := range rows {
		document, err := decodeRecord(row)
		if err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}
	return documents, nil
}

// UpdateDocument shallow-merges partial into the document's fields. A
// non-zero filter must match the stored document; a mismatch is reported as
// not-found, indistinguishable from a missing id.
func (store *Store) UpdateDocument(ctx context.Context, collection string, id string, filter backend.Filter, partial backend.Fields) error {
	err := store.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row record
		lookupErr := applyFilter(tx.Where("collection = ? AND id = ?", collection, id), filter).First(&row).Error
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return backend.ErrNotFound
		}
		if lookupErr != nil {
			return lookupErr
		}

		fields, decodeErr := decodeFields(row.Fields)
		if decodeErr != nil {
			return decodeErr
		}
		for key, value := range partial {
			fields[key] = value
		}

		encoded, encodeErr := encodeFields(fields)
		if encodeErr != nil {
			return encodeErr
		}
		return tx.Model(&record{}).Where("collection = ? AND id = ?", collection, id).Updates(map[string]any{
			"fields":     encoded,
			"updated_at": time.Now(),
		}).Error
	})
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return backend.ErrNotFound
		}
		return fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}

	store.publishChange(collection, changeModified, id)
	return nil
}

func (store *Store) DeleteDocument(ctx context.Context, collection string, id string, filter backend.Filter) error {
	result := applyFilter(store.database.WithContext(ctx).Where("collection = ? AND id = ?", collection, id), filter).Delete(&record{})
	if result.Error != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return backend.ErrNotFound
	}

	store.publishChange(collection, changeRemoved, id)
	return nil
}

func (store *Store) getDocument(ctx context.Context, collection string, id string) (backend.Document, bool, error) {
	var row record
	err := store.database.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return backend.Document{}, false, nil
	}
	if err != nil {
		return backend.Document{}, false, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}

	document, err := decodeRecord(row)
	if err != nil {
		return backend.Document{}, false, err
	}
	return document, true, nil
}

func applyFilter(query *gorm.DB, filter backend.Filter) *gorm.DB {
	if filter.Field == "" {
		return query
	}
	return query.Where("json_extract(fields, ?) = ?", "$."+filter.Field, filter.Value)
}

func encodeFields(fields backend.Fields) (string, error) {
	if fields == nil {
		fields = backend.Fields{}
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document fields: %w", err)
	}
	return string(encoded), nil
}

func decodeFields(encoded string) (backend.Fields, error) {
	fields := backend.Fields{}
	if encoded == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(encoded), &fields); err != nil {
		return nil, fmt.Errorf("decode document fields: %w", err)
	}
	return fields, nil
}

func decodeRecord(row record) (backend.Document, error) {
	fields, err := decodeFields(row.Fields)
	if err != nil {
		return backend.Document{}, err
	}
	return backend.Document{
		ID:        row.ID,
		Fields:    fields,
		CreatedAt: row.CreatedAt,
	}, nil
}
