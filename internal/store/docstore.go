package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// documentRow is the gorm-mapped row backing one document.
type documentRow struct {
	Collection string `gorm:"primary_key"`
	DocID      string `gorm:"primary_key;column:doc_id"`
	Body       string `gorm:"type:text"`
}

func (documentRow) TableName() string {
	return "documents"
}

// GormStore is a DocumentStore backed by a relational table of JSON
// documents through gorm. Each call runs on its own goroutine and
// invokes its callback exactly once, matching the remote store's
// listener-based completion model.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a document store over an open gorm connection
// and ensures the documents table exists.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&documentRow{}).Error; err != nil {
		return nil, fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Add creates a document under a fresh server-assigned ID.
func (s *GormStore) Add(collection string, fields Document, cb func(id string, err error)) {
	go func() {
		body, err := json.Marshal(fields)
		if err != nil {
			cb("", fmt.Errorf("failed to encode document: %w", err))
			return
		}
		id := uuid.New().String()
		row := documentRow{Collection: collection, DocID: id, Body: string(body)}
		if err := s.db.Create(&row).Error; err != nil {
			cb("", fmt.Errorf("failed to create document: %w", err))
			return
		}
		cb(id, nil)
	}()
}

// Get fetches a document by ID.
func (s *GormStore) Get(collection, id string, cb func(doc Document, err error)) {
	go func() {
		doc, err := s.get(collection, id)
		cb(doc, err)
	}()
}

func (s *GormStore) get(collection, id string) (Document, error) {
	var row documentRow
	err := s.db.Where("collection = ? AND doc_id = ?", collection, id).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(row.Body), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// Update applies field deltas on top of the stored document.
func (s *GormStore) Update(collection, id string, deltas Document, cb func(err error)) {
	go func() {
		cb(s.merge(collection, id, func(doc Document) {
			for field, value := range deltas {
				doc[field] = value
			}
		}))
	}()
}

// Delete removes a document by ID.
func (s *GormStore) Delete(collection, id string, cb func(err error)) {
	go func() {
		err := s.db.Where("collection = ? AND doc_id = ?", collection, id).
			Delete(&documentRow{}).Error
		if err != nil {
			cb(fmt.Errorf("failed to delete document: %w", err))
			return
		}
		cb(nil)
	}()
}

// ArrayUnion appends a value to an array field unless already present.
func (s *GormStore) ArrayUnion(collection, id, field, value string, cb func(err error)) {
	go func() {
		cb(s.merge(collection, id, func(doc Document) {
			values := stringSlice(doc[field])
			for _, v := range values {
				if v == value {
					return
				}
			}
			doc[field] = append(values, value)
		}))
	}()
}

// ArrayRemove removes all occurrences of a value from an array field.
func (s *GormStore) ArrayRemove(collection, id, field, value string, cb func(err error)) {
	go func() {
		cb(s.merge(collection, id, func(doc Document) {
			values := stringSlice(doc[field])
			kept := values[:0]
			for _, v := range values {
				if v != value {
					kept = append(kept, v)
				}
			}
			doc[field] = kept
		}))
	}()
}

// GetAll fetches every document in a collection.
func (s *GormStore) GetAll(collection string, cb func(docs map[string]Document, err error)) {
	go func() {
		var rows []documentRow
		if err := s.db.Where("collection = ?", collection).Find(&rows).Error; err != nil {
			cb(nil, fmt.Errorf("failed to list collection %s: %w", collection, err))
			return
		}
		docs := make(map[string]Document, len(rows))
		for _, row := range rows {
			var doc Document
			if err := json.Unmarshal([]byte(row.Body), &doc); err != nil {
				cb(nil, fmt.Errorf("failed to decode document %s/%s: %w", collection, row.DocID, err))
				return
			}
			docs[row.DocID] = doc
		}
		cb(docs, nil)
	}()
}

// merge runs a read-modify-write of a single document. The two steps
// are not transactional, matching the remote store's field-delta
// semantics rather than strict serializability.
func (s *GormStore) merge(collection, id string, apply func(Document)) error {
	doc, err := s.get(collection, id)
	if err != nil {
		return err
	}
	apply(doc)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	err = s.db.Model(&documentRow{}).
		Where("collection = ? AND doc_id = ?", collection, id).
		Update("body", string(body)).Error
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

func stringSlice(value interface{}) []string {
	switch vs := value.(type) {
	case []string:
		return vs
	case []interface{}:
		out := make([]string, 0, len(vs))
		for _, v := range vs {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
