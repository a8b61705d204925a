package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/psds-microservice/ticket-desk/internal/config"
	"github.com/psds-microservice/ticket-desk/internal/errs"
	"github.com/psds-microservice/ticket-desk/internal/model"
	"google.golang.org/api/option"
)

// FirestoreStore добавляет заявки в коллекцию Firestore.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

// OpenFirestore создаёт клиент по настройкам. При FIRESTORE_EMULATOR_HOST
// SDK сам подключается к эмулятору без учётных данных.
func OpenFirestore(ctx context.Context, cfg *config.Config) (*firestore.Client, error) {
	opts, err := firestoreOptions(cfg)
	if err != nil {
		return nil, err
	}
	client, err := firestore.NewClient(ctx, cfg.Firestore.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

func firestoreOptions(cfg *config.Config) ([]option.ClientOption, error) {
	f := cfg.Firestore
	switch {
	case f.EmulatorHost != "":
		return nil, nil
	case f.CredentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(f.CredentialsJSON))}, nil
	case f.CredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(f.CredentialsFile)}, nil
	}
	raw, err := cfg.ServiceAccountJSON()
	if err != nil {
		return nil, fmt.Errorf("service account: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("firestore: no credentials configured")
	}
	return []option.ClientOption{option.WithCredentialsJSON(raw)}, nil
}

func (s *FirestoreStore) Create(ctx context.Context, t *model.Ticket) (string, error) {
	// нулевой CreatedAt + тег serverTimestamp: время проставит сервер Firestore
	t.CreatedAt = time.Time{}
	ref, _, err := s.client.Collection(s.collection).Add(ctx, t)
	if err != nil {
		return "", fmt.Errorf("%w: firestore add: %v", errs.ErrStore, err)
	}
	t.ID = ref.ID
	return ref.ID, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
