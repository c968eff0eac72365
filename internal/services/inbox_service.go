package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/db"
	"github.com/ricoshapp/stylehub/internal/models"
)

// IInboxService defines the interface for direct messages and the derived
// thread view.
type IInboxService interface {
	SendMessage(ctx context.Context, senderID, recipientID, listingID, body string) (*models.Message, error)
	Threads(ctx context.Context, userID string) ([]models.Thread, error)
	ThreadMessages(ctx context.Context, userID, threadKey string) ([]models.Message, error)
}

const messagesCollection = "messages"

// inboxService implements IInboxService.
type inboxService struct {
	db             *mongo.Database
	cfg            *config.Config
	userService    IUserService
	listingService IListingService
}

// NewInboxService creates a new InboxService.
func NewInboxService(db *mongo.Database, cfg *config.Config, userService IUserService, listingService IListingService) IInboxService {
	return &inboxService{db: db, cfg: cfg, userService: userService, listingService: listingService}
}

// SendMessage stores a direct message. listingID may be empty for
// conversations without a listing context.
func (s *inboxService) SendMessage(ctx context.Context, senderID, recipientID, listingID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if s.cfg.MaxMessageLen > 0 && len(body) > s.cfg.MaxMessageLen {
		return nil, ErrMessageTooLong
	}
	if senderID == recipientID {
		return nil, fmt.Errorf("cannot send a message to yourself")
	}
	if _, err := s.userService.FindByID(ctx, recipientID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRecipient
		}
		return nil, err
	}
	if listingID != "" {
		if _, err := s.listingService.FindListingByID(ctx, listingID); err != nil {
			return nil, err
		}
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		ListingID:   listingID,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}
	doc, err := db.InsertOne(ctx, s.db.Collection(messagesCollection), message)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return doc.(*models.Message), nil
}

// Threads rebuilds the user's inbox from their messages. Messages are grouped
// by (counterpart, listing-or-none); each group surfaces its newest message
// and the groups are ordered newest-activity-first. Ties on timestamp break
// on message ID so the ordering is stable across reads.
func (s *inboxService) Threads(ctx context.Context, userID string) ([]models.Thread, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender_id": userID},
		{"recipient_id": userID},
	}}
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cursor, err := s.db.Collection(messagesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error loading messages for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("error decoding messages: %w", err)
	}

	var threads []models.Thread
	seen := map[string]bool{}
	for _, msg := range messages {
		counterpartID := msg.SenderID
		if counterpartID == userID {
			counterpartID = msg.RecipientID
		}
		key := models.ThreadKey(counterpartID, msg.ListingID)
		if seen[key] {
			continue
		}
		seen[key] = true
		threads = append(threads, models.Thread{
			Key:           key,
			CounterpartID: counterpartID,
			ListingID:     msg.ListingID,
			LastMessage:   msg,
		})
	}

	// Hydrate counterpart and listing snapshots. A deleted counterpart or
	// listing leaves the pointer nil; the thread itself survives.
	for i := range threads {
		if user, err := s.userService.FindByID(ctx, threads[i].CounterpartID); err == nil {
			threads[i].Counterpart = user
		}
		if threads[i].ListingID != "" {
			if listing, err := s.listingService.FindListingByID(ctx, threads[i].ListingID); err == nil {
				threads[i].Listing = listing
			}
		}
	}
	return threads, nil
}

// ThreadMessages returns the full history of one thread, oldest first. Only a
// participant can read it; the thread key names the counterpart, so userID
// plus the key fully identifies the conversation.
func (s *inboxService) ThreadMessages(ctx context.Context, userID, threadKey string) ([]models.Message, error) {
	counterpartID, listingID, ok := models.ParseThreadKey(threadKey)
	if !ok {
		return nil, fmt.Errorf("malformed thread key: %q", threadKey)
	}

	listingFilter := bson.M{"listing_id": listingID}
	if listingID == "" {
		listingFilter = bson.M{"listing_id": bson.M{"$exists": false}}
	}
	filter := bson.M{
		"$and": []bson.M{
			{"$or": []bson.M{
				{"sender_id": userID, "recipient_id": counterpartID},
				{"sender_id": counterpartID, "recipient_id": userID},
			}},
			listingFilter,
		},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := s.db.Collection(messagesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error loading thread %s: %w", threadKey, err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("error decoding thread messages: %w", err)
	}
	return messages, nil
}
