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

// IInquiryService defines the interface for inquiry operations.
type IInquiryService interface {
	// Submit creates or refreshes the single inquiry from senderID to the
	// listing. The returned bool is true when a new inquiry row was created.
	Submit(ctx context.Context, senderID, listingID string, fields models.ContactFields) (*models.Inquiry, bool, error)
	FindByID(ctx context.Context, inquiryID string) (*models.Inquiry, error)
	Delete(ctx context.Context, inquiryID, actorID string) error
	ListSent(ctx context.Context, senderID string) ([]models.Inquiry, error)
	ListReceived(ctx context.Context, ownerID string) ([]models.Inquiry, error)
	HasSentInquiry(ctx context.Context, userID string) (bool, error)
	FindUnnotified(ctx context.Context, limit int) ([]models.Inquiry, error)
	MarkNotified(ctx context.Context, inquiryID string) error
	EnsureIndexes(ctx context.Context) error
}

const inquiriesCollection = "inquiries"

// inquiryService implements IInquiryService.
type inquiryService struct {
	db             *mongo.Database
	cfg            *config.Config
	listingService IListingService
}

// NewInquiryService creates a new InquiryService.
func NewInquiryService(db *mongo.Database, cfg *config.Config, listingService IListingService) IInquiryService {
	return &inquiryService{db: db, cfg: cfg, listingService: listingService}
}

// EnsureIndexes creates the unique compound index that backs inquiry
// deduplication. Application-level checks narrow the window; this index
// closes it.
func (s *inquiryService) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(inquiriesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sender_id", Value: 1},
			{Key: "listing_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create inquiry index: %w", err)
	}
	return nil
}

// Submit is idempotent on (senderID, listingID): the first call creates the
// inquiry, later calls update its contact fields in place. A concurrent
// duplicate insert is absorbed by retrying as an update, so callers always
// see success with the surviving row.
func (s *inquiryService) Submit(ctx context.Context, senderID, listingID string, fields models.ContactFields) (*models.Inquiry, bool, error) {
	if strings.TrimSpace(fields.Name) == "" || strings.TrimSpace(fields.Phone) == "" {
		return nil, false, fmt.Errorf("name and phone are required")
	}
	if s.cfg.MaxMessageLen > 0 && len(fields.Note) > s.cfg.MaxMessageLen {
		return nil, false, ErrMessageTooLong
	}

	listing, err := s.listingService.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, false, err
	}
	ownerID, err := s.listingService.ResolveOwner(ctx, listing)
	if err != nil {
		return nil, false, err
	}
	if ownerID == senderID {
		return nil, false, ErrSelfInquiry
	}

	collection := s.db.Collection(inquiriesCollection)
	now := time.Now().UTC()

	existing, err := s.findBySenderAndListing(ctx, senderID, listingID)
	if err != nil && !errors.Is(err, ErrInquiryNotFound) {
		return nil, false, err
	}
	if existing != nil {
		return s.refresh(ctx, existing.ID, fields, now)
	}

	inquiry := &models.Inquiry{
		Base:      models.NewBase(),
		SenderID:  senderID,
		ListingID: listingID,
		OwnerID:   ownerID,
		Name:      fields.Name,
		Phone:     fields.Phone,
		Note:      fields.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := collection.InsertOne(ctx, inquiry); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			// Lost the race against a concurrent submission for the same
			// pair: the other row wins, this submission becomes an update.
			winner, ferr := s.findBySenderAndListing(ctx, senderID, listingID)
			if ferr != nil {
				return nil, false, fmt.Errorf("duplicate inquiry detected but winning row not found: %w", ferr)
			}
			return s.refresh(ctx, winner.ID, fields, now)
		}
		return nil, false, fmt.Errorf("failed to insert inquiry: %w", err)
	}
	return inquiry, true, nil
}

// refresh updates the mutable contact fields of an existing inquiry.
func (s *inquiryService) refresh(ctx context.Context, inquiryID string, fields models.ContactFields, now time.Time) (*models.Inquiry, bool, error) {
	res := s.db.Collection(inquiriesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": inquiryID},
		bson.M{"$set": bson.M{
			"name":       fields.Name,
			"phone":      fields.Phone,
			"note":       fields.Note,
			"updated_at": now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Inquiry
	if err := res.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, ErrInquiryNotFound
		}
		return nil, false, fmt.Errorf("error refreshing inquiry %s: %w", inquiryID, err)
	}
	return &updated, false, nil
}

func (s *inquiryService) findBySenderAndListing(ctx context.Context, senderID, listingID string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := s.db.Collection(inquiriesCollection).FindOne(ctx,
		bson.M{"sender_id": senderID, "listing_id": listingID}).Decode(&inquiry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInquiryNotFound
		}
		return nil, fmt.Errorf("error finding inquiry: %w", err)
	}
	return &inquiry, nil
}

// FindByID finds an inquiry by ID.
func (s *inquiryService) FindByID(ctx context.Context, inquiryID string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := s.db.Collection(inquiriesCollection).FindOne(ctx, bson.M{"_id": inquiryID}).Decode(&inquiry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInquiryNotFound
		}
		return nil, fmt.Errorf("error finding inquiry %s: %w", inquiryID, err)
	}
	return &inquiry, nil
}

// Delete removes an inquiry. Either side of the exchange may delete: the
// sender, the owner recorded at submission time, or whoever currently
// resolves as the listing's owner. Deletion is hard, which re-opens the
// (sender, listing) pair for a future submission.
func (s *inquiryService) Delete(ctx context.Context, inquiryID, actorID string) error {
	inquiry, err := s.FindByID(ctx, inquiryID)
	if err != nil {
		return err
	}

	authorized := actorID == inquiry.SenderID || actorID == inquiry.OwnerID
	if !authorized {
		listing, lerr := s.listingService.FindListingByID(ctx, inquiry.ListingID)
		if lerr == nil {
			if owner, oerr := s.listingService.ResolveOwner(ctx, listing); oerr == nil && owner == actorID {
				authorized = true
			}
		}
	}
	if !authorized {
		return ErrNotAuthorized
	}

	res, err := s.db.Collection(inquiriesCollection).DeleteOne(ctx, bson.M{"_id": inquiryID})
	if err != nil {
		return fmt.Errorf("error deleting inquiry %s: %w", inquiryID, err)
	}
	if res.DeletedCount == 0 {
		return ErrInquiryNotFound
	}
	return nil
}

// ListSent returns all inquiries the user has submitted, newest first.
func (s *inquiryService) ListSent(ctx context.Context, senderID string) ([]models.Inquiry, error) {
	return s.list(ctx, bson.M{"sender_id": senderID})
}

// ListReceived returns all inquiries addressed to listings the user owns,
// newest first.
func (s *inquiryService) ListReceived(ctx context.Context, ownerID string) ([]models.Inquiry, error) {
	return s.list(ctx, bson.M{"owner_id": ownerID})
}

func (s *inquiryService) list(ctx context.Context, filter bson.M) ([]models.Inquiry, error) {
	cursor, err := s.db.Collection(inquiriesCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing inquiries: %w", err)
	}
	defer cursor.Close(ctx)

	var inquiries []models.Inquiry
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, fmt.Errorf("error decoding inquiries: %w", err)
	}
	return inquiries, nil
}

// HasSentInquiry reports whether the user has ever submitted an inquiry.
func (s *inquiryService) HasSentInquiry(ctx context.Context, userID string) (bool, error) {
	count, err := s.db.Collection(inquiriesCollection).CountDocuments(ctx,
		bson.M{"sender_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error counting inquiries for %s: %w", userID, err)
	}
	return count > 0, nil
}

// FindUnnotified returns inquiries whose owner notification has not been sent
// yet, oldest first so the email task drains in order.
func (s *inquiryService) FindUnnotified(ctx context.Context, limit int) ([]models.Inquiry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.db.Collection(inquiriesCollection).Find(ctx, bson.M{"notified": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding unnotified inquiries: %w", err)
	}
	defer cursor.Close(ctx)

	var inquiries []models.Inquiry
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, fmt.Errorf("error decoding inquiries: %w", err)
	}
	return inquiries, nil
}

// MarkNotified flags an inquiry's owner notification as sent.
func (s *inquiryService) MarkNotified(ctx context.Context, inquiryID string) error {
	res, err := s.db.Collection(inquiriesCollection).UpdateOne(ctx,
		bson.M{"_id": inquiryID},
		bson.M{"$set": bson.M{"notified": true}},
	)
	if err != nil {
		return fmt.Errorf("error marking inquiry %s notified: %w", inquiryID, err)
	}
	if res.MatchedCount == 0 {
		return ErrInquiryNotFound
	}
	return nil
}
