package service

import (
	"context"
	"testing"

	"chirp/internal/models"
)

func TestNotificationServiceInboxMarksAllRead(t *testing.T) {
	notifRepo := noopNotifRepo()
	listed := false
	marked := false
	notifRepo.listByRecipientFn = func(_ context.Context, recipientID uint, page, pageSize int) ([]*models.Notification, error) {
		listed = true
		if marked {
			t.Fatal("the page must be fetched before the bulk mark-read")
		}
		return []*models.Notification{{ID: 1, Read: false}, {ID: 2, Read: true}}, nil
	}
	notifRepo.markAllReadFn = func(_ context.Context, recipientID uint) error {
		marked = true
		if recipientID != 4 {
			t.Fatalf("expected recipient 4, got %d", recipientID)
		}
		return nil
	}

	svc := NewNotificationService(notifRepo, noopUserRepo(), &publisherStub{})
	list, err := svc.Inbox(context.Background(), 4, 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !listed || !marked {
		t.Fatal("expected both list and mark-read to run")
	}
	// The returned page still shows the pre-visit read flags.
	if list[0].Read || !list[1].Read {
		t.Fatalf("read flags must reflect the state at fetch time: %#v", list)
	}
}

func TestNotificationServiceEmitPublishesToRecipient(t *testing.T) {
	notifRepo := noopNotifRepo()
	notifRepo.createFn = func(_ context.Context, n *models.Notification) error {
		n.ID = 11
		return nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "actor"}, nil
	}
	publisher := &publisherStub{}

	svc := NewNotificationService(notifRepo, userRepo, publisher)
	postID := uint(7)
	svc.Emit(context.Background(), 1, 2, models.VerbCommented, &postID)

	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
	if publisher.users[0] != 2 {
		t.Fatalf("expected recipient channel 2, got %d", publisher.users[0])
	}
	event := publisher.events[0]
	if event.ActorUsername != "actor" || event.Verb != models.VerbCommented || *event.PostID != 7 {
		t.Fatalf("unexpected event %#v", event)
	}
}

func TestNotificationServiceEmitDropsSelfEvents(t *testing.T) {
	notifRepo := noopNotifRepo()
	createCalls := 0
	notifRepo.createFn = func(context.Context, *models.Notification) error {
		createCalls++
		return nil
	}

	svc := NewNotificationService(notifRepo, noopUserRepo(), &publisherStub{})
	svc.Emit(context.Background(), 3, 3, models.VerbLiked, nil)

	if createCalls != 0 {
		t.Fatalf("self-directed events must be dropped, got %d creates", createCalls)
	}
}

func TestNotificationServiceEmitSurvivesStoreFailure(t *testing.T) {
	notifRepo := noopNotifRepo()
	notifRepo.createFn = func(context.Context, *models.Notification) error {
		return models.NewInternalError(nil)
	}
	publisher := &publisherStub{}

	svc := NewNotificationService(notifRepo, noopUserRepo(), publisher)
	svc.Emit(context.Background(), 1, 2, models.VerbLiked, nil)

	if len(publisher.events) != 0 {
		t.Fatal("a failed store must not publish")
	}
}
