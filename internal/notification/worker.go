// Package notification pushes "your laundry is ready" messages to
// browsers that registered a web push subscription for an appliance.
package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"github.com/NoamFav/Laundry/internal/model"
)

// Sender abstracts the web push transport so tests can intercept it.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// webPushSender is the real Sender backed by the webpush library.
type webPushSender struct{}

func (webPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans appliance-done events out to the registered push
// subscriptions on a fixed set of worker goroutines.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a pool of the given size. The jobs channel is
// buffered so dispatching from the scheduler hook never blocks a
// state transition for long.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  webPushSender{},
	}
}

// Start launches the worker goroutines; they exit when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// Dispatch queues one appliance-done event. Drops the event when the
// pool is saturated; a missed push is not worth stalling the caller.
func (wp *WorkerPool) Dispatch(appliance string) {
	select {
	case wp.jobs <- appliance:
	default:
		log.Printf("notification: dropping %s event, worker pool saturated", appliance)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	for {
		select {
		case appliance := <-wp.jobs:
			wp.notifyForAppliance(ctx, appliance)
		case <-ctx.Done():
			log.Printf("notification: worker %d shutting down", id)
			return
		}
	}
}

func (wp *WorkerPool) notifyForAppliance(ctx context.Context, appliance string) {
	if wp.db == nil || wp.webpush == nil {
		return
	}

	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("appliance = ?", appliance).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("notification: fetching subscriptions for %s: %v", appliance, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := appliance
	switch appliance {
	case "washer":
		label = "washing machine"
	case "dryer":
		label = "dryer"
	}
	payload := []byte(fmt.Sprintf("The %s has finished its cycle!", label))

	log.Printf("notification: sending %d pushes for %s", len(subscriptions), appliance)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("notification: push to %s failed: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// 410 Gone means the browser dropped the subscription.
	if resp.StatusCode == http.StatusGone {
		log.Printf("notification: subscription %s expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("notification: failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
