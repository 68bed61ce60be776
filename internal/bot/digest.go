// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/wneessen/go-moonphase"

	"github.com/nimbusbot/nimbus/internal/i18n"
	"github.com/nimbusbot/nimbus/internal/logger"
	"github.com/nimbusbot/nimbus/internal/prefs"
	"github.com/nimbusbot/nimbus/internal/render"
)

// Sender delivers digest messages. *Telegram satisfies it; tests swap in a
// recorder.
type Sender interface {
	SendMessage(chatID int64, reply Reply) error
}

// Digest sends every user with a default city a short weather summary once a
// day at a fixed local time.
type Digest struct {
	at        string
	store     *prefs.Store
	weather   Gateway
	i18n      *i18n.Translator
	sender    Sender
	scheduler gocron.Scheduler
	logger    *logger.Logger
}

// NewDigest creates the digest scheduler. at is the local wall-clock send
// time in "HH:MM" format.
func NewDigest(at string, store *prefs.Store, weather Gateway, translator *i18n.Translator,
	sender Sender, log *logger.Logger,
) (*Digest, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Digest{
		at:        at,
		store:     store,
		weather:   weather,
		i18n:      translator,
		sender:    sender,
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// Run schedules the daily job and blocks until the context is cancelled.
func (d *Digest) Run(ctx context.Context) error {
	sendTime, err := time.Parse("15:04", d.at)
	if err != nil {
		return fmt.Errorf("invalid digest time %q: %w", d.at, err)
	}

	_, err = d.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(sendTime.Hour()), uint(sendTime.Minute()), 0),
		)),
		gocron.NewTask(d.Send),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("daily_digest_job"),
	)
	if err != nil {
		return fmt.Errorf("failed to create daily_digest_job: %w", err)
	}
	d.scheduler.Start()

	<-ctx.Done()
	return d.scheduler.Shutdown()
}

// Send builds and delivers the digest for every user with a default city.
// A failing lookup or delivery only skips that user.
func (d *Digest) Send(ctx context.Context) {
	phase := moonphase.New(time.Now()).PhaseName()

	for userID, user := range d.store.All() {
		if user.DefaultCity == "" {
			continue
		}

		snap, err := d.weather.CurrentWeather(ctx, user.DefaultCity, user.Unit, user.Language)
		if err != nil {
			d.logger.Warn("skipping digest, weather lookup failed", logger.Err(err),
				"user_id", userID, "city", user.DefaultCity)
			continue
		}

		r := render.New(d.i18n.Localizer(user.Language), d.i18n.Humanizer(user.Language))
		if err := d.sender.SendMessage(userID, Reply{Text: r.Digest(snap, user.Unit, phase)}); err != nil {
			d.logger.Warn("failed to deliver digest", logger.Err(err), "user_id", userID)
		}
	}
}
